package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/templates"
	"github.com/julianstephens/stride/internal/validation"
)

// ownGoal loads the goal named by the :id param and answers 404 when it
// belongs to someone else.
func (s *Server) ownGoal(c *gin.Context) (models.Goal, bool) {
	goal, err := s.tracker.GetGoal(c.Request.Context(), c.Param("id"))
	if err == nil && goal.UserID != userID(c) {
		err = apperrors.NotFound("goal", c.Param("id"))
	}
	if err != nil {
		respondError(c, err)
		return models.Goal{}, false
	}
	return goal, true
}

func (s *Server) listTemplates(c *gin.Context) {
	all, err := templates.All()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

func (s *Server) listGoals(c *gin.Context) {
	goals, err := s.tracker.ListGoals(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, goals)
}

func (s *Server) createGoal(c *gin.Context) {
	var req validation.GoalRequest
	if !bindJSON(c, &req) {
		return
	}
	goal, habits, err := s.tracker.CreateGoalWithHabits(c.Request.Context(), userID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"goal": goal, "habits": habits})
}

func (s *Server) getGoal(c *gin.Context) {
	goal, ok := s.ownGoal(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (s *Server) updateGoal(c *gin.Context) {
	if _, ok := s.ownGoal(c); !ok {
		return
	}
	var req validation.GoalUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	goal, err := s.tracker.UpdateGoal(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, goal)
}

func (s *Server) deleteGoal(c *gin.Context) {
	if _, ok := s.ownGoal(c); !ok {
		return
	}
	if err := s.tracker.DeleteGoal(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) projectGoal(c *gin.Context) {
	if _, ok := s.ownGoal(c); !ok {
		return
	}
	p, err := s.tracker.ProjectCompletion(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projection": p, "label": p.String()})
}

func (s *Server) maxAchievable(c *gin.Context) {
	if _, ok := s.ownGoal(c); !ok {
		return
	}
	day := c.Query("day")
	if day == "" {
		today, err := s.tracker.Today(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		day = today
	}
	n, err := s.tracker.MaxAchievableForDay(c.Request.Context(), c.Param("id"), day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day, "max_achievable": n})
}

// metricBody is the body of progress and weekly log requests; the goal id
// comes from the path.
type metricBody struct {
	Value float64 `json:"value"`
	Notes string  `json:"notes"`
}

func (s *Server) metricRequest(c *gin.Context) (validation.MetricRequest, bool) {
	if _, ok := s.ownGoal(c); !ok {
		return validation.MetricRequest{}, false
	}
	var body metricBody
	if !bindJSON(c, &body) {
		return validation.MetricRequest{}, false
	}
	return validation.MetricRequest{GoalID: c.Param("id"), Value: body.Value, Notes: body.Notes}, true
}

func (s *Server) logProgress(c *gin.Context) {
	req, ok := s.metricRequest(c)
	if !ok {
		return
	}
	entry, goal, err := s.tracker.LogProgress(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"log": entry, "goal": goal})
}

func (s *Server) logWeek(c *gin.Context) {
	req, ok := s.metricRequest(c)
	if !ok {
		return
	}
	week, err := s.tracker.LogWeeklyProgress(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

func (s *Server) timeline(c *gin.Context) {
	if _, ok := s.ownGoal(c); !ok {
		return
	}
	weeks, err := s.tracker.ProgressTimeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, weeks)
}

func (s *Server) currentWeek(c *gin.Context) {
	if _, ok := s.ownGoal(c); !ok {
		return
	}
	week, err := s.tracker.CurrentWeekProgress(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

func (s *Server) weekStatus(c *gin.Context) {
	if _, ok := s.ownGoal(c); !ok {
		return
	}
	status, err := s.tracker.WeeklyLogStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) captureSnapshots(c *gin.Context) {
	n, err := s.tracker.CaptureWeeklySnapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"written": n})
}

func (s *Server) getDay(c *gin.Context) {
	view, err := s.tracker.Day(c.Request.Context(), userID(c), c.Query("day"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) getSettings(c *gin.Context) {
	settings, err := s.tracker.Settings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) updateSettings(c *gin.Context) {
	var req validation.SettingsRequest
	if !bindJSON(c, &req) {
		return
	}
	settings, err := s.tracker.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
