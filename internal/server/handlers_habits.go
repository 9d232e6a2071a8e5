package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/stride/internal/achievement"
	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/validation"
)

func (s *Server) ownHabitID(c *gin.Context, habitID string) (models.Habit, bool) {
	habit, err := s.tracker.GetHabit(c.Request.Context(), habitID)
	if err == nil && habit.UserID != userID(c) {
		err = apperrors.NotFound("habit", habitID)
	}
	if err != nil {
		respondError(c, err)
		return models.Habit{}, false
	}
	return habit, true
}

func (s *Server) ownHabit(c *gin.Context) (models.Habit, bool) {
	return s.ownHabitID(c, c.Param("id"))
}

func (s *Server) listHabits(c *gin.Context) {
	habits, err := s.tracker.ListHabits(c.Request.Context(), userID(c), c.Query("goal_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, habits)
}

func (s *Server) createHabit(c *gin.Context) {
	var req validation.HabitRequest
	if !bindJSON(c, &req) {
		return
	}
	habit, err := s.tracker.CreateHabit(c.Request.Context(), userID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, habit)
}

func (s *Server) deleteHabit(c *gin.Context) {
	if _, ok := s.ownHabit(c); !ok {
		return
	}
	if err := s.tracker.DeleteHabit(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getStreak(c *gin.Context) {
	if _, ok := s.ownHabit(c); !ok {
		return
	}
	st, err := s.tracker.GetStreak(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) getRate(c *gin.Context) {
	if _, ok := s.ownHabit(c); !ok {
		return
	}
	window := 0
	if raw := c.Query("window"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperrors.Invalid("window", "window must be a number of days"))
			return
		}
		window = n
	}
	rate, err := s.tracker.GetCompletionRate(c.Request.Context(), c.Param("id"), window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"habit_id": c.Param("id"), "rate": rate})
}

func (s *Server) getMilestones(c *gin.Context) {
	if _, ok := s.ownHabit(c); !ok {
		return
	}
	m, err := s.tracker.Milestones(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) logRequest(c *gin.Context) (validation.LogRequest, bool) {
	var req validation.LogRequest
	if !bindJSON(c, &req) {
		return req, false
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return req, false
	}
	if _, ok := s.ownHabitID(c, req.HabitID); !ok {
		return req, false
	}
	return req, true
}

func (s *Server) logHabit(c *gin.Context) {
	req, ok := s.logRequest(c)
	if !ok {
		return
	}
	entry, err := s.tracker.LogHabitCompletion(c.Request.Context(), req.HabitID, req.Day, req.Completed, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) toggleHabit(c *gin.Context) {
	req, ok := s.logRequest(c)
	if !ok {
		return
	}
	writes, err := s.tracker.ResolveConflictsAndToggle(c.Request.Context(), req.HabitID, req.Day, req.Completed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"writes": writes})
}

func (s *Server) listAchievements(c *gin.Context) {
	list, err := s.tracker.ListAchievementsWithStatus(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) achievementStats(c *gin.Context) {
	stats, err := s.tracker.AchievementStats(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// checkBody names the trigger only; the counter is recomputed from stored data.
type checkBody struct {
	Trigger achievement.Trigger `json:"trigger" binding:"required"`
}

func (s *Server) checkAchievements(c *gin.Context) {
	var body checkBody
	if !bindJSON(c, &body) {
		return
	}
	ids, err := s.tracker.RecheckAchievements(c.Request.Context(), userID(c), body.Trigger)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unlocked": nonNil(ids)})
}

func (s *Server) revokeAchievements(c *gin.Context) {
	ids, err := s.tracker.RevokeStreakBadges(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revoked": nonNil(ids)})
}

type shieldBody struct {
	HabitID string `json:"habit_id"`
}

func (s *Server) useShield(c *gin.Context) {
	var body shieldBody
	if !bindJSON(c, &body) {
		return
	}
	res, err := s.tracker.UseShield(c.Request.Context(), userID(c), body.HabitID)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	if !res.Allowed {
		status = http.StatusConflict
	}
	c.JSON(status, res)
}

func (s *Server) shieldStatus(c *gin.Context) {
	res, err := s.tracker.ShieldStatus(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
