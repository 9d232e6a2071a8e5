package tracker

import (
	"context"
	"strings"

	"github.com/julianstephens/stride/internal/constants"
	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/logger"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/templates"
	"github.com/julianstephens/stride/internal/validation"
)

// buildHabit turns a request into a habit of goal. Template ids must exist
// in the goal type's catalog unless they are empty or "custom"; template
// defaults fill in a missing frequency and color.
func (s *Service) buildHabit(goal models.Goal, userID string, req validation.HabitRequest) (models.Habit, error) {
	if err := req.Validate(); err != nil {
		return models.Habit{}, err
	}
	h := models.Habit{
		ID:          newID(),
		UserID:      userID,
		GoalID:      goal.ID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Frequency:   req.Frequency,
		TemplateID:  req.TemplateID,
		Color:       req.Color,
		CreatedAt:   s.Now(),
	}

	if req.TemplateID != "" && req.TemplateID != constants.TemplateCustom {
		if goal.ID == "" {
			return models.Habit{}, apperrors.Invalid("template_id", "template %q requires a goal", req.TemplateID)
		}
		tmpl, ok := templates.Habit(goal.Type, req.TemplateID)
		if !ok {
			return models.Habit{}, apperrors.Invalid("template_id", "unknown template %q for %s goals", req.TemplateID, goal.Type)
		}
		if h.Frequency == "" {
			h.Frequency = tmpl.Frequency
		}
		if h.Color == "" {
			h.Color = tmpl.Color
		}
		if h.Description == "" {
			h.Description = tmpl.Description
		}
	}
	if h.Frequency == "" {
		h.Frequency = constants.FrequencyDaily
	}
	return h, nil
}

// CreateHabit adds a habit, attached to req.GoalID when set.
func (s *Service) CreateHabit(ctx context.Context, userID string, req validation.HabitRequest) (models.Habit, error) {
	var goal models.Goal
	if req.GoalID != "" {
		g, err := s.store.GetGoal(ctx, req.GoalID)
		if err != nil {
			return models.Habit{}, err
		}
		if g.UserID != userID {
			return models.Habit{}, apperrors.NotFound("goal", req.GoalID)
		}
		goal = g
	}
	h, err := s.buildHabit(goal, userID, req)
	if err != nil {
		return models.Habit{}, err
	}
	if err := s.store.AddHabit(ctx, h); err != nil {
		return models.Habit{}, err
	}
	logger.Info("Created habit", "habit", h.ID, "goal", h.GoalID, "template", h.TemplateID)
	return h, nil
}

func (s *Service) GetHabit(ctx context.Context, habitID string) (models.Habit, error) {
	return s.store.GetHabit(ctx, habitID)
}

// ListHabits lists the user's habits, or one goal's habits when goalID is set.
func (s *Service) ListHabits(ctx context.Context, userID, goalID string) ([]models.Habit, error) {
	if goalID != "" {
		return s.store.ListGoalHabits(ctx, goalID)
	}
	return s.store.ListHabits(ctx, userID)
}

// DeleteHabit removes the habit and its logs.
func (s *Service) DeleteHabit(ctx context.Context, habitID string) error {
	if err := s.store.DeleteHabit(ctx, habitID); err != nil {
		return err
	}
	logger.Info("Deleted habit", "habit", habitID)
	return nil
}
