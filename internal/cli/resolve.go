package cli

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/models"
)

// MinIDPrefix is the shortest id prefix accepted on the command line.
const MinIDPrefix = 4

// matchID returns the single id equal to ref or starting with it.
func matchID(kind, ref string, ids []string) (string, error) {
	var matches []string
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
		if len(ref) >= MinIDPrefix && strings.HasPrefix(id, ref) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", apperrors.NotFound(kind, ref)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("%s id prefix %q is ambiguous (%d matches)", kind, ref, len(matches))
}

// Goal resolves a full or abbreviated goal id among the local user's goals.
func (c *Context) Goal(ref string) (models.Goal, error) {
	userID, err := c.User()
	if err != nil {
		return models.Goal{}, err
	}
	goals, err := c.Tracker.ListGoals(context.Background(), userID)
	if err != nil {
		return models.Goal{}, err
	}
	ids := make([]string, len(goals))
	for i, g := range goals {
		ids[i] = g.ID
	}
	id, err := matchID("goal", ref, ids)
	if err != nil {
		return models.Goal{}, err
	}
	for _, g := range goals {
		if g.ID == id {
			return g, nil
		}
	}
	return models.Goal{}, apperrors.NotFound("goal", ref)
}

// Habit resolves a full or abbreviated habit id among the local user's habits.
func (c *Context) Habit(ref string) (models.Habit, error) {
	userID, err := c.User()
	if err != nil {
		return models.Habit{}, err
	}
	habits, err := c.Tracker.ListHabits(context.Background(), userID, "")
	if err != nil {
		return models.Habit{}, err
	}
	ids := make([]string, len(habits))
	for i, h := range habits {
		ids[i] = h.ID
	}
	id, err := matchID("habit", ref, ids)
	if err != nil {
		return models.Habit{}, err
	}
	for _, h := range habits {
		if h.ID == id {
			return h, nil
		}
	}
	return models.Habit{}, apperrors.NotFound("habit", ref)
}

// FindCommunity resolves a full or abbreviated id among the local user's communities.
func (c *Context) FindCommunity(ref string) (models.Community, error) {
	userID, err := c.User()
	if err != nil {
		return models.Community{}, err
	}
	list, err := c.Community.List(context.Background(), userID)
	if err != nil {
		return models.Community{}, err
	}
	ids := make([]string, len(list))
	for i, cm := range list {
		ids[i] = cm.ID
	}
	id, err := matchID("community", ref, ids)
	if err != nil {
		return models.Community{}, err
	}
	for _, cm := range list {
		if cm.ID == id {
			return cm, nil
		}
	}
	return models.Community{}, apperrors.NotFound("community", ref)
}

// ShortID abbreviates an id for table output.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
