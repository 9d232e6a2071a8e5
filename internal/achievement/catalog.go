// Package achievement holds the badge catalog and decides which badges a
// counter value earns.
package achievement

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/stride/internal/constants"
	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/models"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Trigger names the event whose counter is being evaluated
type Trigger string

const (
	TriggerStreak           Trigger = "streak"
	TriggerGoalCompleted    Trigger = "goal_completed"
	TriggerCommunityJoined  Trigger = "community_joined"
	TriggerCommunityCreated Trigger = "community_created"
	TriggerCheerSent        Trigger = "cheer_sent"
	TriggerSessions         Trigger = "sessions_completed"
)

// CategoryFor maps a trigger to the catalog category it is checked against.
func CategoryFor(t Trigger) (constants.AchievementCategory, error) {
	switch t {
	case TriggerStreak:
		return constants.CategoryStreak, nil
	case TriggerGoalCompleted:
		return constants.CategoryGoals, nil
	case TriggerCommunityJoined, TriggerCommunityCreated, TriggerCheerSent:
		return constants.CategorySocial, nil
	case TriggerSessions:
		return constants.CategoryConsistency, nil
	}
	return "", apperrors.Invalid("trigger", "unknown achievement trigger %q", t)
}

// Catalog is the immutable list of achievements shipped with the binary.
type Catalog struct {
	entries []models.Achievement
}

// LoadCatalog parses the embedded catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog parses a YAML list of achievements and rejects duplicate ids.
func ParseCatalog(data []byte) (*Catalog, error) {
	var entries []models.Achievement
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing achievement catalog: %w", err)
	}
	seen := make(map[string]bool, len(entries))
	for _, a := range entries {
		if a.ID == "" {
			return nil, fmt.Errorf("achievement catalog entry %q has no id", a.Name)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("duplicate achievement id %q", a.ID)
		}
		seen[a.ID] = true
	}
	return &Catalog{entries: entries}, nil
}

// All returns a copy of every entry.
func (c *Catalog) All() []models.Achievement {
	return slices.Clone(c.entries)
}

func (c *Catalog) Len() int { return len(c.entries) }

// Get returns the entry with the given id.
func (c *Catalog) Get(id string) (models.Achievement, bool) {
	for _, a := range c.entries {
		if a.ID == id {
			return a, true
		}
	}
	return models.Achievement{}, false
}

// Earned returns the ids of entries in category whose requirement is met by
// value and that are not in unlocked. With a non-empty template, entries
// restricted to other templates are left out.
func Earned(entries []models.Achievement, category constants.AchievementCategory, value int, template string, unlocked map[string]bool) []string {
	var ids []string
	for _, a := range entries {
		if a.Category != category || a.Requirement > value || unlocked[a.ID] {
			continue
		}
		if template != "" && len(a.Templates) > 0 && !slices.Contains(a.Templates, template) {
			continue
		}
		ids = append(ids, a.ID)
	}
	return ids
}

// Revocable returns the ids among unlocked whose achievement type is streak.
func Revocable(entries []models.Achievement, unlocked []string) []string {
	streakType := make(map[string]bool)
	for _, a := range entries {
		if a.Type == constants.AchievementTypeStreak {
			streakType[a.ID] = true
		}
	}
	var ids []string
	for _, id := range unlocked {
		if streakType[id] {
			ids = append(ids, id)
		}
	}
	return ids
}
