// Package templates lists the predefined habits offered for each goal type.
package templates

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/stride/internal/constants"
)

//go:embed templates.yaml
var templatesYAML []byte

type HabitTemplate struct {
	ID          string              `yaml:"id" json:"id"`
	Name        string              `yaml:"name" json:"name"`
	Description string              `yaml:"description" json:"description"`
	Color       string              `yaml:"color" json:"color"`
	Frequency   constants.Frequency `yaml:"frequency" json:"frequency"`
}

type GoalType struct {
	Title       string          `yaml:"title" json:"title"`
	Icon        string          `yaml:"icon" json:"icon"`
	Description string          `yaml:"description" json:"description"`
	Unit        string          `yaml:"unit" json:"unit"`
	Habits      []HabitTemplate `yaml:"habits" json:"habits"`
}

var (
	loadOnce sync.Once
	loaded   map[constants.GoalType]GoalType
	loadErr  error
)

// All returns the parsed template table keyed by goal type.
func All() (map[constants.GoalType]GoalType, error) {
	loadOnce.Do(func() {
		loadErr = yaml.Unmarshal(templatesYAML, &loaded)
		if loadErr != nil {
			loadErr = fmt.Errorf("parsing goal templates: %w", loadErr)
		}
	})
	return loaded, loadErr
}

// ForGoal returns the configuration of one goal type.
func ForGoal(goalType constants.GoalType) (GoalType, error) {
	all, err := All()
	if err != nil {
		return GoalType{}, err
	}
	gt, ok := all[goalType]
	if !ok {
		return GoalType{}, fmt.Errorf("unknown goal type %q", goalType)
	}
	return gt, nil
}

// Habit looks up a habit template for a goal type.
func Habit(goalType constants.GoalType, templateID string) (HabitTemplate, bool) {
	gt, err := ForGoal(goalType)
	if err != nil {
		return HabitTemplate{}, false
	}
	for _, h := range gt.Habits {
		if h.ID == templateID {
			return h, true
		}
	}
	return HabitTemplate{}, false
}
