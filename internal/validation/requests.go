package validation

import "github.com/julianstephens/stride/internal/constants"

// GoalRequest creates a goal, optionally together with its habits.
// StartValue is the current weight for weight-loss goals and the number of
// books already read for reading goals.
type GoalRequest struct {
	Type        constants.GoalType `json:"type" validate:"required,goaltype"`
	Title       string             `json:"title" validate:"required,max=120"`
	StartValue  float64            `json:"start_value" validate:"gte=0"`
	TargetValue float64            `json:"target_value" validate:"gt=0"`
	Unit        string             `json:"unit" validate:"max=20"`
	StartDate   string             `json:"start_date" validate:"omitempty,day"`
	Deadline    string             `json:"deadline" validate:"required,day"`
	Habits      []HabitRequest     `json:"habits" validate:"omitempty,max=20,dive"`
}

type GoalUpdateRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=120"`
	TargetValue *float64 `json:"target_value" validate:"omitempty,gt=0"`
	Deadline    *string  `json:"deadline" validate:"omitempty,day"`
}

type HabitRequest struct {
	GoalID      string              `json:"goal_id"`
	Name        string              `json:"name" validate:"required,max=80"`
	Description string              `json:"description" validate:"max=500"`
	Frequency   constants.Frequency `json:"frequency" validate:"omitempty,oneof=daily weekly flexible"`
	TemplateID  string              `json:"template_id" validate:"max=40"`
	Color       string              `json:"color" validate:"omitempty,hexcolor"`
}

type LogRequest struct {
	HabitID   string `json:"habit_id" validate:"required"`
	Day       string `json:"day" validate:"required,day"`
	Completed bool   `json:"completed"`
	Notes     string `json:"notes" validate:"max=500"`
}

// MetricRequest carries a goal measurement (progress logs and weekly logs).
type MetricRequest struct {
	GoalID string  `json:"goal_id" validate:"required"`
	Value  float64 `json:"value" validate:"gte=0"`
	Notes  string  `json:"notes" validate:"max=500"`
}

type CommunityRequest struct {
	Name        string             `json:"name" validate:"required,max=60"`
	Description string             `json:"description" validate:"max=300"`
	GoalType    constants.GoalType `json:"goal_type" validate:"omitempty,goaltype"`
	MaxMembers  int                `json:"max_members" validate:"omitempty,min=2,max=100"`
}

// EncouragementRequest is a cheer or nudge; an empty message gets the default.
type EncouragementRequest struct {
	ToUserID string `json:"to_user_id" validate:"required"`
	Message  string `json:"message" validate:"max=280"`
}

type ReactionRequest struct {
	Emoji string `json:"emoji" validate:"required,max=16"`
}

type SettingsRequest struct {
	Timezone             *string `json:"timezone" validate:"omitempty,timezone"`
	DisplayName          *string `json:"display_name" validate:"omitempty,min=1,max=40"`
	RateWindowDays       *int    `json:"rate_window_days" validate:"omitempty,min=1,max=365"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
	WeeklyCaptureWeekday *string `json:"weekly_capture_weekday" validate:"omitempty,oneof=sun sunday mon monday tue tuesday wed wednesday thu thursday fri friday sat saturday"`
	WeeklyCaptureTime    *string `json:"weekly_capture_time" validate:"omitempty,hhmm"`
}

func (r *GoalRequest) Validate() error          { return Check(r) }
func (r *GoalUpdateRequest) Validate() error    { return Check(r) }
func (r *HabitRequest) Validate() error         { return Check(r) }
func (r *LogRequest) Validate() error           { return Check(r) }
func (r *MetricRequest) Validate() error        { return Check(r) }
func (r *CommunityRequest) Validate() error     { return Check(r) }
func (r *SettingsRequest) Validate() error      { return Check(r) }
func (r *EncouragementRequest) Validate() error { return Check(r) }
func (r *ReactionRequest) Validate() error      { return Check(r) }
