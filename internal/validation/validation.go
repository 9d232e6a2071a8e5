// Package validation checks request payloads before they reach the tracker.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/stride/internal/constants"
	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/utils"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("day", validateDay)
	_ = validate.RegisterValidation("goaltype", validateGoalType)
	_ = validate.RegisterValidation("timezone", validateTimezone)
	_ = validate.RegisterValidation("hhmm", validateTimeOfDay)
}

func validateDay(fl validator.FieldLevel) bool {
	_, err := time.Parse(constants.DateFormat, fl.Field().String())
	return err == nil
}

func validateGoalType(fl validator.FieldLevel) bool {
	switch constants.GoalType(fl.Field().String()) {
	case constants.GoalWeightLoss, constants.GoalReading:
		return true
	}
	return false
}

func validateTimezone(fl validator.FieldLevel) bool {
	return utils.ValidateTimezone(fl.Field().String())
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	_, _, err := utils.ParseTimeOfDay(fl.Field().String())
	return err == nil
}

// Check validates a request struct and returns the first failure as an
// *errors.ValidationError with a readable message.
func Check(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validating request: %w", err)
	}
	fe := verrs[0]
	return &apperrors.ValidationError{Field: fe.Field(), Message: message(fe)}
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "day":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "goaltype":
		return fmt.Sprintf("%s must be %q or %q", field, constants.GoalWeightLoss, constants.GoalReading)
	case "timezone":
		return fmt.Sprintf("%s is not a valid IANA timezone", field)
	case "hhmm":
		return fmt.Sprintf("%s must be a time in HH:MM format", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex color such as #3b82f6", field)
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}
