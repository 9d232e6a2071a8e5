package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/stride/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the clock's current time in the specified timezone.
func NowInTimezone(clock Clock, timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return clock.Now().In(loc), nil
}

// GetTodayInTimezone returns today's date string (YYYY-MM-DD) in the specified timezone.
func GetTodayInTimezone(clock Clock, timezone string) (string, error) {
	now, err := NowInTimezone(clock, timezone)
	if err != nil {
		return "", err
	}
	return now.Format(constants.DateFormat), nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// ParseDay parses a YYYY-MM-DD day as midnight UTC. Calendar arithmetic on
// days is done in UTC so that DST transitions never shift a day.
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", day)
	}
	return t, nil
}

// FormatDay returns the calendar day of t in its own location.
func FormatDay(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// AddDays shifts a YYYY-MM-DD day by n calendar days.
// It panics on a malformed day; callers validate input first.
func AddDays(day string, n int) string {
	t, err := ParseDay(day)
	if err != nil {
		panic(err)
	}
	return t.AddDate(0, 0, n).Format(constants.DateFormat)
}

// DaysBetween returns the number of calendar days from a to b (negative if b is before a).
func DaysBetween(a, b string) (int, error) {
	ta, err := ParseDay(a)
	if err != nil {
		return 0, err
	}
	tb, err := ParseDay(b)
	if err != nil {
		return 0, err
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}

// WeekStart returns the Sunday that begins the calendar week containing day.
func WeekStart(day string) (string, error) {
	t, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, -int(t.Weekday())).Format(constants.DateFormat), nil
}

// ParseTimeOfDay parses an HH:MM string into hours and minutes.
func ParseTimeOfDay(s string) (int, int, error) {
	t, err := time.Parse(constants.TimeFormat, s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q (expected HH:MM)", s)
	}
	return t.Hour(), t.Minute(), nil
}

// ParseWeekday parses a weekday name ("sat", "saturday") or number (0=Sunday).
func ParseWeekday(s string) (time.Weekday, error) {
	days := map[string]time.Weekday{
		"sun": time.Sunday, "sunday": time.Sunday,
		"mon": time.Monday, "monday": time.Monday,
		"tue": time.Tuesday, "tuesday": time.Tuesday,
		"wed": time.Wednesday, "wednesday": time.Wednesday,
		"thu": time.Thursday, "thursday": time.Thursday,
		"fri": time.Friday, "friday": time.Friday,
		"sat": time.Saturday, "saturday": time.Saturday,
		"0": time.Sunday, "1": time.Monday, "2": time.Tuesday, "3": time.Wednesday,
		"4": time.Thursday, "5": time.Friday, "6": time.Saturday,
	}
	if wd, ok := days[s]; ok {
		return wd, nil
	}
	return time.Sunday, fmt.Errorf("invalid weekday: %s", s)
}
