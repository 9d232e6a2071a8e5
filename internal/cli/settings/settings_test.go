package settings

import (
	"strings"
	"testing"

	"github.com/julianstephens/stride/internal/cli/clitest"
	apperrors "github.com/julianstephens/stride/internal/errors"
)

func ptr[T any](v T) *T { return &v }

func TestSettingsSetAndShow(t *testing.T) {
	env := clitest.Initialized(t)

	set := &SettingsSetCmd{DisplayName: ptr("Ada"), Timezone: ptr("Europe/Berlin"), RateWindowDays: ptr(14)}
	if err := set.Run(env.Ctx); err != nil {
		t.Fatalf("settings set failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Settings updated successfully.") {
		t.Errorf("unexpected set output %q", out)
	}

	if err := (&SettingsShowCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("settings show failed: %v", err)
	}
	out := env.Output()
	for _, want := range []string{"Display Name:          Ada", "Timezone:              Europe/Berlin", "Rate Window:           14 days", "Last Streak Refresh:   never", "Next Capture:"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestSettingsSetNoChanges(t *testing.T) {
	env := clitest.Initialized(t)

	if err := (&SettingsSetCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("settings set failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "No changes specified") {
		t.Errorf("expected no-change hint, got %q", out)
	}
}

func TestSettingsSetRejectsBadTimezone(t *testing.T) {
	env := clitest.Initialized(t)

	err := (&SettingsSetCmd{Timezone: ptr("Mars/Olympus")}).Run(env.Ctx)
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
