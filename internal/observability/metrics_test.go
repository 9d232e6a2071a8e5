package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHabitLogWrite(t *testing.T) {
	before := testutil.ToFloat64(habitLogWrites.WithLabelValues("false", "demoted"))
	RecordHabitLogWrite(false, true)
	after := testutil.ToFloat64(habitLogWrites.WithLabelValues("false", "demoted"))
	if after-before != 1 {
		t.Errorf("demoted counter moved by %v, want 1", after-before)
	}
}

func TestRecordJobStatus(t *testing.T) {
	okBefore := testutil.ToFloat64(jobRuns.WithLabelValues("weekly_capture", "success"))
	errBefore := testutil.ToFloat64(jobRuns.WithLabelValues("weekly_capture", "error"))

	RecordJob("weekly_capture", time.Millisecond, nil)
	RecordJob("weekly_capture", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(jobRuns.WithLabelValues("weekly_capture", "success")) - okBefore; got != 1 {
		t.Errorf("success runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(jobRuns.WithLabelValues("weekly_capture", "error")) - errBefore; got != 1 {
		t.Errorf("error runs = %v, want 1", got)
	}
}

func TestRecordUnlockedIgnoresZero(t *testing.T) {
	before := testutil.ToFloat64(achievementsUnlocked.WithLabelValues("goals"))
	RecordUnlocked("goals", 0)
	RecordUnlocked("goals", 2)
	if got := testutil.ToFloat64(achievementsUnlocked.WithLabelValues("goals")) - before; got != 2 {
		t.Errorf("unlocked delta = %v, want 2", got)
	}
}
