package indexing_test

import (
	"testing"

	"jobmate/search-service/internal/indexing"
	"jobmate/search-service/internal/model"
)

var allStates = []model.JobState{
	model.JobPending, model.JobProcessing, model.JobCompleted, model.JobFailed,
}

// ── ParseJobState ──────────────────────────────────────────────────────────

func TestParseJobState_ValidValues(t *testing.T) {
	for _, s := range []string{"PENDING", "PROCESSING", "COMPLETED", "FAILED"} {
		got, err := indexing.ParseJobState(s)
		if err != nil {
			t.Errorf("ParseJobState(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseJobState(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseJobState_InvalidValue(t *testing.T) {
	for _, s := range []string{"", "pending", "DONE"} {
		if _, err := indexing.ParseJobState(s); err == nil {
			t.Errorf("ParseJobState(%q) expected error, got nil", s)
		}
	}
}

// ── IsTransitionAllowed — forward transitions ─────────────────────────────

func TestIsTransitionAllowed_Valid(t *testing.T) {
	cases := []struct{ from, to model.JobState }{
		{model.JobPending, model.JobProcessing},
		{model.JobProcessing, model.JobCompleted},
		{model.JobProcessing, model.JobFailed},
	}
	for _, c := range cases {
		if !indexing.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be true", c.from, c.to)
		}
	}
}

// ── IsTransitionAllowed — terminal states have no outgoing transitions ─────

func TestIsTransitionAllowed_FromTerminal(t *testing.T) {
	for _, from := range []model.JobState{model.JobCompleted, model.JobFailed} {
		if !indexing.IsTerminal(from) {
			t.Errorf("IsTerminal(%s) should be true", from)
		}
		for _, to := range allStates {
			if indexing.IsTransitionAllowed(from, to) {
				t.Errorf("IsTransitionAllowed(%s → %s) should be false (terminal state)", from, to)
			}
		}
	}
}

// ── IsTransitionAllowed — skips, backwards and self ───────────────────────

func TestIsTransitionAllowed_Forbidden(t *testing.T) {
	cases := []struct{ from, to model.JobState }{
		{model.JobPending, model.JobCompleted},     // skip PROCESSING
		{model.JobPending, model.JobFailed},        // skip PROCESSING
		{model.JobProcessing, model.JobPending},    // backwards
		{model.JobPending, model.JobPending},       // self
		{model.JobProcessing, model.JobProcessing}, // self
	}
	for _, c := range cases {
		if indexing.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false", c.from, c.to)
		}
	}
	for _, s := range []model.JobState{model.JobPending, model.JobProcessing} {
		if indexing.IsTerminal(s) {
			t.Errorf("IsTerminal(%s) should be false", s)
		}
	}
}

// ── IsStatusUpdateAllowed — recorded status never moves backwards ─────────

func TestIsStatusUpdateAllowed(t *testing.T) {
	cases := []struct {
		stored, next model.JobState
		want         bool
	}{
		{model.JobPending, model.JobPending, true},
		{model.JobPending, model.JobProcessing, true},
		{model.JobPending, model.JobFailed, true}, // enqueue failed
		{model.JobProcessing, model.JobProcessing, true},
		{model.JobProcessing, model.JobCompleted, true},
		{model.JobProcessing, model.JobPending, false}, // late PENDING write
		{model.JobCompleted, model.JobPending, false},
		{model.JobCompleted, model.JobProcessing, false}, // redelivery after ack loss
		{model.JobCompleted, model.JobCompleted, true},
		{model.JobFailed, model.JobCompleted, true},
		{model.JobFailed, model.JobPending, false},
	}
	for _, c := range cases {
		if got := indexing.IsStatusUpdateAllowed(c.stored, c.next); got != c.want {
			t.Errorf("IsStatusUpdateAllowed(%s → %s) = %v, want %v", c.stored, c.next, got, c.want)
		}
	}
}
