package testutil

import (
	"testing"
	"time"
)

func TestHooksRecorder_CapturesSignals(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("Learning.Progress.SubmitActivityResult", "success", 10*time.Millisecond)
	h.ObserveOperation("Learning.Progress.SubmitActivityResult", "not_found", time.Millisecond)
	h.ObserveOperation("Learning.Onboarding.ProvisionUser", "success", time.Millisecond)
	h.ObserveStep("Learning.Progress.SubmitActivityResult", "resolve_activity", "success", time.Millisecond)
	h.ObserveStep("Learning.Progress.SubmitActivityResult", "ensure_user", "retryable", time.Millisecond)
	h.IncConflict("Learning.Progress.SubmitActivityResult")
	h.IncRetry("Learning.Progress.SubmitActivityResult")

	got := h.Statuses("Learning.Progress.SubmitActivityResult")
	if len(got) != 2 || got[0] != "success" || got[1] != "not_found" {
		t.Fatalf("statuses: want=[success not_found] got=%v", got)
	}
	steps := h.StepNames("Learning.Progress.SubmitActivityResult")
	if len(steps) != 2 || steps[0] != "resolve_activity" || steps[1] != "ensure_user:retryable" {
		t.Fatalf("steps: want=[resolve_activity ensure_user:retryable] got=%v", steps)
	}
	if len(h.Conflicts) != 1 || len(h.Retries) != 1 {
		t.Fatalf("unexpected counters conflicts=%v retries=%v", h.Conflicts, h.Retries)
	}
}
