package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/levelup-backend/internal/data/aggregates"
)

// HooksRecorder captures aggregate hook signals in tests.
type HooksRecorder struct {
	mu sync.Mutex

	Operations []OperationEvent
	Steps      []StepEvent
	Conflicts  []string
	Retries    []string
}

type OperationEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

type StepEvent struct {
	Op     string
	Step   string
	Status string
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Operations = append(h.Operations, OperationEvent{Name: name, Status: status, Duration: dur})
}

func (h *HooksRecorder) ObserveStep(op, step, status string, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Steps = append(h.Steps, StepEvent{Op: op, Step: step, Status: status})
}

func (h *HooksRecorder) IncConflict(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Conflicts = append(h.Conflicts, name)
}

func (h *HooksRecorder) IncRetry(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Retries = append(h.Retries, name)
}

// Statuses returns the recorded statuses of op in order.
func (h *HooksRecorder) Statuses(op string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, ev := range h.Operations {
		if ev.Name == op {
			out = append(out, ev.Status)
		}
	}
	return out
}

// StepNames returns the steps of op that ran, in order; a failed step is suffixed with ":<status>".
func (h *HooksRecorder) StepNames(op string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, ev := range h.Steps {
		if ev.Op != op {
			continue
		}
		if ev.Status == "success" {
			out = append(out, ev.Step)
		} else {
			out = append(out, ev.Step+":"+ev.Status)
		}
	}
	return out
}
