package aggregates

import (
	"time"

	"github.com/yungbote/levelup-backend/internal/observability"
)

// Hooks receives one ObserveOperation per aggregate write and one ObserveStep per pipeline step
// that ran inside it. A step that is never reached is not reported.
type Hooks interface {
	ObserveOperation(op, status string, dur time.Duration)
	ObserveStep(op, step, status string, dur time.Duration)
	IncConflict(op string)
	IncRetry(op string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration)      {}
func (noopHooks) ObserveStep(string, string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                                {}
func (noopHooks) IncRetry(string)                                   {}

// metricsHooks forwards to the process metrics; a nil *Metrics yields noopHooks.
type metricsHooks struct{ m *observability.Metrics }

func NewObservabilityHooks(m *observability.Metrics) Hooks {
	if m == nil {
		return noopHooks{}
	}
	return metricsHooks{m: m}
}

func (h metricsHooks) ObserveOperation(op, status string, dur time.Duration) {
	h.m.ObserveAggregateOperation(op, status, dur)
}

func (h metricsHooks) ObserveStep(op, step, status string, dur time.Duration) {
	h.m.ObserveAggregateStep(op, step, status, dur)
}

func (h metricsHooks) IncConflict(op string) { h.m.IncAggregateConflict(op) }
func (h metricsHooks) IncRetry(op string)    { h.m.IncAggregateRetry(op) }
