package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.ObserveSubmission("CREATE", true, 10)
	m.IncAggregateConflict("op")
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil WritePrometheus: %v", err)
	}
}

func TestMetrics_WritePrometheus(t *testing.T) {
	m := New()
	m.ObserveSubmission("CREATE", true, 40)
	m.ObserveSubmission("UPDATE_ATTEMPTS_ONLY", true, 0)
	m.ObserveAggregateOperation("Learning.Progress.SubmitActivityResult", "success", 20*time.Millisecond)
	m.IncLevelCompleted(1)
	m.IncAchievementGranted("PERFECT_QUIZ")

	if got := m.submissions.Value("CREATE", "true"); got != 1 {
		t.Fatalf("submissions: want=1 got=%v", got)
	}
	if got := m.pointsAwarded.Value(); got != 40 {
		t.Fatalf("points: want=40 got=%v", got)
	}

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`lu_submissions_total{action="CREATE",completed="true"} 1`,
		`lu_points_awarded_total 40`,
		`lu_level_completions_total{level="1"} 1`,
		`lu_achievements_granted_total{type="PERFECT_QUIZ"} 1`,
		`lu_aggregate_operation_duration_seconds_count{op="Learning.Progress.SubmitActivityResult",status="success"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestHistogramVec_Buckets(t *testing.T) {
	h := NewHistogramVec("h", "help", []string{"k"}, []float64{1, 2})
	h.Observe(0.5, "a")
	h.Observe(1.5, "a")
	h.Observe(3, "a")
	var buf bytes.Buffer
	if err := h.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`h_bucket{k="a",le="1"} 1`,
		`h_bucket{k="a",le="2"} 2`,
		`h_bucket{k="a",le="+Inf"} 3`,
		`h_count{k="a"} 3`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestParseHeaders(t *testing.T) {
	h := parseHeaders(" a=1, b = 2 ,bad, =x")
	if len(h) != 2 || h["a"] != "1" || h["b"] != "2" {
		t.Fatalf("unexpected headers: %v", h)
	}
	if parseHeaders("") != nil {
		t.Fatalf("empty should be nil")
	}
	if clampRatio(2) != 1 || clampRatio(-1) != 0 || clampRatio(0.3) != 0.3 {
		t.Fatalf("clampRatio")
	}
}

func TestScalarPrimitives(t *testing.T) {
	c := NewCounterVec("c_total", "help", []string{"path"})
	c.Inc(`/a"b`)
	c.Add(-3, `/a"b`)
	c.Add(2, "")
	if got := c.Value(`/a"b`); got != 1 {
		t.Fatalf("counter: want=1 got=%v", got)
	}

	g := NewGauge("g", "help")
	g.Inc()
	g.Inc()
	g.Dec()
	if got := g.Value(); got != 1 {
		t.Fatalf("gauge: want=1 got=%v", got)
	}

	var buf bytes.Buffer
	for _, e := range []exporter{c, g} {
		if err := e.WritePrometheus(&buf); err != nil {
			t.Fatalf("WritePrometheus: %v", err)
		}
	}
	out := buf.String()
	for _, want := range []string{
		"# TYPE c_total counter\n",
		`c_total{path="/a\"b"} 1`,
		`c_total{path="unknown"} 2`,
		"# TYPE g gauge\ng 1\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}
