package observability

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Prometheus text exposition (format 0.0.4). Every family keeps its series keyed by the rendered
// label set, so writing is a sorted walk of that map.

type family struct {
	name   string
	help   string
	kind   string
	labels []string
}

func (f family) header(w *bufio.Writer) {
	w.WriteString("# HELP " + f.name + " " + f.help + "\n")
	w.WriteString("# TYPE " + f.name + " " + f.kind + "\n")
}

func (f family) key(values []string) string {
	if len(f.labels) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range f.labels {
		if i > 0 {
			b.WriteByte(',')
		}
		val := "unknown"
		if i < len(values) && values[i] != "" {
			val = values[i]
		}
		b.WriteString(name + `="` + labelEscaper.Replace(val) + `"`)
	}
	b.WriteByte('}')
	return b.String()
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// scalarVec backs counters and gauges, labelled or not.
type scalarVec struct {
	family
	mu     sync.RWMutex
	values map[string]float64
}

func (s *scalarVec) init(name, help, kind string, labels []string) {
	s.family = family{name: name, help: help, kind: kind, labels: labels}
	s.values = map[string]float64{}
}

func (s *scalarVec) update(values []string, fn func(float64) float64) {
	k := s.key(values)
	s.mu.Lock()
	s.values[k] = fn(s.values[k])
	s.mu.Unlock()
}

func (s *scalarVec) get(values []string) float64 {
	k := s.key(values)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[k]
}

func (s *scalarVec) WritePrometheus(out io.Writer) error {
	w := bufio.NewWriter(out)
	s.header(w)
	s.mu.RLock()
	for _, k := range sortedKeys(s.values) {
		w.WriteString(s.name + k + " " + formatFloat(s.values[k]) + "\n")
	}
	s.mu.RUnlock()
	return w.Flush()
}

type CounterVec struct{ scalarVec }

func NewCounterVec(name, help string, labels []string) *CounterVec {
	c := &CounterVec{}
	c.init(name, help, "counter", labels)
	return c
}

func (c *CounterVec) Inc(values ...string) { c.Add(1, values...) }

// Add ignores negative deltas; counters only go up.
func (c *CounterVec) Add(v float64, values ...string) {
	if c == nil || v < 0 {
		return
	}
	c.update(values, func(cur float64) float64 { return cur + v })
}

func (c *CounterVec) Value(values ...string) float64 {
	if c == nil {
		return 0
	}
	return c.get(values)
}

func (c *CounterVec) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	return c.scalarVec.WritePrometheus(w)
}

// Counter is an unlabelled CounterVec.
type Counter struct{ vec *CounterVec }

func NewCounter(name, help string) *Counter { return &Counter{vec: NewCounterVec(name, help, nil)} }

func (c *Counter) Inc() {
	if c != nil {
		c.vec.Inc()
	}
}

func (c *Counter) Add(v float64) {
	if c != nil {
		c.vec.Add(v)
	}
}

func (c *Counter) Value() float64 {
	if c == nil {
		return 0
	}
	return c.vec.Value()
}

func (c *Counter) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	return c.vec.WritePrometheus(w)
}

type GaugeVec struct{ scalarVec }

func NewGaugeVec(name, help string, labels []string) *GaugeVec {
	g := &GaugeVec{}
	g.init(name, help, "gauge", labels)
	return g
}

func (g *GaugeVec) Set(v float64, values ...string) {
	if g != nil {
		g.update(values, func(float64) float64 { return v })
	}
}

func (g *GaugeVec) Add(v float64, values ...string) {
	if g != nil {
		g.update(values, func(cur float64) float64 { return cur + v })
	}
}

func (g *GaugeVec) Value(values ...string) float64 {
	if g == nil {
		return 0
	}
	return g.get(values)
}

func (g *GaugeVec) WritePrometheus(w io.Writer) error {
	if g == nil {
		return nil
	}
	return g.scalarVec.WritePrometheus(w)
}

// Gauge is an unlabelled GaugeVec.
type Gauge struct{ vec *GaugeVec }

func NewGauge(name, help string) *Gauge { return &Gauge{vec: NewGaugeVec(name, help, nil)} }

func (g *Gauge) Set(v float64) {
	if g != nil {
		g.vec.Set(v)
	}
}

func (g *Gauge) Inc() {
	if g != nil {
		g.vec.Add(1)
	}
}

func (g *Gauge) Dec() {
	if g != nil {
		g.vec.Add(-1)
	}
}

func (g *Gauge) Value() float64 {
	if g == nil {
		return 0
	}
	return g.vec.Value()
}

func (g *Gauge) WritePrometheus(w io.Writer) error {
	if g == nil {
		return nil
	}
	return g.vec.WritePrometheus(w)
}

var defaultBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

type HistogramVec struct {
	family
	buckets []float64
	mu      sync.RWMutex
	series  map[string]*histogram
}

// histogram counts are cumulative per bucket; the +Inf bucket equals count.
type histogram struct {
	counts []uint64
	sum    float64
	count  uint64
}

func NewHistogramVec(name, help string, labels []string, buckets []float64) *HistogramVec {
	if len(buckets) == 0 {
		buckets = defaultBuckets
	}
	b := append([]float64(nil), buckets...)
	sort.Float64s(b)
	return &HistogramVec{
		family:  family{name: name, help: help, kind: "histogram", labels: labels},
		buckets: b,
		series:  map[string]*histogram{},
	}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	k := h.key(values)
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.series[k]
	if s == nil {
		s = &histogram{counts: make([]uint64, len(h.buckets))}
		h.series[k] = s
	}
	s.sum += v
	s.count++
	for i := sort.SearchFloat64s(h.buckets, v); i < len(h.buckets); i++ {
		s.counts[i]++
	}
}

func (h *HistogramVec) WritePrometheus(out io.Writer) error {
	if h == nil {
		return nil
	}
	w := bufio.NewWriter(out)
	h.header(w)
	h.mu.RLock()
	for _, k := range sortedKeys(h.series) {
		s := h.series[k]
		for i, b := range h.buckets {
			w.WriteString(h.name + "_bucket" + withLe(k, formatFloat(b)) + " " + strconv.FormatUint(s.counts[i], 10) + "\n")
		}
		w.WriteString(h.name + "_bucket" + withLe(k, "+Inf") + " " + strconv.FormatUint(s.count, 10) + "\n")
		w.WriteString(h.name + "_sum" + k + " " + formatFloat(s.sum) + "\n")
		w.WriteString(h.name + "_count" + k + " " + strconv.FormatUint(s.count, 10) + "\n")
	}
	h.mu.RUnlock()
	return w.Flush()
}

func withLe(key, le string) string {
	if key == "" {
		return `{le="` + le + `"}`
	}
	return strings.TrimSuffix(key, "}") + `,le="` + le + `"}`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
