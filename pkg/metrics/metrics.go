package metrics

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/osakka/axiosgen/pkg/logging"
)

// Metrics is the core metrics interface
type Metrics interface {
	// Counters - values that only increase
	Inc(name string, labels ...string)
	Add(name string, value float64, labels ...string)

	// Gauges - values that can go up and down
	Set(name string, value float64, labels ...string)

	// Histograms - track distribution of values
	Observe(name string, value float64, labels ...string)
	Time(name string, labels ...string) Timer

	WithPrefix(prefix string) Metrics

	GetStats(name string, labels ...string) MetricStats
	GetAllStats() map[string]MetricStats
}

// Timer tracks operation duration
type Timer interface {
	Duration() time.Duration
	Stop() time.Duration
}

// MetricStats provides statistics for a metric
type MetricStats struct {
	Count       uint64    `json:"count"`
	Sum         float64   `json:"sum"`
	Average     float64   `json:"average"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
	LastValue   float64   `json:"last_value"`
	LastUpdated time.Time `json:"last_updated"`
}

// Registry is an in-memory Metrics implementation
type Registry struct {
	stats  map[string]*MetricStats
	mutex  *sync.RWMutex
	logger logging.Logger
	prefix string
}

// NewRegistry creates a new in-memory registry
func NewRegistry(logger logging.Logger) *Registry {
	return &Registry{
		stats:  make(map[string]*MetricStats),
		mutex:  &sync.RWMutex{},
		logger: logger.WithComponent("metrics"),
	}
}

func (m *Registry) Inc(name string, labels ...string) {
	m.Add(name, 1, labels...)
}

func (m *Registry) Add(name string, value float64, labels ...string) {
	key := m.buildKey(name, labels)

	m.mutex.Lock()
	defer m.mutex.Unlock()

	stats, exists := m.stats[key]
	if !exists {
		stats = &MetricStats{Min: value, Max: value}
		m.stats[key] = stats
	}

	stats.Count++
	stats.Sum += value
	stats.LastValue = value
	stats.LastUpdated = time.Now()
	if value < stats.Min {
		stats.Min = value
	}
	if value > stats.Max {
		stats.Max = value
	}
	stats.Average = stats.Sum / float64(stats.Count)

	m.logger.Trace("metric_updated", "name", key, "value", value)
}

func (m *Registry) Set(name string, value float64, labels ...string) {
	key := m.buildKey(name, labels)

	m.mutex.Lock()
	defer m.mutex.Unlock()

	stats, exists := m.stats[key]
	if !exists {
		stats = &MetricStats{Min: value, Max: value}
		m.stats[key] = stats
	}

	stats.Count = 1
	stats.Sum = value
	stats.LastValue = value
	stats.LastUpdated = time.Now()
	if value < stats.Min {
		stats.Min = value
	}
	if value > stats.Max {
		stats.Max = value
	}
	// For gauges, average is the last value
	stats.Average = value

	m.logger.Trace("gauge_updated", "name", key, "value", value)
}

func (m *Registry) Observe(name string, value float64, labels ...string) {
	m.Add(name, value, labels...)
}

// Time starts a timer that observes elapsed milliseconds under name when stopped
func (m *Registry) Time(name string, labels ...string) Timer {
	return &timer{
		start:    time.Now(),
		name:     name,
		labels:   labels,
		registry: m,
	}
}

// WithPrefix returns a view of the registry that prefixes every metric name
func (m *Registry) WithPrefix(prefix string) Metrics {
	p := prefix
	if m.prefix != "" {
		p = m.prefix + "_" + prefix
	}
	return &Registry{
		stats:  m.stats,
		mutex:  m.mutex,
		logger: m.logger,
		prefix: p,
	}
}

func (m *Registry) GetStats(name string, labels ...string) MetricStats {
	key := m.buildKey(name, labels)

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if stats, exists := m.stats[key]; exists {
		return *stats
	}
	return MetricStats{}
}

func (m *Registry) GetAllStats() map[string]MetricStats {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make(map[string]MetricStats, len(m.stats))
	for key, stats := range m.stats {
		result[key] = *stats
	}
	return result
}

// buildKey renders name{k=v,...} with labels sorted by key
func (m *Registry) buildKey(name string, labels []string) string {
	key := name
	if m.prefix != "" {
		key = m.prefix + "_" + name
	}

	var pairs []string
	for i := 0; i+1 < len(labels); i += 2 {
		pairs = append(pairs, labels[i]+"="+labels[i+1])
	}
	if len(pairs) == 0 {
		return key
	}
	sort.Strings(pairs)
	return key + "{" + strings.Join(pairs, ",") + "}"
}

type timer struct {
	start    time.Time
	name     string
	labels   []string
	registry *Registry
	once     sync.Once
	elapsed  time.Duration
}

func (t *timer) Duration() time.Duration {
	return time.Since(t.start)
}

func (t *timer) Stop() time.Duration {
	t.once.Do(func() {
		t.elapsed = time.Since(t.start)
		t.registry.Observe(t.name, float64(t.elapsed.Milliseconds()), t.labels...)
	})
	return t.elapsed
}

// NoOp returns a Metrics implementation that records nothing
func NoOp() Metrics {
	return noOpMetrics{}
}

type noOpMetrics struct{}

func (noOpMetrics) Inc(string, ...string)                  {}
func (noOpMetrics) Add(string, float64, ...string)         {}
func (noOpMetrics) Set(string, float64, ...string)         {}
func (noOpMetrics) Observe(string, float64, ...string)     {}
func (noOpMetrics) Time(string, ...string) Timer           { return noOpTimer{} }
func (m noOpMetrics) WithPrefix(string) Metrics            { return m }
func (noOpMetrics) GetStats(string, ...string) MetricStats { return MetricStats{} }
func (noOpMetrics) GetAllStats() map[string]MetricStats    { return map[string]MetricStats{} }

type noOpTimer struct{}

func (noOpTimer) Duration() time.Duration { return 0 }
func (noOpTimer) Stop() time.Duration     { return 0 }
