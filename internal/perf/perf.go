// Package perf derives summary statistics from the ledger, the registry and a
// mutable map of named metrics.
package perf

import (
	"maps"
	"sync"

	"github.com/vk/hotswap/internal/ledger"
)

// CapabilityCounter reports how many capabilities are registered.
type CapabilityCounter interface {
	Count() int
}

// Summary is a point-in-time report.
type Summary struct {
	Name               string             `json:"name" yaml:"name"`
	CapabilityCount    int                `json:"capability_count" yaml:"capability_count"`
	TotalModifications int                `json:"total_modifications" yaml:"total_modifications"`
	LearningEventCount int                `json:"learning_event_count" yaml:"learning_event_count"`
	SuccessRate        float64            `json:"success_rate" yaml:"success_rate"`
	Metrics            map[string]float64 `json:"performance_metrics" yaml:"performance_metrics"`
}

// Aggregator is safe for concurrent use.
type Aggregator struct {
	name   string
	caps   CapabilityCounter
	ledger *ledger.Ledger

	mu      sync.RWMutex
	metrics map[string]float64
}

// New creates an Aggregator reporting under name.
func New(name string, caps CapabilityCounter, l *ledger.Ledger) *Aggregator {
	return &Aggregator{
		name:    name,
		caps:    caps,
		ledger:  l,
		metrics: make(map[string]float64),
	}
}

// SuccessRate is successful feedback over all feedback, or 0 with no feedback.
func (a *Aggregator) SuccessRate() float64 {
	return successRate(a.ledger.Stats())
}

func successRate(s ledger.Stats) float64 {
	if s.Feedback == 0 {
		return 0.0
	}
	return float64(s.Successes) / float64(s.Feedback)
}

// UpdateMetric sets key to value, replacing any previous value.
func (a *Aggregator) UpdateMetric(key string, value float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metrics[key] = value
}

// Metric returns the current value of key.
func (a *Aggregator) Metric(key string) (float64, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.metrics[key]
	return v, ok
}

// Metrics returns a snapshot of every metric.
func (a *Aggregator) Metrics() map[string]float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return maps.Clone(a.metrics)
}

// Summary computes a fresh report. Every ledger entry counts as a learning
// event; only feedback entries count toward the success rate.
func (a *Aggregator) Summary() Summary {
	stats := a.ledger.Stats()
	count := 0
	if a.caps != nil {
		count = a.caps.Count()
	}
	return Summary{
		Name:               a.name,
		CapabilityCount:    count,
		TotalModifications: stats.Modifications,
		LearningEventCount: stats.Entries,
		SuccessRate:        successRate(stats),
		Metrics:            a.Metrics(),
	}
}
