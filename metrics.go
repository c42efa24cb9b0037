package goIdent

import "sync/atomic"

// MetricID identifies one repository counter.
type MetricID uint8

const (
	// MetricRegisterSuccess counts identities persisted by CreateUserAuth.
	MetricRegisterSuccess MetricID = iota
	// MetricRegisterConflict counts creates rejected for a claimed identifier
	// or duplicate id.
	MetricRegisterConflict
	// MetricRegisterInvalid counts creates rejected by validation.
	MetricRegisterInvalid
	// MetricUpdateSuccess counts successful UpdateUserAuth calls.
	MetricUpdateSuccess
	// MetricUpdateConflict counts updates rejected for a claimed identifier.
	MetricUpdateConflict
	// MetricRemoveSuccess counts identities tombstoned by DeleteUserAuth.
	MetricRemoveSuccess
	// MetricAuthSuccess counts successful TryAuthenticate calls.
	MetricAuthSuccess
	// MetricAuthFailure counts authentication rejections (unknown identity
	// or bad credential).
	MetricAuthFailure

	metricIDCount
)

// Metrics holds lock-free operation counters. A disabled Metrics value is
// valid and makes every operation a no-op.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters [metricIDCount]uint64
}

func newMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments one counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Get reads one counter.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

// Snapshot copies all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var snap MetricsSnapshot
	if m == nil {
		return snap
	}
	for i := range m.counters {
		snap.Counters[i] = m.counters[i].Load()
	}
	return snap
}
