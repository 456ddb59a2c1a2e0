package utils

import (
	"sync"
	"time"
)

// Metrics holds application metrics
type Metrics struct {
	mu sync.RWMutex

	// Request metrics
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Collection metrics
	TotalCollections    int64
	FailedCollections   int64
	CollectedAmount     float64
	VoidedCollections   int64
	VoidedAmount        float64
	LastCollectionTime  time.Time

	// Error metrics
	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics returns the metrics instance
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			ErrorTypes: make(map[string]int64),
		}
	})
	return metrics
}

// RecordRequest records request metrics
func (m *Metrics) RecordRequest(duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.RequestLatency += duration
	m.AverageLatency = m.RequestLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()

	if err != nil {
		m.FailedRequests++
		m.recordErrorLocked(err)
	}
}

// RecordCollection records payment collection metrics
func (m *Metrics) RecordCollection(amount float64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastCollectionTime = time.Now()
	if err != nil {
		m.FailedCollections++
		m.recordErrorLocked(err)
		return
	}
	m.TotalCollections++
	m.CollectedAmount += amount
}

// RecordVoid records a voided payment
func (m *Metrics) RecordVoid(amount float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.VoidedCollections++
	m.VoidedAmount += amount
}

// RecordError records error metrics
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordErrorLocked(err)
}

func (m *Metrics) recordErrorLocked(err error) {
	m.ErrorCount++
	m.LastErrorTime = time.Now()

	errorType := "unknown"
	if err != nil {
		errorType = err.Error()
	}

	m.ErrorTypes[errorType]++
}

// GetMetricsSnapshot returns a snapshot of the current metrics
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"total_requests":     m.TotalRequests,
		"failed_requests":    m.FailedRequests,
		"average_latency":    m.AverageLatency,
		"total_collections":  m.TotalCollections,
		"failed_collections": m.FailedCollections,
		"collected_amount":   m.CollectedAmount,
		"voided_collections": m.VoidedCollections,
		"voided_amount":      m.VoidedAmount,
		"error_count":        m.ErrorCount,
		"last_error_time":    m.LastErrorTime,
		"error_types":        m.ErrorTypes,
	}
}

// ResetMetrics resets all metrics
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests = 0
	m.FailedRequests = 0
	m.RequestLatency = 0
	m.AverageLatency = 0
	m.TotalCollections = 0
	m.FailedCollections = 0
	m.CollectedAmount = 0
	m.VoidedCollections = 0
	m.VoidedAmount = 0
	m.ErrorCount = 0
	m.ErrorTypes = make(map[string]int64)
}
