package logging

import (
	"fmt"
	"sync"
	"time"
)

// Metrics tracks API calls and pipeline operations for one batch run
type Metrics struct {
	StartTime     time.Time                   `json:"start_time"`
	EndTime       time.Time                   `json:"end_time"`
	Duration      string                      `json:"duration"`
	APICalls      map[string]APICallMetrics   `json:"api_calls"`
	Operations    map[string]OperationMetrics `json:"operations"`
	TotalAPICalls int                         `json:"total_api_calls"`
	TotalSuccess  int                         `json:"total_success"`
	TotalFailures int                         `json:"total_failures"`
	mu            sync.RWMutex
}

// APICallMetrics tracks metrics for a specific API call
type APICallMetrics struct {
	Count       int      `json:"count"`
	Success     int      `json:"success"`
	Failures    int      `json:"failures"`
	SuccessRate float64  `json:"success_rate"`
	Errors      []string `json:"errors,omitempty"`
}

// OperationMetrics tracks metrics for high-level pipeline stages
type OperationMetrics struct {
	Duration       time.Duration `json:"duration"`
	Success        bool          `json:"success"`
	Error          string        `json:"error,omitempty"`
	ItemsProcessed int           `json:"items_processed"`
	ItemsFound     int           `json:"items_found"`
}

var globalMetrics *Metrics
var metricsOnce sync.Once

// GetMetrics returns the global metrics instance (singleton)
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			StartTime:  time.Now(),
			APICalls:   make(map[string]APICallMetrics),
			Operations: make(map[string]OperationMetrics),
		}
	})
	return globalMetrics
}

// RecordAPICall records one directory-authority or analysis-service call
func (m *Metrics) RecordAPICall(apiName string, success bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics := m.APICalls[apiName]
	metrics.Count++
	m.TotalAPICalls++
	if success {
		metrics.Success++
		m.TotalSuccess++
	} else {
		metrics.Failures++
		m.TotalFailures++
		if err != nil && len(metrics.Errors) < 10 {
			metrics.Errors = append(metrics.Errors, err.Error())
		}
	}
	if metrics.Count > 0 {
		metrics.SuccessRate = float64(metrics.Success) / float64(metrics.Count)
	}
	m.APICalls[apiName] = metrics
}

// RecordOperation records one completed pipeline stage
func (m *Metrics) RecordOperation(operation string, duration time.Duration, success bool, itemsProcessed, itemsFound int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	op := OperationMetrics{
		Duration:       duration,
		Success:        success,
		ItemsProcessed: itemsProcessed,
		ItemsFound:     itemsFound,
	}
	if err != nil {
		op.Error = err.Error()
	}
	m.Operations[operation] = op
}

// Summary renders a compact run summary for the end of a batch
func (m *Metrics) Summary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	elapsed := time.Since(m.StartTime).Round(time.Millisecond)
	return fmt.Sprintf("%d API calls (%d ok, %d failed) in %s",
		m.TotalAPICalls, m.TotalSuccess, m.TotalFailures, elapsed)
}
