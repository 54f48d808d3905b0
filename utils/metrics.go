package utils

import (
	"sync"
	"time"
)

// Metrics содержит метрики приложения
type Metrics struct {
	mu sync.RWMutex

	// Метрики запросов
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Метрики заявок
	ApplicationsSubmitted int64
	ApplicationsRejected  int64
	LastApplicationTime   time.Time

	// Метрики ошибок
	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// NewMetrics создает пустой набор метрик
func NewMetrics() *Metrics {
	return &Metrics{ErrorTypes: make(map[string]int64)}
}

// GetMetrics возвращает общий экземпляр метрик
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = NewMetrics()
	})
	return metrics
}

// RecordRequest записывает метрики запроса. Ошибкой считается статус >= 500.
func (m *Metrics) RecordRequest(duration time.Duration, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.RequestLatency += duration
	m.AverageLatency = m.RequestLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()

	if status >= 500 {
		m.FailedRequests++
	}
}

// RecordApplication записывает результат подачи заявки
func (m *Metrics) RecordApplication(accepted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastApplicationTime = time.Now()
	if accepted {
		m.ApplicationsSubmitted++
	} else {
		m.ApplicationsRejected++
	}
}

// RecordError записывает метрики ошибки
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ErrorCount++
	m.LastErrorTime = time.Now()

	errorType := "unknown"
	if err != nil {
		errorType = err.Error()
	}

	m.ErrorTypes[errorType]++
}

// GetMetricsSnapshot возвращает снимок текущих метрик
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	errorTypes := make(map[string]int64, len(m.ErrorTypes))
	for k, v := range m.ErrorTypes {
		errorTypes[k] = v
	}

	return map[string]interface{}{
		"total_requests":         m.TotalRequests,
		"failed_requests":        m.FailedRequests,
		"average_latency_ms":     m.AverageLatency.Milliseconds(),
		"applications_submitted": m.ApplicationsSubmitted,
		"applications_rejected":  m.ApplicationsRejected,
		"error_count":            m.ErrorCount,
		"last_error_time":        m.LastErrorTime,
		"error_types":            errorTypes,
	}
}

// ResetMetrics сбрасывает все метрики
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests = 0
	m.FailedRequests = 0
	m.RequestLatency = 0
	m.AverageLatency = 0
	m.ApplicationsSubmitted = 0
	m.ApplicationsRejected = 0
	m.ErrorCount = 0
	m.ErrorTypes = make(map[string]int64)
}
