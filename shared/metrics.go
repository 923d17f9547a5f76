package shared

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// HTTPMetrics tracks NDB2 API call outcomes
type HTTPMetrics struct {
	totalRequests      int64
	successfulRequests int64
	failedRequests     int64
	timeoutRequests    int64
	totalResponseTime  time.Duration
	statusCodeCounts   map[int]int64
	errorKindCounts    map[string]int64
	operationCounts    map[string]int64
	performance        *PerformanceMetrics
	mutex              sync.RWMutex
}

// HTTPMetricsSnapshot is a point-in-time copy of HTTPMetrics
type HTTPMetricsSnapshot struct {
	TotalRequests       int64               `json:"total_requests"`
	SuccessfulRequests  int64               `json:"successful_requests"`
	FailedRequests      int64               `json:"failed_requests"`
	TimeoutRequests     int64               `json:"timeout_requests"`
	SuccessRate         float64             `json:"success_rate"`
	AverageResponseTime time.Duration       `json:"average_response_time"`
	StatusCodeCounts    map[int]int64       `json:"status_code_counts"`
	ErrorKindCounts     map[string]int64    `json:"error_kind_counts"`
	OperationCounts     map[string]int64    `json:"operation_counts"`
	Performance         PerformanceSnapshot `json:"performance"`
}

// NewHTTPMetrics creates a new HTTP metrics tracker
func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		statusCodeCounts: make(map[int]int64),
		errorKindCounts:  make(map[string]int64),
		operationCounts:  make(map[string]int64),
		performance:      NewPerformanceMetrics(),
	}
}

// RecordHTTPRequest records one call. statusCode is 0 when no response arrived
// and errorKind is empty on success.
func (hm *HTTPMetrics) RecordHTTPRequest(operation string, statusCode int, responseTime time.Duration, errorKind string, isTimeout bool) {
	hm.mutex.Lock()
	defer hm.mutex.Unlock()

	hm.totalRequests++
	hm.totalResponseTime += responseTime

	if errorKind == "" {
		hm.successfulRequests++
	} else {
		hm.failedRequests++
		hm.errorKindCounts[errorKind]++
	}

	if isTimeout {
		hm.timeoutRequests++
	}

	if statusCode != 0 {
		hm.statusCodeCounts[statusCode]++
	}
	hm.operationCounts[operation]++
	hm.performance.RecordProcessingTime(responseTime)
}

func (hm *HTTPMetrics) successRateLocked() float64 {
	if hm.totalRequests == 0 {
		return 0.0
	}
	return float64(hm.successfulRequests) / float64(hm.totalRequests) * 100.0
}

// Snapshot returns a thread-safe copy of the current metrics
func (hm *HTTPMetrics) Snapshot() HTTPMetricsSnapshot {
	hm.mutex.RLock()
	defer hm.mutex.RUnlock()

	snapshot := HTTPMetricsSnapshot{
		TotalRequests:      hm.totalRequests,
		SuccessfulRequests: hm.successfulRequests,
		FailedRequests:     hm.failedRequests,
		TimeoutRequests:    hm.timeoutRequests,
		SuccessRate:        hm.successRateLocked(),
		StatusCodeCounts:   make(map[int]int64, len(hm.statusCodeCounts)),
		ErrorKindCounts:    make(map[string]int64, len(hm.errorKindCounts)),
		OperationCounts:    make(map[string]int64, len(hm.operationCounts)),
		Performance:        hm.performance.GetPerformanceSnapshot(),
	}
	if hm.totalRequests > 0 {
		snapshot.AverageResponseTime = time.Duration(int64(hm.totalResponseTime) / hm.totalRequests)
	}
	for k, v := range hm.statusCodeCounts {
		snapshot.StatusCodeCounts[k] = v
	}
	for k, v := range hm.errorKindCounts {
		snapshot.ErrorKindCounts[k] = v
	}
	for k, v := range hm.operationCounts {
		snapshot.OperationCounts[k] = v
	}
	return snapshot
}

// LogHTTPSummary logs the current HTTP metrics
func (hm *HTTPMetrics) LogHTTPSummary() {
	snapshot := hm.Snapshot()

	logrus.WithFields(logrus.Fields{
		"component":             "HTTPMetrics",
		"total_requests":        snapshot.TotalRequests,
		"successful_requests":   snapshot.SuccessfulRequests,
		"failed_requests":       snapshot.FailedRequests,
		"timeout_requests":      snapshot.TimeoutRequests,
		"http_success_rate":     snapshot.SuccessRate,
		"average_response_time": snapshot.AverageResponseTime,
		"p95_response_time":     snapshot.Performance.P95ProcessingTime,
		"status_code_counts":    snapshot.StatusCodeCounts,
		"error_kind_counts":     snapshot.ErrorKindCounts,
	}).Info("NDB2 HTTP metrics summary")
}

// InteractionMetrics counts handled Discord interactions per bot
type InteractionMetrics struct {
	botName   string
	handled   map[string]int64
	failed    map[string]int64
	lastEvent time.Time
	mutex     sync.RWMutex
}

// InteractionMetricsSnapshot is a point-in-time copy of InteractionMetrics
type InteractionMetricsSnapshot struct {
	BotName   string           `json:"bot_name"`
	Handled   map[string]int64 `json:"handled"`
	Failed    map[string]int64 `json:"failed"`
	LastEvent time.Time        `json:"last_event"`
}

// NewInteractionMetrics creates a tracker for one bot
func NewInteractionMetrics(botName string) *InteractionMetrics {
	return &InteractionMetrics{
		botName: botName,
		handled: make(map[string]int64),
		failed:  make(map[string]int64),
	}
}

// Record counts one interaction keyed by command or button name
func (im *InteractionMetrics) Record(name string, success bool) {
	im.mutex.Lock()
	defer im.mutex.Unlock()

	im.handled[name]++
	if !success {
		im.failed[name]++
	}
	im.lastEvent = time.Now()
}

// Snapshot returns a thread-safe copy of the counters
func (im *InteractionMetrics) Snapshot() InteractionMetricsSnapshot {
	im.mutex.RLock()
	defer im.mutex.RUnlock()

	snapshot := InteractionMetricsSnapshot{
		BotName:   im.botName,
		Handled:   make(map[string]int64, len(im.handled)),
		Failed:    make(map[string]int64, len(im.failed)),
		LastEvent: im.lastEvent,
	}
	for k, v := range im.handled {
		snapshot.Handled[k] = v
	}
	for k, v := range im.failed {
		snapshot.Failed[k] = v
	}
	return snapshot
}

// PerformanceMetrics tracks latency percentiles over the last 1000 samples
type PerformanceMetrics struct {
	minProcessingTime time.Duration
	maxProcessingTime time.Duration
	p95ProcessingTime time.Duration
	p99ProcessingTime time.Duration
	processingTimes   []time.Duration
	mutex             sync.RWMutex
}

// PerformanceSnapshot is a point-in-time copy of PerformanceMetrics
type PerformanceSnapshot struct {
	MinProcessingTime time.Duration `json:"min_processing_time"`
	MaxProcessingTime time.Duration `json:"max_processing_time"`
	P95ProcessingTime time.Duration `json:"p95_processing_time"`
	P99ProcessingTime time.Duration `json:"p99_processing_time"`
}

const maxPerformanceSamples = 1000

// NewPerformanceMetrics creates a new performance metrics tracker
func NewPerformanceMetrics() *PerformanceMetrics {
	return &PerformanceMetrics{
		processingTimes: make([]time.Duration, 0, maxPerformanceSamples),
	}
}

// RecordProcessingTime records a sample and updates min, max and percentiles
func (pm *PerformanceMetrics) RecordProcessingTime(duration time.Duration) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if pm.minProcessingTime == 0 || duration < pm.minProcessingTime {
		pm.minProcessingTime = duration
	}
	if duration > pm.maxProcessingTime {
		pm.maxProcessingTime = duration
	}

	if len(pm.processingTimes) >= maxPerformanceSamples {
		pm.processingTimes = pm.processingTimes[1:]
	}
	pm.processingTimes = append(pm.processingTimes, duration)

	pm.calculatePercentiles()
}

func (pm *PerformanceMetrics) calculatePercentiles() {
	if len(pm.processingTimes) == 0 {
		return
	}

	times := make([]time.Duration, len(pm.processingTimes))
	copy(times, pm.processingTimes)
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	p95Index := int(float64(len(times)) * 0.95)
	p99Index := int(float64(len(times)) * 0.99)

	if p95Index < len(times) {
		pm.p95ProcessingTime = times[p95Index]
	}
	if p99Index < len(times) {
		pm.p99ProcessingTime = times[p99Index]
	}
}

// GetPerformanceSnapshot returns a thread-safe snapshot of performance metrics
func (pm *PerformanceMetrics) GetPerformanceSnapshot() PerformanceSnapshot {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	return PerformanceSnapshot{
		MinProcessingTime: pm.minProcessingTime,
		MaxProcessingTime: pm.maxProcessingTime,
		P95ProcessingTime: pm.p95ProcessingTime,
		P99ProcessingTime: pm.p99ProcessingTime,
	}
}
