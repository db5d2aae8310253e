package metrics

import (
	"sync"
	"time"
)

// Counter names
const (
	CounterHTTPRequests        = "http_requests_total"
	CounterHTTPRequestsSuccess = "http_requests_success_total"
	CounterHTTPRequestsError   = "http_requests_error_total"
	CounterEventsPublished     = "events_published_total"
	CounterEventsFailed        = "events_failed_total"
	CounterAttachmentsStored   = "attachments_stored_total"
	CounterAttachmentsSkipped  = "attachments_skipped_total"
	CounterJobsIndexed         = "jobs_indexed_total"
	CounterIndexErrors         = "index_errors_total"
)

// Collector keeps in-process counters and request latencies
type Collector struct {
	mutex            sync.RWMutex
	counters         map[string]int64
	requestCounts    map[string]int64
	requestLatencies map[string][]time.Duration
	startTime        time.Time
	maxSamples       int
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{
		counters:         make(map[string]int64),
		requestCounts:    make(map[string]int64),
		requestLatencies: make(map[string][]time.Duration),
		startTime:        time.Now(),
		maxSamples:       1000,
	}
}

// Increment adds value to the named counter
func (m *Collector) Increment(name string, value int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.counters[name] += value
}

// Counter returns the current value of the named counter
func (m *Collector) Counter(name string) int64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.counters[name]
}

// RecordHTTPRequest records one request against its route pattern
func (m *Collector) RecordHTTPRequest(route string, statusCode int, latency time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.counters[CounterHTTPRequests]++
	m.requestCounts[route]++

	latencies := m.requestLatencies[route]
	if len(latencies) >= m.maxSamples {
		latencies = latencies[1:]
	}
	m.requestLatencies[route] = append(latencies, latency)

	if statusCode >= 200 && statusCode < 400 {
		m.counters[CounterHTTPRequestsSuccess]++
	} else {
		m.counters[CounterHTTPRequestsError]++
	}
}

// Snapshot returns all collected metrics in a JSON friendly form
func (m *Collector) Snapshot() map[string]interface{} {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	counters := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		counters[k] = v
	}
	requestCounts := make(map[string]int64, len(m.requestCounts))
	for k, v := range m.requestCounts {
		requestCounts[k] = v
	}

	averages := make(map[string]float64, len(m.requestLatencies))
	for route, latencies := range m.requestLatencies {
		if len(latencies) == 0 {
			continue
		}
		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		averages[route] = float64(sum.Microseconds()) / 1000 / float64(len(latencies))
	}

	return map[string]interface{}{
		"uptime_seconds":       time.Since(m.startTime).Seconds(),
		"counters":             counters,
		"request_counts":       requestCounts,
		"request_latencies_ms": averages,
	}
}

var (
	globalCollector *Collector
	once            sync.Once
)

// Default returns the process wide collector
func Default() *Collector {
	once.Do(func() {
		globalCollector = NewCollector()
	})
	return globalCollector
}
