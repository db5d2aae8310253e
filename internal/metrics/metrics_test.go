package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	c := NewCollector()
	c.RecordHTTPRequest("/api/jobs", 200, 10*time.Millisecond)
	c.RecordHTTPRequest("/api/jobs", 404, 30*time.Millisecond)

	assert.Equal(t, int64(2), c.Counter(CounterHTTPRequests))
	assert.Equal(t, int64(1), c.Counter(CounterHTTPRequestsSuccess))
	assert.Equal(t, int64(1), c.Counter(CounterHTTPRequestsError))

	snap := c.Snapshot()
	assert.Equal(t, int64(2), snap["request_counts"].(map[string]int64)["/api/jobs"])
	assert.InDelta(t, 20.0, snap["request_latencies_ms"].(map[string]float64)["/api/jobs"], 0.001)
}

func TestLatencyWindowIsBounded(t *testing.T) {
	c := NewCollector()
	c.maxSamples = 3
	for i := 0; i < 10; i++ {
		c.RecordHTTPRequest("/health", 200, time.Millisecond)
	}
	assert.Len(t, c.requestLatencies["/health"], 3)
	assert.Equal(t, int64(10), c.requestCounts["/health"])
}

func TestSnapshotIsACopy(t *testing.T) {
	c := NewCollector()
	c.Increment(CounterEventsPublished, 1)
	snap := c.Snapshot()
	c.Increment(CounterEventsPublished, 1)
	assert.Equal(t, int64(1), snap["counters"].(map[string]int64)[CounterEventsPublished])
	assert.Same(t, Default(), Default())
}
