package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"example.com/outcry/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(handlers...)
	router.GET("/items/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": GetRequestID(c)})
	})
	return router
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	router := newRouter(RequestID())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	generated := rec.Header().Get(HeaderRequestID)
	assert.Len(t, generated, 36)
	assert.Contains(t, rec.Body.String(), generated)

	req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
}

func TestMetricsRecordsRoutePattern(t *testing.T) {
	collector := metrics.NewCollector()
	router := newRouter(Metrics(collector))

	for _, path := range []string{"/items/1", "/items/2", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	snapshot := collector.Snapshot()
	counts, ok := snapshot["request_counts"].(map[string]int64)
	require.True(t, ok)
	assert.Equal(t, int64(2), counts["GET /items/:id"])
	assert.Equal(t, int64(1), counts["GET unmatched"])
	assert.Equal(t, int64(3), collector.Counter(metrics.CounterHTTPRequests))
	assert.Equal(t, int64(1), collector.Counter(metrics.CounterHTTPRequestsError))
}

func TestCORS(t *testing.T) {
	router := newRouter(CORS([]string{"http://localhost:3000"}))

	req := httptest.NewRequest(http.MethodOptions, "/items/1", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/items/1", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.True(t, allowAll(nil))
	assert.True(t, allowAll([]string{"*"}))
}

func TestNewRelicWithoutApplication(t *testing.T) {
	router := newRouter(NewRelic(nil), Logger(zerolog.Nop()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
