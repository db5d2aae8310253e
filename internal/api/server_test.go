package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"example.com/outcry/config"
	"example.com/outcry/internal/api/middleware"
	"example.com/outcry/internal/metrics"
	"example.com/outcry/internal/repository"
	"example.com/outcry/internal/service"
	"example.com/outcry/internal/testutil"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerWiresMiddleware(t *testing.T) {
	svc, err := service.NewService(service.ServiceConfig{
		Repository: repository.NewRepository(testutil.NewDB(t)),
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)

	collector := metrics.NewCollector()
	cfg := config.Config{
		Server: config.ServerConfig{Port: 5001, Mode: "test"},
		CORS:   config.CORSConfig{Origins: []string{"http://localhost:3000"}},
	}
	server := NewServer(cfg, svc, collector, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderRequestID))
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, int64(1), collector.Counter(metrics.CounterHTTPRequests))

	// never started, so shutdown returns immediately
	require.NoError(t, server.Shutdown(context.Background()))
}
