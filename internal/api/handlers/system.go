package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
)

// Health pings the database
func (h *Handler) Health(c *gin.Context) {
	if err := h.svc.Ping(c.Request.Context()); err != nil {
		h.log.Warn().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "connected"})
}

// Info reports the application name, version and enabled integrations
func (h *Handler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Info(c.Request.Context()))
}

// Metrics returns the in-process counters with a few runtime figures
func (h *Handler) Metrics(c *gin.Context) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	snapshot := h.metrics.Snapshot()
	snapshot["runtime"] = gin.H{
		"goroutines": runtime.NumGoroutine(),
		"memory": gin.H{
			"alloc_bytes":  memStats.Alloc,
			"sys_bytes":    memStats.Sys,
			"heap_objects": memStats.HeapObjects,
			"gc_cycles":    memStats.NumGC,
		},
	}
	c.JSON(http.StatusOK, snapshot)
}
