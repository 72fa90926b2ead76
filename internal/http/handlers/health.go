package handlers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// CheckFunc probes one dependency; nil means healthy
type CheckFunc func(ctx context.Context) error

// HealthHandler handles health check endpoints
type HealthHandler struct {
	checks      map[string]CheckFunc
	startTime   time.Time
	version     string
	environment string
}

// NewHealthHandler creates a new health handler. checks may be nil.
func NewHealthHandler(environment, version string, checks map[string]CheckFunc) *HealthHandler {
	return &HealthHandler{
		checks:      checks,
		startTime:   time.Now(),
		version:     version,
		environment: environment,
	}
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status      string            `json:"status"`
	Version     string            `json:"version,omitempty"`
	Environment string            `json:"environment,omitempty"`
	Uptime      float64           `json:"uptime"`
	Timestamp   string            `json:"timestamp"`
	Memory      *MemoryStats      `json:"memory,omitempty"`
	Checks      map[string]string `json:"checks,omitempty"`
}

// MemoryStats is a subset of runtime.MemStats, in megabytes
type MemoryStats struct {
	AllocMB      string `json:"allocMb"`
	TotalAllocMB string `json:"totalAllocMb"`
	SysMB        string `json:"sysMb"`
	HeapObjects  uint64 `json:"heapObjects"`
	NumGC        uint32 `json:"numGc"`
	Goroutines   int    `json:"goroutines"`
}

// Health reports process status for the front-end badge and load balancers
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "healthy",
		Version:     h.version,
		Environment: h.environment,
		Uptime:      uptimeSeconds(h.startTime),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Memory:      readMemory(),
	})
}

// Liveness returns simple alive status (for k8s liveness probe)
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness returns detailed health status (for k8s readiness probe)
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			checks[name] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			checks[name] = "healthy"
		}
	}
	checks["store"] = "healthy"

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:      status,
		Version:     h.version,
		Environment: h.environment,
		Uptime:      uptimeSeconds(h.startTime),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Memory:      readMemory(),
		Checks:      checks,
	})
}

func readMemory() *MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &MemoryStats{
		AllocMB:      formatMB(m.Alloc),
		TotalAllocMB: formatMB(m.TotalAlloc),
		SysMB:        formatMB(m.Sys),
		HeapObjects:  m.HeapObjects,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
	}
}

func uptimeSeconds(start time.Time) float64 {
	return math.Round(time.Since(start).Seconds()*1000) / 1000
}

func formatMB(bytes uint64) string {
	mb := float64(bytes) / 1024 / 1024
	return fmt.Sprintf("%.2f", mb)
}
