package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger checks a dependency that exposes a context-aware ping
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker checks a dependency with a synchronous health probe
type Checker interface {
	HealthCheck() error
}

type HealthHandler struct {
	database  Pinger
	cache     Pinger
	publisher Checker
	startTime time.Time
}

func NewHealthHandler(database Pinger, cache Pinger, publisher Checker) *HealthHandler {
	return &HealthHandler{
		database:  database,
		cache:     cache,
		publisher: publisher,
		startTime: time.Now(),
	}
}

// Health reports the status of the service and its dependencies
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if err := h.database.Ping(ctx); err != nil {
		checks["database"] = gin.H{"status": "down", "error": err.Error()}
		healthy = false
	} else {
		checks["database"] = gin.H{"status": "up"}
	}

	if err := h.cache.Ping(ctx); err != nil {
		checks["cache"] = gin.H{"status": "down", "error": err.Error()}
		healthy = false
	} else {
		checks["cache"] = gin.H{"status": "up"}
	}

	if h.publisher != nil {
		if err := h.publisher.HealthCheck(); err != nil {
			checks["messaging"] = gin.H{"status": "down", "error": err.Error()}
			healthy = false
		} else {
			checks["messaging"] = gin.H{"status": "up"}
		}
	}

	status := http.StatusOK
	overall := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":         overall,
		"uptime_seconds": time.Since(h.startTime).Seconds(),
		"checks":         checks,
	})
}

// Liveness reports that the process is running
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readiness reports whether the service can take traffic
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.database.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
