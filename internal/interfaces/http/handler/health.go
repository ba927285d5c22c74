package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const healthCheckTimeout = 3 * time.Second

// Pinger is a dependency the health check probes
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger
type PingerFunc func(ctx context.Context) error

// Ping calls f(ctx)
func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthResponse is the body of GET /health
// @name HandlerHealthResponse
type HealthResponse struct {
	Status  string            `json:"status" example:"ok"`
	Version string            `json:"version" example:"1.0.0"`
	Uptime  string            `json:"uptime" example:"1h30m45s"`
	Checks  map[string]string `json:"checks"`
}

// HealthHandler reports whether the service and its dependencies are up
type HealthHandler struct {
	version   string
	startTime time.Time
	names     []string
	checks    map[string]Pinger
}

// NewHealthHandler creates a health handler without checks
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startTime: time.Now(),
		checks:    make(map[string]Pinger),
	}
}

// AddCheck registers a dependency probed on every health request
func (h *HealthHandler) AddCheck(name string, p Pinger) *HealthHandler {
	if _, exists := h.checks[name]; !exists {
		h.names = append(h.names, name)
		sort.Strings(h.names)
	}
	h.checks[name] = p
	return h
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Pings the database and, when configured, Redis. Answers 503 when one of them is down.
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
		Checks:  make(map[string]string, len(h.names)),
	}
	for _, name := range h.names {
		if err := h.checks[name].Ping(ctx); err != nil {
			logger.L(ctx).Warn("Health check failed",
				zap.String("check", name),
				zap.Error(err))
			resp.Checks[name] = "down"
			resp.Status = "unavailable"
			continue
		}
		resp.Checks[name] = "up"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
