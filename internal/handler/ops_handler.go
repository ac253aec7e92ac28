package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/linguasaurus-bot/internal/service"
	appErrors "github.com/noah-isme/linguasaurus-bot/pkg/errors"
	"github.com/noah-isme/linguasaurus-bot/pkg/logger"
	"github.com/noah-isme/linguasaurus-bot/pkg/middleware/requestid"
	"github.com/noah-isme/linguasaurus-bot/pkg/response"
)

const readinessTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping implements Pinger.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// OpsHandler exposes health, readiness and metrics endpoints.
type OpsHandler struct {
	metrics *service.MetricsService
	checks  map[string]Pinger
	logger  *zap.Logger
}

// NewOpsHandler constructs an ops handler. checks are probed by /ready.
func NewOpsHandler(metrics *service.MetricsService, checks map[string]Pinger, logger *zap.Logger) *OpsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpsHandler{metrics: metrics, checks: checks, logger: logger}
}

// Router builds the ops gin engine.
func (h *OpsHandler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestid.Middleware(), logger.GinMiddleware(h.logger))
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
	return r
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *OpsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness probes.
func (h *OpsHandler) Health(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// Ready probes every dependency and fails if any is unreachable.
func (h *OpsHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	status := make(map[string]string, len(h.checks))
	var failed error
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			status[name] = "down"
			h.logger.Warn("readiness check failed", zap.String("dependency", name), zap.Error(err))
			failed = appErrors.Storage(err, name+" unavailable")
			continue
		}
		status[name] = "up"
	}
	if failed != nil {
		c.Header("Cache-Control", "no-store")
		c.JSON(response.StatusFor(failed), response.Envelope{
			Data:  status,
			Error: &appErrors.Error{Code: appErrors.CodeStorageUnavailable, Message: "dependency unavailable"},
		})
		return
	}
	response.JSON(c, http.StatusOK, status)
}
