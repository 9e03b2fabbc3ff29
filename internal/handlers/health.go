package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-matriculas/internal/logging"
	"github.com/prefeitura-rio/app-matriculas/internal/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const healthCheckTimeout = 3 * time.Second

// PingFunc checks one dependency
type PingFunc func(ctx context.Context) error

// HealthHandlers reports the status of the service dependencies
type HealthHandlers struct {
	logger *logging.SafeLogger
	checks map[string]PingFunc
}

// NewHealthHandlers creates health handlers for the named dependency checks
func NewHealthHandlers(logger *logging.SafeLogger, checks map[string]PingFunc) *HealthHandlers {
	return &HealthHandlers{logger: logger, checks: checks}
}

// HealthCheck godoc
// @Summary Verificar saúde do serviço
// @Description Verifica a conectividade com MongoDB e Redis.
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse "Serviço saudável"
// @Failure 503 {object} HealthResponse "Alguma dependência indisponível"
// @Router /health [get]
func (h *HealthHandlers) HealthCheck(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "HealthCheck")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Services:  make(map[string]string, len(h.checks)),
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		_, checkSpan := utils.TraceStep(ctx, "external_service",
			attribute.String("service.name", name),
			attribute.String("service.operation", "ping"))
		if err := h.checks[name](ctx); err != nil {
			utils.RecordErrorInSpan(checkSpan, err)
			h.logger.Warn("dependency unhealthy", zap.String("service", name), zap.Error(err))
			health.Status = "unhealthy"
			health.Services[name] = "unhealthy"
		} else {
			health.Services[name] = "healthy"
		}
		checkSpan.End()
	}

	span.SetAttributes(attribute.String("health.status", health.Status))

	if health.Status == "healthy" {
		c.JSON(http.StatusOK, health)
		return
	}
	c.JSON(http.StatusServiceUnavailable, health)
}
