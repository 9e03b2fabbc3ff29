package observability

import (
	"time"

	"github.com/prefeitura-rio/app-matriculas/internal/logging"
	"go.uber.org/zap"
)

// PerformanceMonitor times the phases of a long-running operation
type PerformanceMonitor struct {
	startTime   time.Time
	lastMark    time.Time
	operation   string
	logger      *logging.SafeLogger
	checkpoints []Checkpoint
}

// Checkpoint is the time spent in one phase
type Checkpoint struct {
	Name     string
	Duration time.Duration
}

// NewPerformanceMonitor starts timing operation
func NewPerformanceMonitor(operation string, logger *logging.SafeLogger) *PerformanceMonitor {
	now := time.Now()
	return &PerformanceMonitor{
		startTime: now,
		lastMark:  now,
		operation: operation,
		logger:    logger,
	}
}

// Checkpoint closes the current phase under name and starts the next one
func (pm *PerformanceMonitor) Checkpoint(name string) {
	now := time.Now()
	checkpoint := Checkpoint{Name: name, Duration: now.Sub(pm.lastMark)}
	pm.lastMark = now
	pm.checkpoints = append(pm.checkpoints, checkpoint)

	OperationDuration.WithLabelValues(pm.operation, name).Observe(checkpoint.Duration.Seconds())
	pm.logger.Debug("performance checkpoint",
		zap.String("operation", pm.operation),
		zap.String("checkpoint", name),
		zap.Duration("duration", checkpoint.Duration))
}

// Checkpoints returns the phases recorded so far
func (pm *PerformanceMonitor) Checkpoints() []Checkpoint {
	return pm.checkpoints
}

// End records the total duration and logs a summary
func (pm *PerformanceMonitor) End() time.Duration {
	total := time.Since(pm.startTime)
	OperationDuration.WithLabelValues(pm.operation, "total").Observe(total.Seconds())

	fields := []zap.Field{
		zap.String("operation", pm.operation),
		zap.Duration("total_duration", total),
	}
	for _, cp := range pm.checkpoints {
		fields = append(fields, zap.Duration(cp.Name+"_duration", cp.Duration))
	}
	pm.logger.Info("performance monitoring completed", fields...)
	return total
}
