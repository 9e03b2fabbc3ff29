package services

import (
	"context"
	"fmt"
	"time"

	"github.com/prefeitura-rio/app-matriculas/internal/logging"
	"github.com/prefeitura-rio/app-matriculas/internal/models"
	"github.com/prefeitura-rio/app-matriculas/internal/observability"
	"github.com/prefeitura-rio/app-matriculas/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CPFGuard rejects invalid CPFs and CPFs already held by another person.
// The check and the following write are separate round trips; the unique
// index on the person collection catches what slips between them.
type CPFGuard struct {
	store  PersonStore
	logger *logging.SafeLogger
}

// NewCPFGuard creates a guard that looks up existing holders in store
func NewCPFGuard(store PersonStore, logger *logging.SafeLogger) *CPFGuard {
	return &CPFGuard{store: store, logger: logger}
}

// Check returns the canonical CPF to persist for rawCPF. An empty result
// means the person has no CPF. excludeID is the record being updated, or
// the zero ObjectID on create.
func (g *CPFGuard) Check(ctx context.Context, rawCPF string, excludeID primitive.ObjectID) (string, error) {
	ctx, span := utils.TraceInputValidation(ctx, "cpf_uniqueness", "cpf")
	defer span.End()
	start := time.Now()
	defer utils.AddTimingToSpan(span, start)

	canonical := utils.UnmaskCPF(rawCPF)
	if canonical == "" {
		observability.CPFGuardChecks.WithLabelValues(observability.CPFGuardSkipped).Inc()
		return "", nil
	}

	if !utils.ValidateCPF(canonical) {
		observability.CPFGuardChecks.WithLabelValues(observability.CPFGuardInvalid).Inc()
		return "", models.NewValidationError("cpf", models.ErrInvalidCPF)
	}

	existing, err := g.store.FindByCPF(ctx, canonical, excludeID)
	if err != nil {
		observability.CPFGuardChecks.WithLabelValues(observability.CPFGuardError).Inc()
		utils.RecordErrorInSpan(span, err)
		return "", fmt.Errorf("failed to check CPF uniqueness: %w", err)
	}

	if existing != nil {
		observability.CPFGuardChecks.WithLabelValues(observability.CPFGuardConflict).Inc()
		g.logger.Info("CPF already registered",
			zap.String("cpf", observability.MaskCPF(canonical)),
			zap.String("existing_id", existing.ID.Hex()))
		return "", &models.CPFConflictError{
			ExistingID:   existing.ID.Hex(),
			ExistingName: existing.Name,
		}
	}

	observability.CPFGuardChecks.WithLabelValues(observability.CPFGuardPassed).Inc()
	return canonical, nil
}
