package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prefeitura-rio/app-matriculas/internal/logging"
	"github.com/prefeitura-rio/app-matriculas/internal/models"
	"github.com/prefeitura-rio/app-matriculas/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func newTestGuard(store PersonStore) *CPFGuard {
	return NewCPFGuard(store, logging.NewSafeLogger(zap.NewNop()))
}

func TestCPFGuard_BlankSkipsLookup(t *testing.T) {
	store := newFakePersonStore()
	guard := newTestGuard(store)

	for _, raw := range []string{"", "   ", "...-", "abc"} {
		canonical, err := guard.Check(context.Background(), raw, primitive.NilObjectID)
		require.NoError(t, err, raw)
		assert.Empty(t, canonical)
	}
	assert.Zero(t, store.findCalls)
}

func TestCPFGuard_InvalidRejectedBeforeLookup(t *testing.T) {
	store := newFakePersonStore()
	guard := newTestGuard(store)

	for _, raw := range []string{"52998224726", "123", "11111111111", "529.982.247-2"} {
		_, err := guard.Check(context.Background(), raw, primitive.NilObjectID)
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, models.ErrInvalidCPF)

		var validationErr *models.ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, "cpf", validationErr.Field)
	}
	assert.Zero(t, store.findCalls)
}

func TestCPFGuard_ReturnsCanonical(t *testing.T) {
	guard := newTestGuard(newFakePersonStore())

	canonical, err := guard.Check(context.Background(), "529.982.247-25", primitive.NilObjectID)
	require.NoError(t, err)
	assert.Equal(t, "52998224725", canonical)
}

func TestCPFGuard_Conflict(t *testing.T) {
	store := newFakePersonStore()
	ana := store.seed("Ana", "escola-1", strPtr("52998224725"))
	guard := newTestGuard(store)

	before := testutil.ToFloat64(observability.CPFGuardChecks.WithLabelValues(observability.CPFGuardConflict))

	_, err := guard.Check(context.Background(), "529.982.247-25", primitive.NilObjectID)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrCPFAlreadyRegistered)

	var conflict *models.CPFConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "Ana", conflict.ExistingName)
	assert.Equal(t, ana.ID.Hex(), conflict.ExistingID)
	assert.Contains(t, err.Error(), "Ana")

	after := testutil.ToFloat64(observability.CPFGuardChecks.WithLabelValues(observability.CPFGuardConflict))
	assert.Equal(t, before+1, after)
}

func TestCPFGuard_SelfExclusion(t *testing.T) {
	store := newFakePersonStore()
	ana := store.seed("Ana", "escola-1", strPtr("52998224725"))
	guard := newTestGuard(store)

	canonical, err := guard.Check(context.Background(), "52998224725", ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "52998224725", canonical)
}

func TestCPFGuard_StoreErrorIsWrapped(t *testing.T) {
	store := newFakePersonStore()
	store.err = errors.New("connection refused")
	guard := newTestGuard(store)

	_, err := guard.Check(context.Background(), "52998224725", primitive.NilObjectID)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.err)
	assert.NotErrorIs(t, err, models.ErrCPFAlreadyRegistered)
	assert.NotErrorIs(t, err, models.ErrInvalidCPF)
}
