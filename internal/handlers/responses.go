package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-matriculas/internal/logging"
	"github.com/prefeitura-rio/app-matriculas/internal/models"
	"go.uber.org/zap"
)

const internalErrorMessage = "Erro interno do servidor"

type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationErrorResponse names the rejected field
type ValidationErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field"`
}

// ConflictErrorResponse names the person already holding the CPF
type ConflictErrorResponse struct {
	Error           string `json:"error"`
	ConflictingName string `json:"conflicting_name,omitempty"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// respondWithError maps service errors to HTTP responses.
// Anything unrecognized is logged and reported as a generic 500.
func respondWithError(c *gin.Context, logger *logging.SafeLogger, operation string, err error) {
	var validationErr *models.ValidationError
	var conflictErr *models.CPFConflictError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Error: validationErr.Error(),
			Field: validationErr.Field,
		})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, ConflictErrorResponse{
			Error:           conflictErr.Error(),
			ConflictingName: conflictErr.ExistingName,
		})
	case errors.Is(err, models.ErrInvalidPersonID):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrPersonNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	default:
		logger.Error("request failed",
			zap.String("operation", operation),
			zap.String("request_id", c.GetString("RequestID")),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: internalErrorMessage})
	}
}
