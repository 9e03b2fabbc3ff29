package models

import (
	"errors"
	"fmt"
)

// Error constants for person operations
var (
	ErrInvalidCPF           = errors.New("CPF inválido, verifique os dígitos")
	ErrCPFAlreadyRegistered = errors.New("CPF já cadastrado")
	ErrInvalidName          = errors.New("nome é obrigatório")
	ErrNameTooLong          = errors.New("nome muito longo (máximo 200 caracteres)")
	ErrInvalidKind          = errors.New("tipo de pessoa inválido")
	ErrInvalidPhone         = errors.New("telefone inválido")
	ErrBirthDateInFuture    = errors.New("data de nascimento no futuro")
	ErrInvalidTenantID      = errors.New("tenant é obrigatório")
	ErrPersonNotFound       = errors.New("pessoa não encontrada")
	ErrInvalidPersonID      = errors.New("ID de pessoa inválido")
)

// ValidationError is a field-level rejection of user input.
// It unwraps to one of the sentinel errors above.
type ValidationError struct {
	Field string
	Err   error
}

// NewValidationError creates a validation error for the given field
func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// CPFConflictError reports that another person already holds the CPF.
// ExistingName lets the user recognize the record they collided with.
type CPFConflictError struct {
	ExistingID   string
	ExistingName string
}

func (e *CPFConflictError) Error() string {
	if e.ExistingName == "" {
		return ErrCPFAlreadyRegistered.Error()
	}
	return fmt.Sprintf("%s para %s", ErrCPFAlreadyRegistered.Error(), e.ExistingName)
}

func (e *CPFConflictError) Unwrap() error {
	return ErrCPFAlreadyRegistered
}
