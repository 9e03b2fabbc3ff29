package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PersonKind identifies the role a person plays in a school
type PersonKind string

const (
	PersonKindStudent  PersonKind = "student"
	PersonKindGuardian PersonKind = "guardian"
	PersonKindStaff    PersonKind = "staff"
)

// maxPersonNameLength bounds the display name in characters after trimming
const maxPersonNameLength = 200

// Valid reports whether the kind is one of the known kinds
func (k PersonKind) Valid() bool {
	switch k {
	case PersonKindStudent, PersonKindGuardian, PersonKindStaff:
		return true
	}
	return false
}

// Person is a person record as stored in the people collection.
// CPF is nil when the person has no taxpayer ID; it is never stored masked.
type Person struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID  string             `bson:"tenant_id" json:"tenant_id"`
	Name      string             `bson:"name" json:"name"`
	Kind      PersonKind         `bson:"kind" json:"kind"`
	CPF       *string            `bson:"cpf,omitempty" json:"cpf,omitempty"`
	BirthDate *time.Time         `bson:"birth_date,omitempty" json:"birth_date,omitempty"`
	Phone     *string            `bson:"phone,omitempty" json:"phone,omitempty"`
	Email     *string            `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// PersonRequest is the body for creating or updating a person.
// CPF and phone are accepted in any mask; they are normalized by the service.
// Required fields are enforced by Validate so that rejections name the field.
type PersonRequest struct {
	Name      string     `json:"name"`
	Kind      PersonKind `json:"kind"`
	CPF       string     `json:"cpf"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email"`
}

// PersonResponse is a person record as returned by the API
type PersonResponse struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenant_id"`
	Name         string     `json:"name"`
	Kind         PersonKind `json:"kind"`
	CPF          string     `json:"cpf,omitempty"`
	CPFFormatted string     `json:"cpf_formatted,omitempty"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	Age          *int       `json:"age,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	WhatsAppLink string     `json:"whatsapp_link,omitempty"`
	Email        string     `json:"email,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PersonListResponse represents the paginated response for listing people
type PersonListResponse struct {
	People     []PersonResponse `json:"people"`
	Pagination PaginationInfo   `json:"pagination"`
}

// PaginationInfo describes a page of results
type PaginationInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// CPFInspection reports how a raw CPF input is normalized and whether it is valid
type CPFInspection struct {
	Input     string `json:"input"`
	Canonical string `json:"canonical"`
	Formatted string `json:"formatted"`
	Valid     bool   `json:"valid"`
}

// Validate checks the fields that do not depend on storage.
// CPF and phone are checked by the service, which also normalizes them.
func (r *PersonRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return NewValidationError("name", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > maxPersonNameLength {
		return NewValidationError("name", ErrNameTooLong)
	}
	if !r.Kind.Valid() {
		return NewValidationError("kind", ErrInvalidKind)
	}
	if r.BirthDate != nil && r.BirthDate.After(time.Now()) {
		return NewValidationError("birth_date", ErrBirthDateInFuture)
	}
	return nil
}

// HasCPF reports whether the person carries a taxpayer ID
func (p *Person) HasCPF() bool {
	return p.CPF != nil && *p.CPF != ""
}

// BeforeCreate sets the creation and update timestamps
func (p *Person) BeforeCreate() {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
}

// BeforeUpdate sets the update timestamp
func (p *Person) BeforeUpdate() {
	p.UpdatedAt = time.Now()
}
