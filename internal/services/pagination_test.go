package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePaginationParams(t *testing.T) {
	tests := []struct {
		name        string
		page        string
		perPage     string
		wantPage    int
		wantPerPage int
		wantErr     bool
	}{
		{"defaults", "", "", 1, defaultPerPage, false},
		{"explicit", "3", "50", 3, 50, false},
		{"max per page", "1", "100", 1, 100, false},
		{"zero page", "0", "", 0, 0, true},
		{"negative page", "-1", "", 0, 0, true},
		{"non numeric page", "abc", "", 0, 0, true},
		{"per page too large", "1", "101", 0, 0, true},
		{"per page zero", "1", "0", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, perPage, err := ValidatePaginationParams(tt.page, tt.perPage)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPerPage, perPage)
		})
	}
}
