package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateAge(t *testing.T) {
	birth := time.Date(2015, time.March, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"day before birthday", time.Date(2025, time.March, 9, 23, 0, 0, 0, time.UTC), 9},
		{"on birthday", time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), 10},
		{"month before birthday", time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), 9},
		{"after birthday", time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), 10},
		{"same day of birth", birth, 0},
		{"before birth", time.Date(2014, time.January, 1, 0, 0, 0, 0, time.UTC), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateAge(birth, tt.now))
		})
	}
}

func TestCalculateAge_LeapDay(t *testing.T) {
	birth := time.Date(2012, time.February, 29, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 12, CalculateAge(birth, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 13, CalculateAge(birth, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)))
}

func TestCalculateAge_LocalCalendarDay(t *testing.T) {
	// Birth dates arrive as midnight UTC; "now" is read in São Paulo time
	birth := time.Date(2015, time.March, 10, 0, 0, 0, 0, time.UTC)
	saoPaulo := time.FixedZone("BRT", -3*60*60)

	justAfterMidnightUTC := time.Date(2025, time.March, 10, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 9, CalculateAge(birth, justAfterMidnightUTC.In(saoPaulo)))

	localMorning := time.Date(2025, time.March, 10, 8, 0, 0, 0, saoPaulo)
	assert.Equal(t, 10, CalculateAge(birth, localMorning))
}
