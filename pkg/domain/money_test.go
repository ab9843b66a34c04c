package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundCredits(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected float64
	}{
		{
			name:     "already rounded",
			amount:   1.25,
			expected: 1.25,
		},
		{
			name:     "rounds half up",
			amount:   0.00005,
			expected: 0.0001,
		},
		{
			name:     "rounds down below half",
			amount:   0.00004,
			expected: 0,
		},
		{
			name:     "float artifact collapses",
			amount:   0.1 + 0.2,
			expected: 0.3,
		},
		{
			name:     "zero",
			amount:   0,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RoundCredits(tt.amount))
		})
	}
}

func TestCreditConversion(t *testing.T) {
	assert.Equal(t, 250.0, DollarsToCredits(2.5))
	assert.Equal(t, 2.5, CreditsToDollars(250))

	// Converting back and forth preserves the amount.
	assert.Equal(t, 19.99, CreditsToDollars(DollarsToCredits(19.99)))
}
