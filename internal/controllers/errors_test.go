package controllers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/frontand-tech/frontand/pkg/domain"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "connection not found", err: domain.ErrConnectionNotFound, expected: fiber.StatusNotFound},
		{name: "payout not found", err: domain.ErrPayoutNotFound, expected: fiber.StatusNotFound},
		{name: "pricing not configured", err: domain.ErrPricingNotConfigured, expected: fiber.StatusNotFound},
		{name: "quota exceeded", err: domain.ErrQuotaExceeded, expected: fiber.StatusTooManyRequests},
		{name: "authorization timeout", err: domain.ErrAuthorizationTimeout, expected: fiber.StatusRequestTimeout},
		{name: "service not configured", err: domain.ErrServiceNotConfigured, expected: fiber.StatusBadRequest},
		{name: "refresh not supported", err: domain.ErrRefreshNotSupported, expected: fiber.StatusBadRequest},
		{name: "below minimum payout", err: domain.ErrBelowMinimumPayout, expected: fiber.StatusBadRequest},
		{name: "popup blocked", err: domain.ErrPopupBlocked, expected: fiber.StatusBadRequest},
		{name: "user cancelled", err: domain.ErrUserCancelled, expected: fiber.StatusBadRequest},
		{name: "provider denied", err: &domain.AuthorizationError{ProviderError: "access_denied"}, expected: fiber.StatusUnauthorized},
		{name: "wrapped sentinel keeps its status", err: fmt.Errorf("workflow %q: %w", "wf-1", domain.ErrQuotaExceeded), expected: fiber.StatusTooManyRequests},
		{name: "unknown error is internal", err: errors.New("boom"), expected: fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusFromError(tt.err))
		})
	}
}
