package domain

import (
	"errors"
	"fmt"
)

var (
	// Connection errors
	ErrServiceNotConfigured = errors.New("oauth service is not configured")
	ErrPopupBlocked         = errors.New("authorization popup was blocked")
	ErrUserCancelled        = errors.New("authorization was cancelled by the user")
	ErrAuthorizationTimeout = errors.New("authorization timed out")
	ErrConnectionNotFound   = errors.New("connection not found")
	ErrRefreshNotSupported  = errors.New("service does not support token refresh")

	// Monetization errors
	ErrPricingNotConfigured = errors.New("workflow pricing is not configured")
	ErrQuotaExceeded        = errors.New("usage quota exceeded")
	ErrBelowMinimumPayout   = errors.New("pending earnings are below the minimum payout")
	ErrPayoutNotFound       = errors.New("payout not found")
)

// AuthorizationError carries the error string returned by the OAuth
// provider on the callback redirect (e.g. "access_denied").
type AuthorizationError struct {
	ProviderError string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization failed: %s", e.ProviderError)
}

// IsAuthorizationError checks whether err is a provider-side authorization failure.
func IsAuthorizationError(err error) (*AuthorizationError, bool) {
	var authErr *AuthorizationError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}
