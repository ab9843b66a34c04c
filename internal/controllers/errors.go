package controllers

import (
	"errors"

	"github.com/frontand-tech/frontand/pkg/domain"

	"github.com/gofiber/fiber/v3"
)

// statusFromError maps the domain error taxonomy onto HTTP statuses. All
// domain errors surface to the caller with their message intact; retry is
// caller policy.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrConnectionNotFound),
		errors.Is(err, domain.ErrPayoutNotFound),
		errors.Is(err, domain.ErrPricingNotConfigured):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrQuotaExceeded):
		return fiber.StatusTooManyRequests
	case errors.Is(err, domain.ErrAuthorizationTimeout):
		return fiber.StatusRequestTimeout
	case errors.Is(err, domain.ErrServiceNotConfigured),
		errors.Is(err, domain.ErrRefreshNotSupported),
		errors.Is(err, domain.ErrBelowMinimumPayout),
		errors.Is(err, domain.ErrPopupBlocked),
		errors.Is(err, domain.ErrUserCancelled):
		return fiber.StatusBadRequest
	}

	if _, ok := domain.IsAuthorizationError(err); ok {
		return fiber.StatusUnauthorized
	}

	return fiber.StatusInternalServerError
}

func errorResponse(c fiber.Ctx, err error) error {
	return c.Status(statusFromError(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
