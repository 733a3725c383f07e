package services

import (
	"errors"
	"strings"
)

var (
	ErrNotEnoughDrivers     = errors.New("not enough active drivers available")
	ErrNoPendingOrders      = errors.New("no pending or in-transit orders found to simulate")
	ErrNoRoutes             = errors.New("no routes found in the database")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEstimatorUnavailable = errors.New("route estimation is not configured")
)

// ValidationError carries every problem found in a request, not just the first.
type ValidationError struct {
	Message  string
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Problems, "; ")
}

func newValidationError(msg string, problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Message: msg, Problems: problems}
}
