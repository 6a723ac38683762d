package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")

	// ErrBookingNotFound is returned when a booking is not found
	ErrBookingNotFound = errors.New("booking not found")

	// ErrDocumentNotFound is returned when a lead document is not found
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoPendingTransition is returned when a booking payload or a
	// cancel arrives for a lead with no transition in progress
	ErrNoPendingTransition = errors.New("no pending transition for lead")

	// ErrTransitionInProgress is returned when a second transition is
	// started for a lead that already has one in flight
	ErrTransitionInProgress = errors.New("a transition is already in progress for this lead")

	// ErrERPUnavailable is returned when the inventory feed is disabled
	// or unreachable
	ErrERPUnavailable = errors.New("inventory feed unavailable")
)
