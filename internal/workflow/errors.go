package workflow

import (
	"errors"
	"fmt"
)

// ErrorKind classifies validation failures so callers can map them to
// API responses without parsing messages.
type ErrorKind string

const (
	KindUnknownStage         ErrorKind = "unknown_stage"
	KindMissingLostReason    ErrorKind = "missing_lost_reason"
	KindMissingSiteVisitDate ErrorKind = "missing_site_visit_date"
	KindMissingSaleValue     ErrorKind = "missing_sale_value"
	KindEmptySchedule        ErrorKind = "empty_schedule"
	KindIncompleteStage      ErrorKind = "incomplete_stage"
	KindInvalidState         ErrorKind = "invalid_state"
)

// ValidationError is a rejected transition or booking input. Index is
// meaningful only for KindIncompleteStage, where it identifies the
// offending schedule row.
type ValidationError struct {
	Kind  ErrorKind
	Index int
	msg   string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func errUnknownStage(value string) *ValidationError {
	return &ValidationError{Kind: KindUnknownStage, Index: -1, msg: fmt.Sprintf("unknown stage %q", value)}
}

func errMissingLostReason() *ValidationError {
	return &ValidationError{Kind: KindMissingLostReason, Index: -1, msg: "a reason is required when marking a lead as Lost/Dead"}
}

func errMissingSiteVisitDate() *ValidationError {
	return &ValidationError{Kind: KindMissingSiteVisitDate, Index: -1, msg: "a visit date is required when scheduling a site visit"}
}

func errMissingSaleValue() *ValidationError {
	return &ValidationError{Kind: KindMissingSaleValue, Index: -1, msg: "total sale value must be greater than zero"}
}

func errEmptySchedule() *ValidationError {
	return &ValidationError{Kind: KindEmptySchedule, Index: -1, msg: "at least one payment stage is required"}
}

func errIncompleteStage(index int, detail string) *ValidationError {
	return &ValidationError{
		Kind:  KindIncompleteStage,
		Index: index,
		msg:   fmt.Sprintf("payment stage %d is incomplete: %s", index+1, detail),
	}
}

func errInvalidState(detail string) *ValidationError {
	return &ValidationError{Kind: KindInvalidState, Index: -1, msg: detail}
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// CollaboratorError wraps a failure reported by the LeadUpdater while
// committing a transition. The orchestrator returns to its pre-submit
// state when it sees one, so the caller may retry.
type CollaboratorError struct {
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("failed to update lead: %v", e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
