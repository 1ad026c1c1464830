package booking

import (
	"errors"
	"fmt"

	"github.com/Velimir1992/parkbooking/internal/domain"
)

// ValidationError covers malformed requests: missing fields, empty or
// unparseable slot selections. Nothing was written when it is returned.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid booking request: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("invalid booking request: %s", e.Msg)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ConflictError means the requested span is not free, either because an
// existing reservation overlaps it or because another booking for the
// same spot is in flight. Safe to retry with a different interval.
type ConflictError struct {
	Candidate domain.Interval
	Existing  domain.Interval
	Msg       string
}

func (e *ConflictError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("interval %s-%s conflicts with existing reservation %s-%s",
		e.Candidate.Start.Format("2006-01-02 15:04"), e.Candidate.End.Format("15:04"),
		e.Existing.Start.Format("2006-01-02 15:04"), e.Existing.End.Format("15:04"))
}

// AllocationError means reservation identity generation kept colliding
// until the retry budget ran out. Transient; the whole request may be
// retried.
type AllocationError struct {
	Attempts int
	Err      error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("could not allocate reservation id after %d attempts: %v", e.Attempts, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// UpstreamError wraps store failures unrelated to business rules.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Group outcome states reported on a partial batch failure.
const (
	GroupCreated        = "created"
	GroupRolledBack     = "rolled_back"
	GroupRollbackFailed = "rollback_failed"
	GroupFailed         = "failed"
	GroupNotAttempted   = "not_attempted"
)

type GroupOutcome struct {
	Interval      domain.Interval `json:"interval"`
	ReservationID int64           `json:"reservation_id,omitempty"`
	Status        string          `json:"status"`
	Detail        string          `json:"detail,omitempty"`
}

// PartialBatchFailure is returned when a multi-group booking failed
// mid-batch and compensation could not remove every reservation that
// was already written. Groups lists where each interval ended up so the
// caller can decide what to retry or release.
type PartialBatchFailure struct {
	Groups []GroupOutcome
	Cause  error
}

func (e *PartialBatchFailure) Error() string {
	return fmt.Sprintf("batch booking failed and was not fully rolled back: %v", e.Cause)
}

func (e *PartialBatchFailure) Unwrap() error { return e.Cause }

// AsValidation reports whether err is a request-shaped failure rather
// than a store or concurrency one.
func AsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
