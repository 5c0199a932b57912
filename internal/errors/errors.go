package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/dayprompt/internal/logger"
)

var (
	// ErrStorage marks failures loading or saving durable state.
	ErrStorage = stderrors.New("storage error")
	// ErrScheduling marks failures arming or cancelling an alert.
	ErrScheduling = stderrors.New("scheduling error")
	// ErrPolicyViolation marks a response submitted outside its answer window.
	ErrPolicyViolation = stderrors.New("answer window closed")
	// ErrNotPending is returned when answering an entry that is already answered or missed.
	ErrNotPending = stderrors.New("entry is not pending")
	// ErrNotFound is returned when no entry exists for a day.
	ErrNotFound = stderrors.New("entry not found")
	// ErrPastDay is returned when a re-plan targets a day before today.
	ErrPastDay = stderrors.New("cannot plan a day in the past")
)

// StorageError wraps a failed store operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// SchedulingError wraps a failed alert operation.
type SchedulingError struct {
	AlertID string
	Err     error
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("scheduling alert %s: %v", e.AlertID, e.Err)
}

func (e *SchedulingError) Unwrap() []error { return []error{ErrScheduling, e.Err} }

// PolicyViolation describes a rejected response.
type PolicyViolation struct {
	Day         string
	At          time.Time
	ScheduledAt time.Time
	ExpiresAt   time.Time
}

func (e *PolicyViolation) Error() string {
	return fmt.Sprintf("%v: %s accepts responses between %s and %s, not at %s",
		ErrPolicyViolation, e.Day,
		e.ScheduledAt.Format("15:04"), e.ExpiresAt.Format("15:04"), e.At.Format("15:04"))
}

func (e *PolicyViolation) Unwrap() error { return ErrPolicyViolation }

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
