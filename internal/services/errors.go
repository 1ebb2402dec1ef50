package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks bad input shape or values; the caller can recover
	// by correcting the input.
	ErrValidation = errors.New("validation error")
	// ErrConflict marks a concurrent-write revision mismatch; the caller
	// should reload and retry.
	ErrConflict = errors.New("conflict error")
	// ErrPhaseOrder marks an illegal phase transition request.
	ErrPhaseOrder = errors.New("phase order error")
	// ErrIncompleteSection marks sections missing prerequisites for a phase
	// transition; details carry the per-section breakdown.
	ErrIncompleteSection = errors.New("incomplete section error")
	// ErrNotFound marks an unknown or soft-deleted identifier.
	ErrNotFound = errors.New("not found")
	// ErrTimeout marks an external call that exceeded its bound.
	ErrTimeout = errors.New("timeout")
	// ErrInfrastructure marks a persistence or storage failure that is not
	// locally recoverable; surfaced, never swallowed.
	ErrInfrastructure = errors.New("infrastructure error")
	// ErrTransient marks failures worth retrying that fit no other class.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsRecoverable reports whether the caller can fix the failure by adjusting
// input or retrying after a reload.
func IsRecoverable(err error) bool {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrPhaseOrder),
		errors.Is(err, ErrIncompleteSection),
		errors.Is(err, ErrTimeout):
		return true
	default:
		return false
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
