// Package services defines the shared error taxonomy and context annotation
// helpers used across Plume components.
//
// Errors are classified by wrapping a sentinel marker (ErrValidation,
// ErrConflict, ErrPhaseOrder, ErrIncompleteSection, ErrNotFound, ErrTimeout,
// ErrInfrastructure, ErrTransient) so callers can branch with errors.Is
// without string matching. Context helpers carry project, section, phase,
// user, and correlation identifiers so log lines stay consistent.
package services
