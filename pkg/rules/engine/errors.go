package engine

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNoCatalogLoaded indicates no catalog is loaded in the engine.
	ErrNoCatalogLoaded = errors.New("no catalog loaded")

	// ErrInvalidConfig indicates invalid engine configuration.
	ErrInvalidConfig = errors.New("invalid engine configuration")
)

// MalformedRuleError indicates a catalog rule is missing a required field or
// misuses its category. It is fatal at load time: the catalog is rejected
// and no conversation may start against it.
type MalformedRuleError struct {
	RuleID string // Offending rule id, if it had one
	Cause  error  // Detailed validation errors
}

// Error returns the error message.
func (e *MalformedRuleError) Error() string {
	if e.RuleID != "" {
		return fmt.Sprintf("malformed rule %s: %v", e.RuleID, e.Cause)
	}
	return fmt.Sprintf("malformed catalog: %v", e.Cause)
}

// Unwrap returns the underlying cause.
func (e *MalformedRuleError) Unwrap() error {
	return e.Cause
}

// DuplicateIDError indicates two catalog rules share an id.
// Fatal at load time.
type DuplicateIDError struct {
	ID    string
	Cause error
}

// Error returns the error message.
func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate rule id %q: %v", e.ID, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *DuplicateIDError) Unwrap() error {
	return e.Cause
}

// UnknownRuleError indicates a lookup for a rule id absent from the catalog.
type UnknownRuleError struct {
	ID string
}

// Error returns the error message.
func (e *UnknownRuleError) Error() string {
	return fmt.Sprintf("unknown rule id %q", e.ID)
}

// RuleConflictError indicates that resolution included a NEVER rule whose
// declared conflict link names an included ALWAYS/IF rule. It is fatal for
// the turn and signals a catalog authoring defect, not a runtime condition
// to recover from.
type RuleConflictError struct {
	NeverID    string // The prohibiting rule
	ConflictID string // The contradicted ALWAYS/IF rule
}

// Error returns the error message naming both rules.
func (e *RuleConflictError) Error() string {
	return fmt.Sprintf("rule conflict: NEVER rule %s contradicts included rule %s", e.NeverID, e.ConflictID)
}
