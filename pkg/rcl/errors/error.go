package errors

import (
	"fmt"
	"strings"

	"expandev/atena/pkg/rcl/ast"
)

// ErrorType categorizes the type of error encountered during parsing or validation.
type ErrorType string

const (
	ErrorTypeSyntax     ErrorType = "syntax"     // YAML syntax error
	ErrorTypeStructural ErrorType = "structural" // Missing/invalid rule fields
	ErrorTypeDuplicate  ErrorType = "duplicate"  // Duplicate rule id
	ErrorTypeSemantic   ErrorType = "semantic"   // Dangling reference, category misuse
	ErrorTypeIO         ErrorType = "io"         // File I/O error
)

// Error represents a catalog error with location and an optional suggestion.
type Error struct {
	Type       ErrorType    // Category of error
	RuleID     string       // Offending rule id, if known
	Message    string       // Error message
	Location   ast.Location // Source location
	Suggestion string       // Suggested fix (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] ", e.Type))
	if e.RuleID != "" {
		sb.WriteString(fmt.Sprintf("rule %s: ", e.RuleID))
	}
	sb.WriteString(e.Message)

	if e.Location.IsValid() {
		sb.WriteString(fmt.Sprintf("\n  --> %s", e.Location.String()))
	}
	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("\n  = suggestion: %s", e.Suggestion))
	}

	return sb.String()
}

// ErrorList accumulates multiple catalog errors.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{Errors: make([]*Error, 0)}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and adds a new error with the given parameters.
func (el *ErrorList) AddError(errType ErrorType, ruleID, message string, location ast.Location) {
	el.Add(&Error{
		Type:     errType,
		RuleID:   ruleID,
		Message:  message,
		Location: location,
	})
}

// AddErrorWithSuggestion creates and adds a new error with a suggestion.
func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, ruleID, message string, location ast.Location, suggestion string) {
	el.Add(&Error{
		Type:       errType,
		RuleID:     ruleID,
		Message:    message,
		Location:   location,
		Suggestion: suggestion,
	})
}

// HasErrors returns true if the list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// HasErrorType returns true if the list contains an error of the given type.
func (el *ErrorList) HasErrorType(errType ErrorType) bool {
	for _, err := range el.Errors {
		if err.Type == errType {
			return true
		}
	}
	return false
}

// FirstOfType returns the first error of the given type, or nil.
func (el *ErrorList) FirstOfType(errType ErrorType) *Error {
	for _, err := range el.Errors {
		if err.Type == errType {
			return err
		}
	}
	return nil
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error implements the error interface, formatting all errors together.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}
	if len(el.Errors) == 1 {
		return el.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d catalog errors:\n", len(el.Errors)))
	for _, err := range el.Errors {
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// ToError returns the list as an error, or nil if the list is empty.
func (el *ErrorList) ToError() error {
	if el.HasErrors() {
		return el
	}
	return nil
}
