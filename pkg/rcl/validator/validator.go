package validator

import (
	"expandev/atena/pkg/rcl/ast"
	rclErrors "expandev/atena/pkg/rcl/errors"
)

// Validator orchestrates all validation passes over a catalog document.
type Validator struct {
	structural *StructuralValidator
	semantic   *SemanticValidator
}

// NewValidator creates a new validator with all validation passes.
func NewValidator() *Validator {
	return &Validator{
		structural: NewStructuralValidator(),
		semantic:   NewSemanticValidator(),
	}
}

// Validate runs all validation passes on a catalog document.
// It accumulates errors from all passes and returns them together.
func (v *Validator) Validate(doc *ast.Document) error {
	errors := rclErrors.NewErrorList()

	if err := v.structural.Validate(doc); err != nil {
		if errList, ok := err.(*rclErrors.ErrorList); ok {
			errors.Errors = append(errors.Errors, errList.Errors...)
		}
	}

	// Semantic validation only runs on a structurally sound catalog to avoid
	// cascading errors from anonymous or miscategorized rules.
	if !errors.HasErrorType(rclErrors.ErrorTypeStructural) {
		if err := v.semantic.Validate(doc); err != nil {
			if errList, ok := err.(*rclErrors.ErrorList); ok {
				errors.Errors = append(errors.Errors, errList.Errors...)
			}
		}
	}

	return errors.ToError()
}

// ValidateStructural runs only the structural pass.
func (v *Validator) ValidateStructural(doc *ast.Document) error {
	return v.structural.Validate(doc)
}

// ValidateSemantic runs only the semantic pass.
func (v *Validator) ValidateSemantic(doc *ast.Document) error {
	return v.semantic.Validate(doc)
}
