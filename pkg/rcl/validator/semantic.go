package validator

import (
	"fmt"

	"expandev/atena/pkg/rcl/ast"
	rclErrors "expandev/atena/pkg/rcl/errors"
)

// SemanticValidator checks cross-rule properties of a catalog: id uniqueness,
// conflict-link resolution, and the ALWAYS-rule guarantee.
type SemanticValidator struct{}

// NewSemanticValidator creates a new semantic validator.
func NewSemanticValidator() *SemanticValidator {
	return &SemanticValidator{}
}

// Validate runs semantic validation on a catalog document.
func (v *SemanticValidator) Validate(doc *ast.Document) error {
	errors := rclErrors.NewErrorList()

	v.validateUniqueIDs(doc, errors)
	v.validateConflictLinks(doc, errors)
	v.validateAlwaysGuarantee(doc, errors)

	return errors.ToError()
}

// validateUniqueIDs checks that rule ids are globally unique.
func (v *SemanticValidator) validateUniqueIDs(doc *ast.Document, errors *rclErrors.ErrorList) {
	seen := make(map[string]*ast.Rule, len(doc.Rules))
	for _, rule := range doc.Rules {
		if rule.ID == "" {
			continue // Already reported by the structural pass
		}
		if first, ok := seen[rule.ID]; ok {
			errors.AddError(rclErrors.ErrorTypeDuplicate, rule.ID,
				fmt.Sprintf("duplicate rule id (first declared at %s)", first.Location.String()),
				rule.Location)
			continue
		}
		seen[rule.ID] = rule
	}
}

// validateConflictLinks checks that every conflicts_with entry resolves to an
// existing ALWAYS or IF rule. Conflict links describe a prohibition that
// directly contradicts a positive directive, so linking two NEVER rules (or a
// rule to itself) is an authoring defect.
func (v *SemanticValidator) validateConflictLinks(doc *ast.Document, errors *rclErrors.ErrorList) {
	for _, rule := range doc.Rules {
		for _, target := range rule.ConflictsWith {
			if target == rule.ID {
				errors.AddError(rclErrors.ErrorTypeSemantic, rule.ID,
					"rule declares a conflict with itself", rule.Location)
				continue
			}

			other := doc.GetRule(target)
			if other == nil {
				errors.AddErrorWithSuggestion(rclErrors.ErrorTypeSemantic, rule.ID,
					fmt.Sprintf("conflicts_with references unknown rule %q", target),
					rule.Location,
					"check the target rule id for typos")
				continue
			}

			if other.Category != ast.CategoryAlways && other.Category != ast.CategoryIf {
				errors.AddError(rclErrors.ErrorTypeSemantic, rule.ID,
					fmt.Sprintf("conflicts_with target %q is a %s rule; links must point at ALWAYS or IF rules",
						target, other.Category),
					rule.Location)
			}
		}
	}
}

// validateAlwaysGuarantee checks that the catalog declares at least one
// ALWAYS rule. ALWAYS rules are what make the governing set provably
// non-empty every turn.
func (v *SemanticValidator) validateAlwaysGuarantee(doc *ast.Document, errors *rclErrors.ErrorList) {
	if len(doc.Rules) == 0 {
		return // Already reported by the structural pass
	}
	if len(doc.RulesByCategory(ast.CategoryAlways)) == 0 {
		errors.AddErrorWithSuggestion(rclErrors.ErrorTypeSemantic, "",
			"catalog declares no ALWAYS rules", doc.Location,
			"every catalog needs at least one ALWAYS rule so the applied-rules trace is never empty")
	}
}
