package validator

import (
	"fmt"

	"expandev/atena/pkg/rcl/ast"
	rclErrors "expandev/atena/pkg/rcl/errors"
)

// StructuralValidator checks that every rule carries the fields its category
// requires. It does not look across rules; that is the semantic pass.
type StructuralValidator struct{}

// NewStructuralValidator creates a new structural validator.
func NewStructuralValidator() *StructuralValidator {
	return &StructuralValidator{}
}

// Validate runs structural validation on a catalog document.
func (v *StructuralValidator) Validate(doc *ast.Document) error {
	errors := rclErrors.NewErrorList()

	if doc.CatalogVersion == "" {
		errors.AddErrorWithSuggestion(rclErrors.ErrorTypeStructural, "",
			"catalog is missing rcl_version", doc.Location,
			`add rcl_version: "1.0" at the top of the file`)
	}

	if len(doc.Rules) == 0 {
		errors.AddError(rclErrors.ErrorTypeStructural, "",
			"catalog declares no rules", doc.Location)
	}

	for _, rule := range doc.Rules {
		v.validateRule(rule, errors)
	}

	return errors.ToError()
}

// validateRule checks a single rule's structure.
func (v *StructuralValidator) validateRule(rule *ast.Rule, errors *rclErrors.ErrorList) {
	if rule.ID == "" {
		errors.AddError(rclErrors.ErrorTypeStructural, "",
			"rule is missing an id", rule.Location)
		// Without an id the remaining checks would produce anonymous noise.
		return
	}

	if rule.Category == "" {
		errors.AddError(rclErrors.ErrorTypeStructural, rule.ID,
			"rule is missing a category", rule.Location)
		return
	}
	if !rule.Category.IsValid() {
		errors.AddErrorWithSuggestion(rclErrors.ErrorTypeStructural, rule.ID,
			fmt.Sprintf("unknown category %q", rule.Category), rule.Location,
			"category must be one of: ALWAYS, NEVER, IF, SITUATIONAL")
	}

	if rule.Action == "" {
		errors.AddError(rclErrors.ErrorTypeStructural, rule.ID,
			"rule is missing an action", rule.Location)
	}

	switch rule.Category {
	case ast.CategoryIf:
		if !rule.HasCondition() {
			errors.AddErrorWithSuggestion(rclErrors.ErrorTypeStructural, rule.ID,
				"IF rule is missing a condition", rule.Location,
				"declare a condition with phrase, flag, topic_closed, or an all/any combinator")
		}
	case ast.CategorySituational:
		if !rule.HasCues() {
			errors.AddError(rclErrors.ErrorTypeStructural, rule.ID,
				"SITUATIONAL rule declares no cues", rule.Location)
		}
	case ast.CategoryAlways, ast.CategoryNever:
		// The condition of an ALWAYS/NEVER rule is the universal context.
		if rule.HasCondition() {
			errors.AddError(rclErrors.ErrorTypeStructural, rule.ID,
				fmt.Sprintf("%s rule cannot declare a condition", rule.Category), rule.Location)
		}
	}

	if rule.Category != ast.CategorySituational && rule.HasCues() {
		errors.AddError(rclErrors.ErrorTypeStructural, rule.ID,
			fmt.Sprintf("%s rule cannot declare cues", rule.Category), rule.Location)
	}

	if len(rule.ConflictsWith) > 0 && rule.Category != ast.CategoryNever {
		errors.AddErrorWithSuggestion(rclErrors.ErrorTypeStructural, rule.ID,
			fmt.Sprintf("conflicts_with is only valid on NEVER rules, not %s", rule.Category),
			rule.Location,
			"declare the conflict link on the NEVER side of the pair")
	}

	if rule.HasCondition() {
		v.validateCondition(rule.ID, rule.Condition, errors)
	}
}

// validateCondition checks leaf conditions for empty signals.
func (v *StructuralValidator) validateCondition(ruleID string, cond *ast.ConditionNode, errors *rclErrors.ErrorList) {
	switch cond.Type {
	case ast.ConditionTypePhrase:
		if cond.Phrase == "" {
			errors.AddError(rclErrors.ErrorTypeStructural, ruleID,
				"phrase condition has an empty phrase", cond.Location)
		}
	case ast.ConditionTypeFlag:
		if cond.Flag == "" {
			errors.AddError(rclErrors.ErrorTypeStructural, ruleID,
				"flag condition has an empty flag name", cond.Location)
		}
	}

	for _, child := range cond.Children {
		v.validateCondition(ruleID, child, errors)
	}
}
