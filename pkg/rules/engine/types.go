package engine

import (
	"time"

	"expandev/atena/pkg/rcl/ast"
)

// MatchResult is the outcome of evaluating one rule against one turn context.
type MatchResult struct {
	// RuleID is the evaluated rule's id.
	RuleID string

	// Category is the rule's category.
	Category ast.Category

	// Matched indicates whether the rule applies this turn.
	Matched bool

	// Strength is the graded match weight in [0,1]. ALWAYS, NEVER and
	// matched IF rules carry 1.0; SITUATIONAL rules carry the scorer's
	// grade, with 0 meaning "not matched".
	Strength float64
}

// GoverningRule is one entry of the final governing set, carrying the action
// directive handed to the response generator as a behavioral constraint.
type GoverningRule struct {
	ID       string
	Category ast.Category
	Action   string

	// Strength is the match strength that earned the rule its slot
	// (meaningful for SITUATIONAL entries, 1.0 elsewhere).
	Strength float64
}

// GoverningSet is the ordered set of rules that govern one turn's response.
// Order is fixed: ALWAYS, NEVER, IF (catalog declaration order), then
// SITUATIONAL (selection order). The trace emitter reproduces this order
// verbatim.
type GoverningSet struct {
	Rules []GoverningRule
}

// IDs returns the governing rule ids in output order.
func (s *GoverningSet) IDs() []string {
	ids := make([]string, len(s.Rules))
	for i, r := range s.Rules {
		ids[i] = r.ID
	}
	return ids
}

// Contains returns true if the set includes the given rule id.
func (s *GoverningSet) Contains(id string) bool {
	for _, r := range s.Rules {
		if r.ID == id {
			return true
		}
	}
	return false
}

// ByCategory returns the governing rules of one category, preserving order.
func (s *GoverningSet) ByCategory(category ast.Category) []GoverningRule {
	var result []GoverningRule
	for _, r := range s.Rules {
		if r.Category == category {
			result = append(result, r)
		}
	}
	return result
}

// Len returns the number of governing rules.
func (s *GoverningSet) Len() int {
	return len(s.Rules)
}

// TurnDecision is the engine's full output for one turn: the governing set
// plus the evaluation breakdown for auditing.
type TurnDecision struct {
	// Governing is the final ordered rule set for this turn.
	Governing GoverningSet

	// Matches contains the per-rule match results, in catalog declaration
	// order, including rules that did not match.
	Matches []MatchResult

	// CatalogName and CatalogVersion identify the frozen catalog evaluated.
	CatalogName    string
	CatalogVersion string

	// EvaluationTime is the total time spent evaluating and resolving.
	EvaluationTime time.Duration
}
