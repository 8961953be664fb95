package engine

import (
	"sort"

	"expandev/atena/pkg/conversation"
	"expandev/atena/pkg/rcl/ast"
)

// PrecedenceResolver reduces the matched-rule set to the final governing set.
type PrecedenceResolver interface {
	// Resolve applies category precedence, IF de-duplication, the
	// situational budget and conflict detection. The budget caps the number
	// of SITUATIONAL rules per turn.
	Resolve(catalog *Catalog, matches []MatchResult, turnCtx *conversation.TurnContext, budget int) (*GoverningSet, error)
}

// DefaultResolver is the default implementation of PrecedenceResolver.
type DefaultResolver struct{}

// NewDefaultResolver creates a new precedence resolver.
func NewDefaultResolver() *DefaultResolver {
	return &DefaultResolver{}
}

// Resolve builds the governing set in fixed category order:
//
//  1. Every ALWAYS and NEVER rule, unconditionally, in declaration order.
//  2. Every matched IF rule, in declaration order, unless the (rule, topic)
//     pair was already satisfied by a closed topic this conversation.
//  3. Matched SITUATIONAL rules ranked by descending strength, ties broken
//     by ascending rule id, truncated to the budget.
//  4. Conflict detection over the included set: an included NEVER rule whose
//     declared conflict link names an included ALWAYS/IF rule fails the turn
//     with RuleConflictError.
func (r *DefaultResolver) Resolve(catalog *Catalog, matches []MatchResult, turnCtx *conversation.TurnContext, budget int) (*GoverningSet, error) {
	matchByID := make(map[string]MatchResult, len(matches))
	for _, m := range matches {
		matchByID[m.RuleID] = m
	}

	set := &GoverningSet{}

	// Steps 1-2: category tiers in declaration order.
	for _, rule := range catalog.RulesByCategory(ast.CategoryAlways) {
		set.Rules = append(set.Rules, governingRule(rule, 1.0))
	}
	for _, rule := range catalog.RulesByCategory(ast.CategoryNever) {
		set.Rules = append(set.Rules, governingRule(rule, 1.0))
	}

	currentTopic := turnCtx.CurrentTopic()
	for _, rule := range catalog.RulesByCategory(ast.CategoryIf) {
		m, ok := matchByID[rule.ID]
		if !ok || !m.Matched {
			continue
		}
		// Suppressed once per topic lifecycle after the topic closes.
		if turnCtx.Satisfied.Has(rule.ID, currentTopic) {
			continue
		}
		set.Rules = append(set.Rules, governingRule(rule, m.Strength))
	}

	// Step 3: situational budget.
	for _, selected := range r.selectSituational(catalog, matchByID, budget) {
		set.Rules = append(set.Rules, selected)
	}

	// Step 4: conflict detection. Never silent once the catalog is
	// well-formed; a hit is a catalog authoring defect.
	if err := r.detectConflicts(catalog, set); err != nil {
		return nil, err
	}

	return set, nil
}

// selectSituational ranks matched SITUATIONAL rules by descending strength,
// breaking ties by ascending rule id, and returns the top budget entries in
// selection order.
func (r *DefaultResolver) selectSituational(catalog *Catalog, matchByID map[string]MatchResult, budget int) []GoverningRule {
	if budget <= 0 {
		return nil
	}

	var candidates []GoverningRule
	for _, rule := range catalog.RulesByCategory(ast.CategorySituational) {
		m, ok := matchByID[rule.ID]
		if !ok || !m.Matched {
			continue
		}
		candidates = append(candidates, governingRule(rule, m.Strength))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Strength != candidates[j].Strength {
			return candidates[i].Strength > candidates[j].Strength
		}
		return candidates[i].ID < candidates[j].ID
	})

	if len(candidates) > budget {
		candidates = candidates[:budget]
	}
	return candidates
}

// detectConflicts checks every included NEVER rule's conflict links against
// the included ALWAYS/IF rules.
func (r *DefaultResolver) detectConflicts(catalog *Catalog, set *GoverningSet) error {
	for _, never := range set.ByCategory(ast.CategoryNever) {
		rule, err := catalog.Lookup(never.ID)
		if err != nil {
			return err
		}
		for _, target := range rule.ConflictsWith {
			if !set.Contains(target) {
				continue
			}
			other, err := catalog.Lookup(target)
			if err != nil {
				return err
			}
			if other.Category == ast.CategoryAlways || other.Category == ast.CategoryIf {
				return &RuleConflictError{NeverID: never.ID, ConflictID: target}
			}
		}
	}
	return nil
}

func governingRule(rule *ast.Rule, strength float64) GoverningRule {
	return GoverningRule{
		ID:       rule.ID,
		Category: rule.Category,
		Action:   rule.Action,
		Strength: strength,
	}
}
