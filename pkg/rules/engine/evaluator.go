package engine

import (
	"log/slog"
	"strings"
	"unicode"

	"expandev/atena/pkg/conversation"
	"expandev/atena/pkg/rcl/ast"
)

// ConditionEvaluator evaluates rule conditions against a turn context.
type ConditionEvaluator interface {
	// Evaluate produces one MatchResult per catalog rule, in declaration order.
	Evaluate(catalog *Catalog, turnCtx *conversation.TurnContext) []MatchResult
}

// DefaultEvaluator is the default implementation of ConditionEvaluator.
type DefaultEvaluator struct {
	scorer Scorer
	logger *slog.Logger
}

// NewDefaultEvaluator creates a new evaluator. A nil scorer falls back to the
// cue-fraction scorer.
func NewDefaultEvaluator(scorer Scorer, logger *slog.Logger) *DefaultEvaluator {
	if scorer == nil {
		scorer = NewCueScorer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultEvaluator{scorer: scorer, logger: logger}
}

// Evaluate produces a MatchResult for every rule in the catalog.
//
// ALWAYS rules always match. NEVER rules always match as guard-rails: they
// describe prohibitions checked against the candidate response, not
// input-triggered conditions, so they ride along every turn for the response
// generator to respect. IF rules match on their structured predicate;
// SITUATIONAL rules carry the scorer's graded strength.
func (e *DefaultEvaluator) Evaluate(catalog *Catalog, turnCtx *conversation.TurnContext) []MatchResult {
	results := make([]MatchResult, 0, catalog.RuleCount())

	for _, rule := range catalog.Rules() {
		result := MatchResult{RuleID: rule.ID, Category: rule.Category}

		switch rule.Category {
		case ast.CategoryAlways, ast.CategoryNever:
			result.Matched = true
			result.Strength = 1.0

		case ast.CategoryIf:
			if e.evalCondition(rule.Condition, turnCtx) {
				result.Matched = true
				result.Strength = 1.0
			}

		case ast.CategorySituational:
			strength := e.scorer.Score(rule, turnCtx)
			if strength < 0 {
				strength = 0
			} else if strength > 1 {
				strength = 1
			}
			result.Strength = strength
			result.Matched = strength > 0
		}

		e.logger.Debug("rule evaluated",
			"rule_id", result.RuleID,
			"category", result.Category,
			"matched", result.Matched,
			"strength", result.Strength,
		)

		results = append(results, result)
	}

	return results
}

// evalCondition recursively evaluates an IF rule's condition tree.
func (e *DefaultEvaluator) evalCondition(cond *ast.ConditionNode, turnCtx *conversation.TurnContext) bool {
	if cond == nil {
		return false
	}

	switch cond.Type {
	case ast.ConditionTypePhrase:
		return ContainsPhrase(turnCtx.Utterance, cond.Phrase)

	case ast.ConditionTypeFlag:
		return turnCtx.Flags.Equals(cond.Flag, cond.Value)

	case ast.ConditionTypeTopicClosed:
		return turnCtx.TopicClosed(cond.Topic)

	case ast.ConditionTypeAll:
		for _, child := range cond.Children {
			if !e.evalCondition(child, turnCtx) {
				return false
			}
		}
		return true

	case ast.ConditionTypeAny:
		for _, child := range cond.Children {
			if e.evalCondition(child, turnCtx) {
				return true
			}
		}
		return false

	case ast.ConditionTypeNot:
		for _, child := range cond.Children {
			if e.evalCondition(child, turnCtx) {
				return false
			}
		}
		return true
	}

	return false
}

// ContainsPhrase reports whether text contains phrase as a whole phrase,
// case-insensitively. "Whole phrase" means the occurrence is not embedded in
// a longer word: "api" matches in "the API design" but not in "rapid".
func ContainsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}

	lowerText := strings.ToLower(text)
	lowerPhrase := strings.ToLower(phrase)

	for start := 0; ; {
		idx := strings.Index(lowerText[start:], lowerPhrase)
		if idx < 0 {
			return false
		}
		idx += start

		if boundaryBefore(lowerText, idx) && boundaryAfter(lowerText, idx+len(lowerPhrase)) {
			return true
		}
		start = idx + 1
	}
}

func boundaryBefore(text string, idx int) bool {
	if idx == 0 {
		return true
	}
	runes := []rune(text[:idx])
	last := runes[len(runes)-1]
	return !unicode.IsLetter(last) && !unicode.IsDigit(last)
}

func boundaryAfter(text string, idx int) bool {
	if idx >= len(text) {
		return true
	}
	r := []rune(text[idx:])[0]
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
