package engine

import (
	"expandev/atena/pkg/conversation"
	"expandev/atena/pkg/rcl/ast"
)

// Scorer grades a SITUATIONAL rule against a turn context.
//
// SITUATIONAL rules express soft, advisory guidance ("sometimes mirror the
// client's vocabulary"), so matching is a graded strength in [0,1] rather
// than boolean dispatch. The exact scoring function is a product decision;
// the interface keeps it pluggable.
type Scorer interface {
	// Score returns the rule's match strength in [0,1].
	// 0 means "not matched".
	Score(rule *ast.Rule, turnCtx *conversation.TurnContext) float64
}

// CueScorer is the default scorer: the strength of a SITUATIONAL rule is the
// fraction of its declared cues present in the turn context.
type CueScorer struct{}

// NewCueScorer creates the default cue-fraction scorer.
func NewCueScorer() *CueScorer {
	return &CueScorer{}
}

// Score returns matched-cues / total-cues for the rule.
func (s *CueScorer) Score(rule *ast.Rule, turnCtx *conversation.TurnContext) float64 {
	if len(rule.Cues) == 0 {
		return 0
	}

	matched := 0
	for _, cue := range rule.Cues {
		if s.cuePresent(cue, turnCtx) {
			matched++
		}
	}

	return float64(matched) / float64(len(rule.Cues))
}

func (s *CueScorer) cuePresent(cue *ast.Cue, turnCtx *conversation.TurnContext) bool {
	if cue.IsPhrase() {
		return ContainsPhrase(turnCtx.Utterance, cue.Phrase)
	}
	return turnCtx.Flags.Equals(cue.Flag, cue.Value)
}
