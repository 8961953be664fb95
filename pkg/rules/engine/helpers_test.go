package engine

import (
	"testing"

	"expandev/atena/pkg/conversation"
	"expandev/atena/pkg/rcl/ast"
)

// newTestRule builds a minimal rule for catalog construction in tests.
func newTestRule(id string, category ast.Category) *ast.Rule {
	return &ast.Rule{
		ID:          id,
		Category:    category,
		Description: "test rule " + id,
		Action:      "action for " + id,
	}
}

func phraseCondition(phrase string) *ast.ConditionNode {
	return &ast.ConditionNode{Type: ast.ConditionTypePhrase, Phrase: phrase}
}

func flagCondition(flag, value string) *ast.ConditionNode {
	return &ast.ConditionNode{Type: ast.ConditionTypeFlag, Flag: flag, Value: value}
}

func phraseCue(phrase string) *ast.Cue {
	return &ast.Cue{Phrase: phrase}
}

// newTestCatalog freezes a catalog from rules, failing the test on
// validation errors.
func newTestCatalog(t *testing.T, rules ...*ast.Rule) *Catalog {
	t.Helper()

	doc := &ast.Document{
		CatalogVersion: "1.0",
		Name:           "test-catalog",
		Rules:          rules,
	}

	catalog, err := NewCatalog(doc)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return catalog
}

func newTurnContext(utterance string) *conversation.TurnContext {
	return &conversation.TurnContext{
		ConversationID: "conv-1",
		TurnSeq:        1,
		Utterance:      utterance,
		Flags:          make(conversation.Flags),
		Satisfied:      make(conversation.SatisfiedSet),
	}
}
