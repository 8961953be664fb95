package validator

import (
	"errors"
	"strings"
	"testing"

	"expandev/atena/pkg/rcl/ast"
	rclErrors "expandev/atena/pkg/rcl/errors"
)

func alwaysRule(id string) *ast.Rule {
	return &ast.Rule{ID: id, Category: ast.CategoryAlways, Action: "act"}
}

func testDoc(rules ...*ast.Rule) *ast.Document {
	return &ast.Document{
		CatalogVersion: "1.0",
		Name:           "test",
		Rules:          rules,
	}
}

func errorList(t *testing.T, err error) *rclErrors.ErrorList {
	t.Helper()
	if err == nil {
		t.Fatal("Validate() returned nil, want errors")
	}
	var list *rclErrors.ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("error type = %T, want *errors.ErrorList", err)
	}
	return list
}

func TestValidateStructural(t *testing.T) {
	phrase := &ast.ConditionNode{Type: ast.ConditionTypePhrase, Phrase: "budget"}
	cue := &ast.Cue{Phrase: "budget"}

	tests := []struct {
		name    string
		doc     *ast.Document
		wantMsg string
	}{
		{
			name:    "missing rcl_version",
			doc:     &ast.Document{Rules: []*ast.Rule{alwaysRule("AL01")}},
			wantMsg: "missing rcl_version",
		},
		{
			name:    "empty catalog",
			doc:     testDoc(),
			wantMsg: "declares no rules",
		},
		{
			name:    "rule without id",
			doc:     testDoc(alwaysRule("AL01"), &ast.Rule{Category: ast.CategoryAlways, Action: "act"}),
			wantMsg: "missing an id",
		},
		{
			name:    "rule without category",
			doc:     testDoc(alwaysRule("AL01"), &ast.Rule{ID: "X01", Action: "act"}),
			wantMsg: "missing a category",
		},
		{
			name:    "unknown category",
			doc:     testDoc(alwaysRule("AL01"), &ast.Rule{ID: "X01", Category: "SOMETIMES", Action: "act"}),
			wantMsg: "unknown category",
		},
		{
			name:    "rule without action",
			doc:     testDoc(alwaysRule("AL01"), &ast.Rule{ID: "N01", Category: ast.CategoryNever}),
			wantMsg: "missing an action",
		},
		{
			name:    "IF rule without condition",
			doc:     testDoc(alwaysRule("AL01"), &ast.Rule{ID: "IF01", Category: ast.CategoryIf, Action: "act"}),
			wantMsg: "missing a condition",
		},
		{
			name:    "SITUATIONAL rule without cues",
			doc:     testDoc(alwaysRule("AL01"), &ast.Rule{ID: "S01", Category: ast.CategorySituational, Action: "act"}),
			wantMsg: "declares no cues",
		},
		{
			name: "ALWAYS rule with condition",
			doc: testDoc(&ast.Rule{
				ID: "AL01", Category: ast.CategoryAlways, Action: "act", Condition: phrase,
			}),
			wantMsg: "cannot declare a condition",
		},
		{
			name: "IF rule with cues",
			doc: testDoc(alwaysRule("AL01"), &ast.Rule{
				ID: "IF01", Category: ast.CategoryIf, Action: "act",
				Condition: phrase, Cues: []*ast.Cue{cue},
			}),
			wantMsg: "cannot declare cues",
		},
		{
			name: "conflicts_with on non-NEVER rule",
			doc: testDoc(&ast.Rule{
				ID: "AL01", Category: ast.CategoryAlways, Action: "act",
				ConflictsWith: []string{"IF01"},
			}),
			wantMsg: "only valid on NEVER rules",
		},
		{
			name: "empty phrase leaf",
			doc: testDoc(alwaysRule("AL01"), &ast.Rule{
				ID: "IF01", Category: ast.CategoryIf, Action: "act",
				Condition: &ast.ConditionNode{
					Type:     ast.ConditionTypeAll,
					Children: []*ast.ConditionNode{{Type: ast.ConditionTypePhrase}},
				},
			}),
			wantMsg: "empty phrase",
		},
		{
			name: "empty flag leaf",
			doc: testDoc(alwaysRule("AL01"), &ast.Rule{
				ID: "IF01", Category: ast.CategoryIf, Action: "act",
				Condition: &ast.ConditionNode{Type: ast.ConditionTypeFlag},
			}),
			wantMsg: "empty flag name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := errorList(t, NewValidator().Validate(tt.doc))
			if !list.HasErrorType(rclErrors.ErrorTypeStructural) {
				t.Fatalf("no structural error, got: %v", list)
			}

			found := false
			for _, e := range list.Errors {
				if strings.Contains(e.Message, tt.wantMsg) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("no error message contains %q, got: %v", tt.wantMsg, list)
			}
		})
	}
}

func TestValidateDuplicateIDs(t *testing.T) {
	doc := testDoc(
		alwaysRule("AL01"),
		&ast.Rule{ID: "AL01", Category: ast.CategoryNever, Action: "act"},
	)

	list := errorList(t, NewValidator().Validate(doc))
	dup := list.FirstOfType(rclErrors.ErrorTypeDuplicate)
	if dup == nil {
		t.Fatalf("no duplicate error, got: %v", list)
	}
	if dup.RuleID != "AL01" {
		t.Errorf("duplicate error rule id = %q, want AL01", dup.RuleID)
	}
}

func TestValidateConflictLinks(t *testing.T) {
	tests := []struct {
		name    string
		rules   []*ast.Rule
		wantMsg string
	}{
		{
			name: "self conflict",
			rules: []*ast.Rule{
				alwaysRule("AL01"),
				{ID: "N01", Category: ast.CategoryNever, Action: "act", ConflictsWith: []string{"N01"}},
			},
			wantMsg: "conflict with itself",
		},
		{
			name: "unknown target",
			rules: []*ast.Rule{
				alwaysRule("AL01"),
				{ID: "N01", Category: ast.CategoryNever, Action: "act", ConflictsWith: []string{"IF99"}},
			},
			wantMsg: "unknown rule",
		},
		{
			name: "target with wrong category",
			rules: []*ast.Rule{
				alwaysRule("AL01"),
				{ID: "N01", Category: ast.CategoryNever, Action: "act", ConflictsWith: []string{"N02"}},
				{ID: "N02", Category: ast.CategoryNever, Action: "act"},
			},
			wantMsg: "links must point at ALWAYS or IF rules",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := errorList(t, NewValidator().Validate(testDoc(tt.rules...)))
			sem := list.FirstOfType(rclErrors.ErrorTypeSemantic)
			if sem == nil {
				t.Fatalf("no semantic error, got: %v", list)
			}
			if !strings.Contains(sem.Message, tt.wantMsg) {
				t.Errorf("message %q does not contain %q", sem.Message, tt.wantMsg)
			}
		})
	}
}

func TestValidateAlwaysGuarantee(t *testing.T) {
	doc := testDoc(&ast.Rule{ID: "N01", Category: ast.CategoryNever, Action: "act"})

	list := errorList(t, NewValidator().Validate(doc))
	sem := list.FirstOfType(rclErrors.ErrorTypeSemantic)
	if sem == nil || !strings.Contains(sem.Message, "no ALWAYS rules") {
		t.Errorf("expected the ALWAYS guarantee error, got: %v", list)
	}
}

func TestValidateSkipsSemanticOnStructuralErrors(t *testing.T) {
	// A catalog with a broken rule and a duplicate id: only the structural
	// defect should be reported so the author fixes structure first.
	doc := testDoc(
		alwaysRule("AL01"),
		alwaysRule("AL01"),
		&ast.Rule{ID: "X01", Action: "act"},
	)

	list := errorList(t, NewValidator().Validate(doc))
	if !list.HasErrorType(rclErrors.ErrorTypeStructural) {
		t.Fatal("no structural error reported")
	}
	if list.HasErrorType(rclErrors.ErrorTypeDuplicate) {
		t.Error("semantic pass ran despite structural errors")
	}
}

func TestValidateAcceptsWellFormedCatalog(t *testing.T) {
	doc := testDoc(
		alwaysRule("AL01"),
		&ast.Rule{ID: "N01", Category: ast.CategoryNever, Action: "act", ConflictsWith: []string{"IF01"}},
		&ast.Rule{
			ID: "IF01", Category: ast.CategoryIf, Action: "act",
			Condition: &ast.ConditionNode{Type: ast.ConditionTypePhrase, Phrase: "budget"},
		},
		&ast.Rule{
			ID: "S01", Category: ast.CategorySituational, Action: "act",
			Cues: []*ast.Cue{{Phrase: "budget"}},
		},
	)

	if err := NewValidator().Validate(doc); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}
