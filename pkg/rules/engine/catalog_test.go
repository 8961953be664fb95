package engine

import (
	"errors"
	"testing"

	"expandev/atena/pkg/rcl/ast"
)

func TestCatalogLookup(t *testing.T) {
	always := newTestRule("AL01", ast.CategoryAlways)
	never := newTestRule("N01", ast.CategoryNever)

	catalog := newTestCatalog(t, always, never)

	rule, err := catalog.Lookup("N01")
	if err != nil {
		t.Fatalf("Lookup(N01) error = %v", err)
	}
	if rule.ID != "N01" || rule.Category != ast.CategoryNever {
		t.Errorf("Lookup(N01) = %+v, want the NEVER rule", rule)
	}

	_, err = catalog.Lookup("missing")
	var unknown *UnknownRuleError
	if !errors.As(err, &unknown) {
		t.Fatalf("Lookup(missing) error = %v, want UnknownRuleError", err)
	}
	if unknown.ID != "missing" {
		t.Errorf("UnknownRuleError.ID = %q, want %q", unknown.ID, "missing")
	}
}

func TestNewCatalogRejectsDuplicateIDs(t *testing.T) {
	doc := &ast.Document{
		CatalogVersion: "1.0",
		Name:           "dup",
		Rules: []*ast.Rule{
			newTestRule("AL01", ast.CategoryAlways),
			newTestRule("AL01", ast.CategoryAlways),
		},
	}

	_, err := NewCatalog(doc)
	var dup *DuplicateIDError
	if !errors.As(err, &dup) {
		t.Fatalf("NewCatalog() error = %v, want DuplicateIDError", err)
	}
	if dup.ID != "AL01" {
		t.Errorf("DuplicateIDError.ID = %q, want AL01", dup.ID)
	}
}

func TestNewCatalogRejectsMalformedRules(t *testing.T) {
	tests := []struct {
		name string
		doc  *ast.Document
	}{
		{
			name: "empty rule set",
			doc:  &ast.Document{CatalogVersion: "1.0", Name: "empty"},
		},
		{
			name: "if without condition",
			doc: &ast.Document{
				CatalogVersion: "1.0",
				Name:           "bad-if",
				Rules: []*ast.Rule{
					newTestRule("AL01", ast.CategoryAlways),
					newTestRule("IF01", ast.CategoryIf),
				},
			},
		},
		{
			name: "no always rule",
			doc: &ast.Document{
				CatalogVersion: "1.0",
				Name:           "no-always",
				Rules: []*ast.Rule{
					newTestRule("N01", ast.CategoryNever),
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.doc)
			var malformed *MalformedRuleError
			if !errors.As(err, &malformed) {
				t.Fatalf("NewCatalog() error = %v, want MalformedRuleError", err)
			}
		})
	}
}

func TestCatalogAccessorsCopy(t *testing.T) {
	always := newTestRule("AL01", ast.CategoryAlways)
	catalog := newTestCatalog(t, always)

	rules := catalog.Rules()
	rules[0] = nil
	if got, err := catalog.Lookup("AL01"); err != nil || got == nil {
		t.Errorf("mutating Rules() result leaked into catalog: %v, %v", got, err)
	}
}
