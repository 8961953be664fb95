package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"expandev/atena/pkg/rcl/ast"
	rclErrors "expandev/atena/pkg/rcl/errors"
)

const validCatalogYAML = `rcl_version: "1.0"
name: test-catalog
description: Catalog used by the parser tests
rules:
  - id: AL01
    category: ALWAYS
    description: Greet the client by name
    action: Address the client by name in the first turn
  - id: N01
    category: NEVER
    description: No guarantees
    action: Do not promise specific financial outcomes
    conflicts_with: [IF01]
  - id: IF01
    category: IF
    description: Uncertain client
    action: Offer a simpler explanation
    condition:
      any:
        - flag: client_uncertain
        - phrase: "i don't know"
  - id: S01
    category: SITUATIONAL
    description: Budget pressure
    action: Mention the phased rollout option
    cues:
      - phrase: budget
      - flag: budget_constrained
`

func TestParseBytesValidCatalog(t *testing.T) {
	doc, err := NewParser().ParseBytes([]byte(validCatalogYAML), "test.yaml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	if doc.CatalogVersion != "1.0" {
		t.Errorf("CatalogVersion = %q, want %q", doc.CatalogVersion, "1.0")
	}
	if doc.Name != "test-catalog" {
		t.Errorf("Name = %q, want %q", doc.Name, "test-catalog")
	}
	if doc.SourceFile != "test.yaml" {
		t.Errorf("SourceFile = %q, want %q", doc.SourceFile, "test.yaml")
	}
	if len(doc.Rules) != 4 {
		t.Fatalf("len(Rules) = %d, want 4", len(doc.Rules))
	}

	wantIDs := []string{"AL01", "N01", "IF01", "S01"}
	for i, want := range wantIDs {
		if doc.Rules[i].ID != want {
			t.Errorf("Rules[%d].ID = %q, want %q", i, doc.Rules[i].ID, want)
		}
	}

	never := doc.Rules[1]
	if never.Category != ast.CategoryNever {
		t.Errorf("N01 category = %q, want NEVER", never.Category)
	}
	if len(never.ConflictsWith) != 1 || never.ConflictsWith[0] != "IF01" {
		t.Errorf("N01 conflicts_with = %v, want [IF01]", never.ConflictsWith)
	}

	ifRule := doc.Rules[2]
	if ifRule.Condition == nil {
		t.Fatal("IF01 has no condition")
	}
	if ifRule.Condition.Type != ast.ConditionTypeAny {
		t.Errorf("IF01 condition type = %q, want any", ifRule.Condition.Type)
	}
	if len(ifRule.Condition.Children) != 2 {
		t.Fatalf("IF01 condition children = %d, want 2", len(ifRule.Condition.Children))
	}
	if got := ifRule.Condition.Children[0].Flag; got != "client_uncertain" {
		t.Errorf("first child flag = %q, want client_uncertain", got)
	}
	if got := ifRule.Condition.Children[1].Phrase; got != "i don't know" {
		t.Errorf("second child phrase = %q, want %q", got, "i don't know")
	}

	sit := doc.Rules[3]
	if len(sit.Cues) != 2 {
		t.Fatalf("S01 cues = %d, want 2", len(sit.Cues))
	}
	if sit.Cues[0].Phrase != "budget" {
		t.Errorf("S01 cue[0].Phrase = %q, want budget", sit.Cues[0].Phrase)
	}
	if sit.Cues[1].Flag != "budget_constrained" {
		t.Errorf("S01 cue[1].Flag = %q, want budget_constrained", sit.Cues[1].Flag)
	}
}

func TestParseBytesRecordsLocations(t *testing.T) {
	doc, err := NewParser().ParseBytes([]byte(validCatalogYAML), "test.yaml")
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}

	for _, rule := range doc.Rules {
		if rule.Location.File != "test.yaml" {
			t.Errorf("rule %s location file = %q, want test.yaml", rule.ID, rule.Location.File)
		}
		if rule.Location.Line == 0 {
			t.Errorf("rule %s has no source line", rule.ID)
		}
	}

	// Rules appear in declaration order, so their lines must increase.
	for i := 1; i < len(doc.Rules); i++ {
		if doc.Rules[i].Location.Line <= doc.Rules[i-1].Location.Line {
			t.Errorf("rule %s line %d not after rule %s line %d",
				doc.Rules[i].ID, doc.Rules[i].Location.Line,
				doc.Rules[i-1].ID, doc.Rules[i-1].Location.Line)
		}
	}
}

func TestParseBytesSyntaxError(t *testing.T) {
	_, err := NewParser().ParseBytes([]byte("rules:\n  - id: [unclosed"), "bad.yaml")
	if err == nil {
		t.Fatal("ParseBytes() succeeded on malformed YAML")
	}

	var rclErr *rclErrors.Error
	if !errors.As(err, &rclErr) {
		t.Fatalf("error type = %T, want *errors.Error", err)
	}
	if rclErr.Type != rclErrors.ErrorTypeSyntax {
		t.Errorf("error type = %q, want syntax", rclErr.Type)
	}
}

func TestParseBytesStructuralErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{
			name: "condition with multiple kinds",
			yaml: `rules:
  - id: IF01
    category: IF
    action: a
    condition:
      phrase: budget
      flag: budget_constrained
`,
			wantMsg: "multiple kinds",
		},
		{
			name: "unknown condition key",
			yaml: `rules:
  - id: IF01
    category: IF
    action: a
    condition:
      regex: ".*"
`,
			wantMsg: "unknown condition key",
		},
		{
			name: "empty combinator",
			yaml: `rules:
  - id: IF01
    category: IF
    action: a
    condition:
      all: []
`,
			wantMsg: "at least one sub-condition",
		},
		{
			name: "value on non-flag condition",
			yaml: `rules:
  - id: IF01
    category: IF
    action: a
    condition:
      phrase: budget
      value: high
`,
			wantMsg: "only valid on flag conditions",
		},
		{
			name: "cue with both phrase and flag",
			yaml: `rules:
  - id: S01
    category: SITUATIONAL
    action: a
    cues:
      - phrase: budget
        flag: budget_constrained
`,
			wantMsg: "cannot declare both",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().ParseBytes([]byte(tt.yaml), "test.yaml")
			if err == nil {
				t.Fatal("ParseBytes() succeeded, want structural error")
			}

			var list *rclErrors.ErrorList
			if !errors.As(err, &list) {
				t.Fatalf("error type = %T, want *errors.ErrorList", err)
			}
			if !list.HasErrorType(rclErrors.ErrorTypeStructural) {
				t.Errorf("no structural error in list: %v", err)
			}

			first := list.FirstOfType(rclErrors.ErrorTypeStructural)
			if !strings.Contains(first.Message, tt.wantMsg) {
				t.Errorf("message %q does not contain %q", first.Message, tt.wantMsg)
			}
		})
	}
}

func TestParseBytesMaxDepth(t *testing.T) {
	deep := `rules:
  - id: IF01
    category: IF
    action: a
    condition:
      not:
        - not:
            - not:
                - phrase: budget
`

	if _, err := NewParser().ParseBytes([]byte(deep), "test.yaml"); err != nil {
		t.Fatalf("depth 4 rejected under the default limit: %v", err)
	}

	_, err := NewParser().WithMaxDepth(2).ParseBytes([]byte(deep), "test.yaml")
	if err == nil {
		t.Fatal("ParseBytes() succeeded beyond the configured depth limit")
	}

	var list *rclErrors.ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("error type = %T, want *errors.ErrorList", err)
	}
	first := list.FirstOfType(rclErrors.ErrorTypeStructural)
	if first == nil || !strings.Contains(first.Message, "maximum depth") {
		t.Errorf("expected a depth error, got %v", err)
	}
}

func TestParseBytesMaxFileSize(t *testing.T) {
	_, err := NewParser().WithMaxFileSize(8).ParseBytes([]byte(validCatalogYAML), "big.yaml")
	if err == nil {
		t.Fatal("ParseBytes() succeeded beyond the size limit")
	}

	var rclErr *rclErrors.Error
	if !errors.As(err, &rclErr) || rclErr.Type != rclErrors.ErrorTypeIO {
		t.Errorf("error = %v, want io error", err)
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte(validCatalogYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := NewParser().Parse(path)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(doc.Rules) != 4 {
		t.Errorf("len(Rules) = %d, want 4", len(doc.Rules))
	}
	if doc.SourceFile != path {
		t.Errorf("SourceFile = %q, want %q", doc.SourceFile, path)
	}
}

func TestParseMissingFile(t *testing.T) {
	_, err := NewParser().Parse(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("Parse() succeeded on a missing file")
	}

	var rclErr *rclErrors.Error
	if !errors.As(err, &rclErr) || rclErr.Type != rclErrors.ErrorTypeIO {
		t.Errorf("error = %v, want io error", err)
	}
}
