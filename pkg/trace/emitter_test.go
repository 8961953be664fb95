package trace

import (
	"errors"
	"reflect"
	"testing"

	"expandev/atena/pkg/rcl/ast"
	"expandev/atena/pkg/rules/engine"
)

func governingSet(ids ...string) *engine.GoverningSet {
	set := &engine.GoverningSet{}
	for _, id := range ids {
		set.Rules = append(set.Rules, engine.GoverningRule{
			ID:       id,
			Category: ast.CategoryAlways,
			Strength: 1.0,
		})
	}
	return set
}

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		want    string
		wantErr bool
	}{
		{"single rule", []string{"AL01"}, "[Applied Rules: AL01]", false},
		{"multiple rules in order", []string{"AL01", "N06", "IF02"}, "[Applied Rules: AL01, N06, IF02]", false},
		{"empty set", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(governingSet(tt.ids...))
			if tt.wantErr {
				var empty *EmptyRuleSetError
				if !errors.As(err, &empty) {
					t.Fatalf("Render() error = %v, want EmptyRuleSetError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderNilSet(t *testing.T) {
	var empty *EmptyRuleSetError
	if _, err := Render(nil); !errors.As(err, &empty) {
		t.Errorf("Render(nil) error = %v, want EmptyRuleSetError", err)
	}
}

func TestAppend(t *testing.T) {
	got, err := Append("Here is my analysis.", governingSet("AL01", "S04"))
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	want := "Here is my analysis.\n[Applied Rules: AL01, S04]"
	if got != want {
		t.Errorf("Append() = %q, want %q", got, want)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []string
		wantErr  bool
	}{
		{
			name:     "round trip",
			response: "Analysis text.\n[Applied Rules: AL01, N06, IF02]",
			want:     []string{"AL01", "N06", "IF02"},
		},
		{
			name:     "annotation only",
			response: "[Applied Rules: AL01]",
			want:     []string{"AL01"},
		},
		{
			name:     "trailing whitespace tolerated",
			response: "Text.\n[Applied Rules: AL01]  ",
			want:     []string{"AL01"},
		},
		{
			name:     "no annotation",
			response: "Just text with no trace.",
			wantErr:  true,
		},
		{
			name:     "empty annotation body",
			response: "Text.\n[Applied Rules: ]",
			wantErr:  true,
		},
		{
			name:     "malformed separator",
			response: "Text.\n[Applied Rules: AL01 , N06]",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.response)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse() = %v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	set := governingSet("AL01", "N06")

	response, err := Append("Analysis.", set)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := Verify(response, set); err != nil {
		t.Errorf("Verify() round trip error = %v", err)
	}

	if err := Verify("Analysis.\n[Applied Rules: AL01]", set); err == nil {
		t.Error("Verify() with missing rule = nil, want error")
	}
	if err := Verify("Analysis.\n[Applied Rules: N06, AL01]", set); err == nil {
		t.Error("Verify() with reordered rules = nil, want error")
	}
}
