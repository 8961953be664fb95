package trace

import (
	"fmt"
	"strings"

	"expandev/atena/pkg/rules/engine"
)

const (
	prefix = "[Applied Rules: "
	suffix = "]"
)

// EmptyRuleSetError indicates Render was called with zero rules. Under a
// well-formed catalog this cannot happen (ALWAYS rules guarantee a non-empty
// governing set), so it signals a broken invariant, not a user condition.
type EmptyRuleSetError struct{}

// Error returns the error message.
func (e *EmptyRuleSetError) Error() string {
	return "cannot render trace for an empty governing set"
}

// Render produces the applied-rules annotation for a governing set:
// ids in set order, comma-space separated, no trailing punctuation beyond
// the closing bracket.
func Render(set *engine.GoverningSet) (string, error) {
	if set == nil || set.Len() == 0 {
		return "", &EmptyRuleSetError{}
	}
	return prefix + strings.Join(set.IDs(), ", ") + suffix, nil
}

// Append renders the governing set and appends the annotation to the
// response text, separated by a single newline.
func Append(response string, set *engine.GoverningSet) (string, error) {
	annotation, err := Render(set)
	if err != nil {
		return "", err
	}
	return response + "\n" + annotation, nil
}

// Parse extracts the rule ids from the trailing applied-rules annotation of
// a response. It fails if the response does not end with a well-formed
// annotation.
func Parse(response string) ([]string, error) {
	trimmed := strings.TrimRight(response, " \t")
	if !strings.HasSuffix(trimmed, suffix) {
		return nil, fmt.Errorf("response does not end with an applied-rules annotation")
	}

	idx := strings.LastIndex(trimmed, prefix)
	if idx < 0 {
		return nil, fmt.Errorf("response does not contain an applied-rules annotation")
	}

	annotation := trimmed[idx:]
	body := strings.TrimSuffix(strings.TrimPrefix(annotation, prefix), suffix)
	if body == "" {
		return nil, fmt.Errorf("applied-rules annotation is empty")
	}

	parts := strings.Split(body, ", ")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part != strings.TrimSpace(part) {
			return nil, fmt.Errorf("malformed applied-rules annotation %q", annotation)
		}
		ids = append(ids, part)
	}

	return ids, nil
}

// Verify checks that the response's trailing annotation lists exactly the
// governing set's ids in the governing set's order.
func Verify(response string, set *engine.GoverningSet) error {
	ids, err := Parse(response)
	if err != nil {
		return err
	}

	want := set.IDs()
	if len(ids) != len(want) {
		return fmt.Errorf("annotation lists %d rules, governing set has %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			return fmt.Errorf("annotation rule %d is %q, governing set has %q", i+1, ids[i], want[i])
		}
	}
	return nil
}
