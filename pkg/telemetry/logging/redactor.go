package logging

import (
	"regexp"

	"expandev/atena/pkg/config"
)

// Redactor masks sensitive client data in logged values. Client
// utterances routinely carry contact details and account numbers, so
// any string that passes through the logger is scrubbed before it
// reaches the output.
type Redactor struct {
	patterns []*redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in redaction pattern names.
const (
	PatternEmail      = "email"
	PatternPhone      = "phone"
	PatternSSN        = "ssn"
	PatternCreditCard = "credit_card"
)

// NewRedactor creates a Redactor with the built-in patterns plus any
// custom patterns. Custom patterns that fail to compile are skipped.
func NewRedactor(customPatterns []config.RedactPattern) *Redactor {
	r := &Redactor{}
	r.addDefaultPatterns()

	for _, p := range customPatterns {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		})
	}

	return r
}

func (r *Redactor) addDefaultPatterns() {
	defaults := []struct {
		name        string
		regex       string
		replacement string
	}{
		{
			name:        PatternEmail,
			regex:       `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
			replacement: "[email-redacted]",
		},
		{
			name:        PatternPhone,
			regex:       `\+?\d{1,3}[-.\s]?\(?\d{2,3}\)?[-.\s]?\d{3,4}[-.\s]?\d{4}`,
			replacement: "[phone-redacted]",
		},
		{
			name:        PatternSSN,
			regex:       `\b\d{3}-\d{2}-\d{4}\b`,
			replacement: "[ssn-redacted]",
		},
		{
			name:        PatternCreditCard,
			regex:       `\b(?:\d[ -]?){13,16}\b`,
			replacement: "[card-redacted]",
		},
	}

	for _, d := range defaults {
		r.patterns = append(r.patterns, &redactPattern{
			name:        d.name,
			regex:       regexp.MustCompile(d.regex),
			replacement: d.replacement,
		})
	}
}

// RedactString applies every pattern to a single string.
func (r *Redactor) RedactString(s string) string {
	for _, p := range r.patterns {
		s = p.regex.ReplaceAllString(s, p.replacement)
	}
	return s
}

// RedactArgs redacts string values in an alternating key/value slice.
// Keys are left untouched so log structure stays queryable.
func (r *Redactor) RedactArgs(args ...any) []any {
	redacted := make([]any, len(args))
	for i, arg := range args {
		if i%2 == 1 {
			if s, ok := arg.(string); ok {
				redacted[i] = r.RedactString(s)
				continue
			}
		}
		redacted[i] = arg
	}
	return redacted
}
