package main

import (
	"context"
	"fmt"
	"strings"

	"expandev/atena/pkg/agent"
	"expandev/atena/pkg/rcl/ast"
)

// newAnalystGenerator returns the built-in deterministic generator used
// by interactive sessions. It produces an analytical response skeleton
// whose stance follows the governing rules of the turn: mandatory
// behaviors shape the opening, conditional and situational guidance is
// surfaced as explicit next steps. A production deployment replaces
// this with an LLM-backed Generator.
func newAnalystGenerator() agent.Generator {
	return agent.GeneratorFunc(func(ctx context.Context, req *agent.Request) (string, error) {
		var b strings.Builder

		subject := summarize(req.Utterance)
		if req.Topic != "" {
			fmt.Fprintf(&b, "Staying on %s: let's work through %q.", req.Topic, subject)
		} else {
			fmt.Fprintf(&b, "Let's work through %q.", subject)
		}

		var steps []string
		for _, rule := range req.Governing.Rules {
			switch rule.Category {
			case ast.CategoryIf, ast.CategorySituational:
				steps = append(steps, rule.Action)
			}
		}

		if len(steps) > 0 {
			b.WriteString("\nFor this turn I will also:")
			for _, step := range steps {
				fmt.Fprintf(&b, "\n  - %s", step)
			}
		}

		return b.String(), nil
	})
}

// summarize trims an utterance to a short quotable subject.
func summarize(utterance string) string {
	const max = 60
	utterance = strings.TrimSpace(utterance)
	runes := []rune(utterance)
	if len(runes) <= max {
		return utterance
	}
	return string(runes[:max]) + "..."
}
