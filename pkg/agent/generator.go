package agent

import (
	"context"

	"expandev/atena/pkg/conversation"
	"expandev/atena/pkg/rules/engine"
)

// Request carries everything a response generator needs for one turn.
type Request struct {
	// ConversationID identifies the owning conversation.
	ConversationID string

	// Utterance is the client input for this turn.
	Utterance string

	// History is the ordered sequence of prior finalized turns.
	History []conversation.Turn

	// Topic is the currently open topic, or "" when none is open.
	Topic string

	// Governing is the resolved rule set the response must honor. The
	// rule actions are behavioral directives for the generated text.
	Governing *engine.GoverningSet
}

// Generator produces the agent's response text for a turn. The
// returned text must not include the applied-rules trace; the agent
// appends it after generation.
type Generator interface {
	Generate(ctx context.Context, req *Request) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req *Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req *Request) (string, error) {
	return f(ctx, req)
}
