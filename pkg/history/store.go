package history

import (
	"context"
	"time"

	"expandev/atena/pkg/conversation"
)

// SavedTurn is one persisted transcript row.
type SavedTurn struct {
	ConversationID string    `json:"conversation_id"`
	Seq            int       `json:"seq"`
	Utterance      string    `json:"utterance"`
	Response       string    `json:"response"`
	AppliedRuleIDs []string  `json:"applied_rule_ids,omitempty"`
	Topic          string    `json:"topic,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConversationSummary describes one saved conversation.
type ConversationSummary struct {
	ConversationID string    `json:"conversation_id"`
	TurnCount      int       `json:"turn_count"`
	FirstTurnAt    time.Time `json:"first_turn_at"`
	LastTurnAt     time.Time `json:"last_turn_at"`
}

// Store persists and retrieves conversation transcripts.
type Store interface {
	// SaveTranscript writes the full transcript for a conversation.
	// Saving the same conversation again replaces its prior transcript.
	SaveTranscript(ctx context.Context, conversationID string, turns []conversation.Turn) error

	// LoadTranscript returns all saved turns for a conversation in
	// sequence order. A conversation with no saved turns returns an
	// empty slice, not an error.
	LoadTranscript(ctx context.Context, conversationID string) ([]SavedTurn, error)

	// ListConversations returns summaries of all saved conversations,
	// most recently active first.
	ListConversations(ctx context.Context) ([]ConversationSummary, error)

	// Close releases the underlying resources.
	Close() error
}
