package evidence

import (
	"context"
	"time"
)

// TurnRecord is the complete audit trail for a single conversational turn:
// what the client said (hashed plus a bounded excerpt), which rules matched,
// which governed the response, and the annotation that was emitted.
type TurnRecord struct {
	// Identity
	ID             string `json:"id"`              // UUID v4
	ConversationID string `json:"conversation_id"` // Owning conversation
	TurnSeq        int    `json:"turn_seq"`        // 1-based turn number

	// Timestamps
	EvaluatedTime time.Time `json:"evaluated_time"` // When the turn was evaluated
	RecordedTime  time.Time `json:"recorded_time"`  // When the record was written

	// Turn input
	UtteranceHash    string            `json:"utterance_hash"`    // SHA-256 of the utterance
	UtteranceExcerpt string            `json:"utterance_excerpt"` // First N chars
	Flags            map[string]string `json:"flags"`             // Classifier flags
	Topic            string            `json:"topic"`             // Current topic, if any

	// Catalog identity
	CatalogName    string `json:"catalog_name"`
	CatalogVersion string `json:"catalog_version"`

	// Evaluation outcome
	Matches      []RuleMatchRecord `json:"matches"`       // Per-rule breakdown
	GoverningSet []string          `json:"governing_set"` // Final ids in trace order
	Trace        string            `json:"trace"`         // Emitted annotation

	// Response
	ResponseHash string `json:"response_hash"` // SHA-256 of the final response

	// Evaluation metadata
	EvaluationTime time.Duration `json:"evaluation_time"`
	Error          string        `json:"error,omitempty"` // Set when the turn failed
}

// RuleMatchRecord captures one rule's evaluation outcome for the turn.
type RuleMatchRecord struct {
	RuleID   string  `json:"rule_id"`
	Category string  `json:"category"`
	Matched  bool    `json:"matched"`
	Strength float64 `json:"strength"`
	Included bool    `json:"included"` // Whether it reached the governing set
}

// Query defines filter parameters for querying turn records.
type Query struct {
	ConversationID string     `json:"conversation_id,omitempty"` // Filter by conversation
	RuleID         string     `json:"rule_id,omitempty"`         // Records whose governing set includes the rule
	StartTime      *time.Time `json:"start_time,omitempty"`      // Inclusive start
	EndTime        *time.Time `json:"end_time,omitempty"`        // Inclusive end
	HasError       *bool      `json:"has_error,omitempty"`       // Failed turns only (or successful only)

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Storage is the persistence interface for turn records.
type Storage interface {
	// Store persists a turn record.
	Store(ctx context.Context, record *TurnRecord) error

	// Query retrieves records matching the query, newest first.
	Query(ctx context.Context, query *Query) ([]*TurnRecord, error)

	// Count returns the number of records matching the query.
	Count(ctx context.Context, query *Query) (int, error)

	// DeleteOlderThan removes records recorded before the cutoff and
	// returns the number deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases storage resources.
	Close() error
}
