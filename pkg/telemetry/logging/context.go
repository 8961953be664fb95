package logging

import (
	"context"
)

// Context keys for conversation-scoped log fields.
type contextKey string

const (
	// ConversationIDKey is the context key for conversation identifiers.
	ConversationIDKey contextKey = "conversation_id"

	// TurnSeqKey is the context key for turn sequence numbers.
	TurnSeqKey contextKey = "turn_seq"

	// TopicKey is the context key for the currently open topic.
	TopicKey contextKey = "topic"

	// CatalogKey is the context key for the active catalog name.
	CatalogKey contextKey = "catalog"
)

// WithConversationID adds a conversation ID to the context.
func WithConversationID(ctx context.Context, conversationID string) context.Context {
	return context.WithValue(ctx, ConversationIDKey, conversationID)
}

// GetConversationID retrieves the conversation ID from the context.
func GetConversationID(ctx context.Context) string {
	if id, ok := ctx.Value(ConversationIDKey).(string); ok {
		return id
	}
	return ""
}

// WithTurnSeq adds a turn sequence number to the context.
func WithTurnSeq(ctx context.Context, seq int) context.Context {
	return context.WithValue(ctx, TurnSeqKey, seq)
}

// GetTurnSeq retrieves the turn sequence number from the context.
// It returns 0 when no turn is recorded on the context.
func GetTurnSeq(ctx context.Context) int {
	if seq, ok := ctx.Value(TurnSeqKey).(int); ok {
		return seq
	}
	return 0
}

// WithTopic adds the currently open topic to the context.
func WithTopic(ctx context.Context, topic string) context.Context {
	return context.WithValue(ctx, TopicKey, topic)
}

// GetTopic retrieves the open topic from the context.
func GetTopic(ctx context.Context) string {
	if topic, ok := ctx.Value(TopicKey).(string); ok {
		return topic
	}
	return ""
}

// WithCatalog adds the active catalog name to the context.
func WithCatalog(ctx context.Context, catalog string) context.Context {
	return context.WithValue(ctx, CatalogKey, catalog)
}

// GetCatalog retrieves the active catalog name from the context.
func GetCatalog(ctx context.Context) string {
	if catalog, ok := ctx.Value(CatalogKey).(string); ok {
		return catalog
	}
	return ""
}

// extractContextFields collects the known conversation fields from ctx
// as alternating key/value pairs suitable for slog.
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if id := GetConversationID(ctx); id != "" {
		fields = append(fields, string(ConversationIDKey), id)
	}
	if seq := GetTurnSeq(ctx); seq > 0 {
		fields = append(fields, string(TurnSeqKey), seq)
	}
	if topic := GetTopic(ctx); topic != "" {
		fields = append(fields, string(TopicKey), topic)
	}
	if catalog := GetCatalog(ctx); catalog != "" {
		fields = append(fields, string(CatalogKey), catalog)
	}

	return fields
}
