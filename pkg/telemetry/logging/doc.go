// Package logging provides structured logging for the agent, built on
// log/slog. It adds two things over the standard handlers: extraction
// of conversation-scoped fields from a context.Context, and redaction
// of sensitive client data before utterance text reaches the logs.
package logging
