package agent

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the agent.
var (
	// ErrConversationEnded is returned when a turn is submitted to a
	// conversation that has already ended.
	ErrConversationEnded = errors.New("conversation has ended")

	// ErrConversationFailed is returned when a turn is submitted to a
	// conversation that entered the error state.
	ErrConversationFailed = errors.New("conversation is in error state")

	// ErrNoGenerator is returned when the agent is constructed without
	// a response generator.
	ErrNoGenerator = errors.New("no response generator configured")
)

// UnknownConversationError indicates a conversation ID the agent does
// not track.
type UnknownConversationError struct {
	ID string
}

func (e *UnknownConversationError) Error() string {
	return fmt.Sprintf("unknown conversation %q", e.ID)
}

// TopicError indicates an invalid topic transition, such as closing a
// topic that is not open.
type TopicError struct {
	Topic   string
	Message string
}

func (e *TopicError) Error() string {
	return fmt.Sprintf("topic %q: %s", e.Topic, e.Message)
}
