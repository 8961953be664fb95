package agent

import (
	"slices"
	"sync"
	"time"

	"expandev/atena/pkg/conversation"
)

// State is the lifecycle state of a conversation.
type State int

const (
	// StateActive accepts new turns.
	StateActive State = iota

	// StateEnded no longer accepts turns; the transcript is final.
	StateEnded

	// StateError marks a conversation poisoned by an unresolvable
	// evaluation failure, such as a rule conflict.
	StateError
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Conversation is one client session. All mutation goes through its
// mutex so concurrent turn submissions for the same conversation are
// serialized; distinct conversations never contend.
type Conversation struct {
	id string

	mu           sync.Mutex
	state        State
	history      []conversation.Turn
	openTopics   []string
	closedTopics []string
	flags        conversation.Flags
	satisfied    conversation.SatisfiedSet

	// ifApplied tracks IF rules applied while each topic was current,
	// so that closing the topic can mark them satisfied.
	ifApplied map[string]map[string]struct{}

	startedAt time.Time
}

func newConversation(id string) *Conversation {
	return &Conversation{
		id:        id,
		state:     StateActive,
		flags:     make(conversation.Flags),
		satisfied: make(conversation.SatisfiedSet),
		ifApplied: make(map[string]map[string]struct{}),
		startedAt: time.Now(),
	}
}

// ID returns the conversation identifier.
func (c *Conversation) ID() string {
	return c.id
}

// State returns the current lifecycle state.
func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// History returns a copy of the finalized turns.
func (c *Conversation) History() []conversation.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.history)
}

// OpenTopics returns a copy of the open topic stack, oldest first.
func (c *Conversation) OpenTopics() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.openTopics)
}

// ClosedTopics returns a copy of the closed topics in closing order.
func (c *Conversation) ClosedTopics() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.closedTopics)
}

// SetFlag sets a named conversation flag. Boolean signals use the
// value "true".
func (c *Conversation) SetFlag(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flags[name] = value
}

// ClearFlag removes a named conversation flag.
func (c *Conversation) ClearFlag(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.flags, name)
}

// Flags returns a copy of the current flags.
func (c *Conversation) Flags() conversation.Flags {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flags.Clone()
}

// OpenTopic pushes a topic onto the open stack, making it current.
// Reopening a previously closed topic removes it from the closed list,
// so topic_closed conditions stop holding for it. Opening a topic that
// is already open is an error.
func (c *Conversation) OpenTopic(topic string) error {
	if topic == "" {
		return &TopicError{Topic: topic, Message: "topic name cannot be empty"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if slices.Contains(c.openTopics, topic) {
		return &TopicError{Topic: topic, Message: "already open"}
	}

	if i := slices.Index(c.closedTopics, topic); i >= 0 {
		c.closedTopics = slices.Delete(c.closedTopics, i, i+1)
	}
	c.openTopics = append(c.openTopics, topic)

	return nil
}

// CloseTopic closes an open topic. IF rules that were applied while
// the topic was current become satisfied for it, suppressing them if
// the topic is later revisited. Closing a topic that is not open is an
// error.
func (c *Conversation) CloseTopic(topic string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.Index(c.openTopics, topic)
	if i < 0 {
		return &TopicError{Topic: topic, Message: "not open"}
	}

	c.openTopics = slices.Delete(c.openTopics, i, i+1)
	c.closedTopics = append(c.closedTopics, topic)

	for ruleID := range c.ifApplied[topic] {
		c.satisfied.Mark(ruleID, topic)
	}
	delete(c.ifApplied, topic)

	return nil
}

// snapshot builds the read-only evaluation input for the next turn.
// Callers must hold c.mu.
func (c *Conversation) snapshot(utterance string) *conversation.TurnContext {
	return &conversation.TurnContext{
		ConversationID: c.id,
		TurnSeq:        len(c.history) + 1,
		Utterance:      utterance,
		History:        slices.Clone(c.history),
		OpenTopics:     slices.Clone(c.openTopics),
		ClosedTopics:   slices.Clone(c.closedTopics),
		Flags:          c.flags.Clone(),
		Satisfied:      c.satisfied.Clone(),
	}
}

// recordIFApplied remembers that an IF rule governed a turn while the
// given topic was current. Callers must hold c.mu.
func (c *Conversation) recordIFApplied(topic, ruleID string) {
	if c.ifApplied[topic] == nil {
		c.ifApplied[topic] = make(map[string]struct{})
	}
	c.ifApplied[topic][ruleID] = struct{}{}
}
