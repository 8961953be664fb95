package conversation

import "time"

// Flags is a mapping of named conversation-state signals derived by an
// external classifier stage. Boolean signals are stored as "true"; enumerated
// signals carry their value.
type Flags map[string]string

// IsSet returns true if the named flag is present and boolean true.
func (f Flags) IsSet(name string) bool {
	return f[name] == "true"
}

// Equals returns true if the named flag carries the given value.
// An empty expected value degrades to a boolean-true check.
func (f Flags) Equals(name, value string) bool {
	if value == "" {
		return f.IsSet(name)
	}
	return f[name] == value
}

// Clone returns a copy of the flag map.
func (f Flags) Clone() Flags {
	out := make(Flags, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Turn is one finalized client-utterance/agent-response exchange.
// History entries are append-only for the lifetime of the conversation.
type Turn struct {
	Utterance      string    // Client input
	Response       string    // Agent response (including the appended trace)
	AppliedRuleIDs []string  // Governing set ids of this turn, in trace order
	Topic          string    // Topic that was current when the turn ran
	At             time.Time // When the turn was finalized
}

// SatisfiedSet indexes (ruleID, topic) pairs for IF-rule de-duplication.
// A pair enters the set when its topic closes; an IF rule that matches again
// under the same reopened topic is suppressed once per topic lifecycle.
type SatisfiedSet map[string]struct{}

func satisfiedKey(ruleID, topic string) string {
	return ruleID + "\x00" + topic
}

// Mark records that ruleID was satisfied under topic.
func (s SatisfiedSet) Mark(ruleID, topic string) {
	s[satisfiedKey(ruleID, topic)] = struct{}{}
}

// Has returns true if ruleID was satisfied under topic.
func (s SatisfiedSet) Has(ruleID, topic string) bool {
	_, ok := s[satisfiedKey(ruleID, topic)]
	return ok
}

// Clone returns a copy of the satisfied set.
func (s SatisfiedSet) Clone() SatisfiedSet {
	out := make(SatisfiedSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// TurnContext is the evaluation input for a single conversational turn.
// It is a read-only snapshot; the engine never mutates it.
type TurnContext struct {
	// ConversationID identifies the owning conversation.
	ConversationID string

	// TurnSeq is the 1-based sequence number of this turn.
	TurnSeq int

	// Utterance is the latest client input.
	Utterance string

	// History is the ordered sequence of prior finalized turns.
	History []Turn

	// OpenTopics is the stack of topics not yet closed; the last entry is
	// the current topic.
	OpenTopics []string

	// ClosedTopics lists topics closed in prior turns, in closing order.
	ClosedTopics []string

	// Flags carries externally derived conversation-state signals.
	Flags Flags

	// Satisfied indexes IF rules already satisfied by closed topics.
	Satisfied SatisfiedSet
}

// CurrentTopic returns the topic at the top of the open stack, or "" if no
// topic is open.
func (tc *TurnContext) CurrentTopic() string {
	if len(tc.OpenTopics) == 0 {
		return ""
	}
	return tc.OpenTopics[len(tc.OpenTopics)-1]
}

// TopicClosed returns true if the named topic was closed in a prior turn.
// An empty name refers to the current topic.
func (tc *TurnContext) TopicClosed(topic string) bool {
	if topic == "" {
		topic = tc.CurrentTopic()
		if topic == "" {
			return false
		}
	}
	for _, closed := range tc.ClosedTopics {
		if closed == topic {
			return true
		}
	}
	return false
}

// TurnCount returns the number of finalized turns in the history.
func (tc *TurnContext) TurnCount() int {
	return len(tc.History)
}
