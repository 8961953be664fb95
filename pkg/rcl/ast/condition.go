package ast

// ConditionType represents the type of a condition expression.
type ConditionType string

const (
	// ConditionTypePhrase matches a trigger phrase in the client utterance
	// (case-insensitive, whole-phrase containment).
	ConditionTypePhrase ConditionType = "phrase"

	// ConditionTypeFlag matches a named conversation-state flag. Flags are
	// derived by an external NLU/classifier stage; the engine only reads them.
	ConditionTypeFlag ConditionType = "flag"

	// ConditionTypeTopicClosed matches when a topic was closed in a prior
	// turn of the conversation.
	ConditionTypeTopicClosed ConditionType = "topic_closed"

	ConditionTypeAll ConditionType = "all" // AND of children
	ConditionTypeAny ConditionType = "any" // OR of children
	ConditionTypeNot ConditionType = "not" // NOT of children
)

// ConditionNode represents a trigger condition in the AST.
// Leaf conditions test a single signal (phrase, flag, topic_closed); logical
// conditions (all/any/not) combine children. This mirrors the AND/OR
// combinator the catalog schema declares per rule.
type ConditionNode struct {
	Type ConditionType

	// Phrase is the trigger phrase (for phrase conditions).
	Phrase string

	// Flag is the flag name and Value its expected value (for flag
	// conditions). An empty Value means the flag must be boolean true.
	Flag  string
	Value string

	// Topic is the topic name (for topic_closed conditions). Empty means
	// the conversation's current topic.
	Topic string

	// Children are the sub-conditions (for all/any/not).
	Children []*ConditionNode

	Location Location
}

// IsLeaf returns true if this condition tests a single signal.
func (c *ConditionNode) IsLeaf() bool {
	switch c.Type {
	case ConditionTypePhrase, ConditionTypeFlag, ConditionTypeTopicClosed:
		return true
	}
	return false
}

// IsLogical returns true if this is a logical combinator (all/any/not).
func (c *ConditionNode) IsLogical() bool {
	switch c.Type {
	case ConditionTypeAll, ConditionTypeAny, ConditionTypeNot:
		return true
	}
	return false
}

// Depth returns the maximum nesting depth of the condition tree.
func (c *ConditionNode) Depth() int {
	if len(c.Children) == 0 {
		return 1
	}
	max := 0
	for _, child := range c.Children {
		if d := child.Depth(); d > max {
			max = d
		}
	}
	return max + 1
}

// Cue is a single soft signal for a SITUATIONAL rule.
// A cue is either a trigger phrase or a context flag; the situational scorer
// grades a rule by the fraction of its cues present in the turn context.
type Cue struct {
	Phrase string // Trigger phrase cue (case-insensitive, whole-phrase)
	Flag   string // Context flag cue (boolean true, or Value if set)
	Value  string // Expected flag value ("" means boolean true)

	Location Location
}

// IsPhrase returns true if the cue tests the utterance.
func (c *Cue) IsPhrase() bool {
	return c.Phrase != ""
}
