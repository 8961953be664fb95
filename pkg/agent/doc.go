// Package agent manages conversation sessions for the business
// analysis agent. Each conversation carries its own history, topic
// stack, flags, and satisfied-rule index; the agent serializes turns
// per conversation, evaluates each utterance against the rule engine,
// asks the response generator to honor the governing set, and appends
// the applied-rules trace before the turn is finalized.
package agent
