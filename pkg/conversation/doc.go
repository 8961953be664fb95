// Package conversation defines the per-turn snapshot of conversation state
// the rule engine evaluates against.
//
// A TurnContext is created once per turn from the immutable conversation
// history plus the new client utterance, and discarded after the turn's trace
// is emitted; only its contribution to the history persists into the next
// turn. Flags (client_uncertain, client_off_topic, ...) are derived by an
// external NLU/classifier stage — this package only carries them.
package conversation
