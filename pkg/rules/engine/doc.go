// Package engine implements the conversation rule engine.
//
// Each conversational turn, the engine evaluates the frozen rule catalog
// against a turn context (utterance, history, topics, externally derived
// flags), resolves category precedence and conflicts, and produces the
// ordered governing set of rules that constrain the turn's response.
//
// Evaluation is a pure function of (catalog, context): the engine holds no
// per-conversation state, so independent conversations may evaluate in
// parallel. Within one conversation the caller must serialize turns, because
// each turn context derives from the previous turn's finalized history.
//
// Category semantics:
//
//   - ALWAYS rules match unconditionally every turn.
//   - NEVER rules are standing prohibitions. They are not input-triggered;
//     they are always included as guard-rails for the response generator.
//   - IF rules match when their structured condition holds against the
//     context's flags, utterance trigger phrases, or history.
//   - SITUATIONAL rules are graded in [0,1] by a pluggable scorer; only the
//     strongest few (the situational budget) reach the governing set.
//
// All errors are authoring or invariant defects. The engine fails fast and
// loud; there is no retry or degradation path.
package engine
