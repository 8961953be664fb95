// Package history persists conversation transcripts so that completed
// sessions can be saved on demand and replayed later. Transcripts are
// append-only: each turn is stored with its utterance, the annotated
// response, the rule identifiers that governed the turn, and the topic
// open at the time.
package history
