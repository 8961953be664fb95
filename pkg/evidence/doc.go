// Package evidence defines the audit trail for rule-engine turns.
//
// Every evaluated turn produces a TurnRecord: the utterance hash, the
// externally derived flags, the per-rule match breakdown, the final governing
// set and the emitted trace. Records are written asynchronously by the
// recorder subpackage and persisted by a pluggable storage backend (in-memory
// for tests, SQLite for production). The retention subpackage prunes old
// records on a cron schedule.
package evidence
