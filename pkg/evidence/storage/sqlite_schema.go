package storage

// schemaSQL creates the turn-record table and its query indexes.
// Matches and flags are stored as JSON columns: they are audit payload, not
// filter targets, except for the governing set which gets its own join table
// for rule-id queries.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS turn_records (
    id               TEXT PRIMARY KEY,
    conversation_id  TEXT NOT NULL,
    turn_seq         INTEGER NOT NULL,
    evaluated_time   TIMESTAMP NOT NULL,
    recorded_time    TIMESTAMP NOT NULL,
    utterance_hash   TEXT,
    utterance_excerpt TEXT,
    flags            TEXT,
    topic            TEXT,
    catalog_name     TEXT,
    catalog_version  TEXT,
    matches          TEXT,
    governing_set    TEXT,
    trace            TEXT,
    response_hash    TEXT,
    evaluation_ns    INTEGER,
    error            TEXT
);

CREATE INDEX IF NOT EXISTS idx_turn_records_conversation
    ON turn_records(conversation_id, turn_seq);

CREATE INDEX IF NOT EXISTS idx_turn_records_recorded_time
    ON turn_records(recorded_time);

CREATE TABLE IF NOT EXISTS turn_record_rules (
    record_id TEXT NOT NULL REFERENCES turn_records(id) ON DELETE CASCADE,
    rule_id   TEXT NOT NULL,
    PRIMARY KEY (record_id, rule_id)
);

CREATE INDEX IF NOT EXISTS idx_turn_record_rules_rule
    ON turn_record_rules(rule_id);
`
