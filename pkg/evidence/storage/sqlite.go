package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"expandev/atena/pkg/evidence"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig(path string) *SQLiteConfig {
	return &SQLiteConfig{
		Path:         path,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
	}
}

// SQLiteStorage implements the Storage interface with a SQLite database.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens (or creates) the database and applies the schema.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil || config.Path == "" {
		return nil, evidence.NewStorageError("sqlite", "open", fmt.Errorf("database path is required"))
	}

	dsn := config.Path
	if config.WALMode {
		dsn += "?_journal_mode=WAL&_foreign_keys=on"
	} else {
		dsn += "?_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: slog.Default().With("component", "evidence.sqlite"),
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, evidence.NewStorageError("sqlite", "migrate", err)
	}

	s.logger.Info("sqlite evidence storage opened", "path", config.Path)

	return s, nil
}

// Store persists a turn record.
func (s *SQLiteStorage) Store(ctx context.Context, record *evidence.TurnRecord) error {
	flags, err := json.Marshal(record.Flags)
	if err != nil {
		return evidence.NewStorageError("sqlite", "store", err)
	}
	matches, err := json.Marshal(record.Matches)
	if err != nil {
		return evidence.NewStorageError("sqlite", "store", err)
	}
	governing, err := json.Marshal(record.GoverningSet)
	if err != nil {
		return evidence.NewStorageError("sqlite", "store", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return evidence.NewStorageError("sqlite", "store", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO turn_records (
			id, conversation_id, turn_seq, evaluated_time, recorded_time,
			utterance_hash, utterance_excerpt, flags, topic,
			catalog_name, catalog_version, matches, governing_set,
			trace, response_hash, evaluation_ns, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.ConversationID, record.TurnSeq,
		record.EvaluatedTime, record.RecordedTime,
		record.UtteranceHash, record.UtteranceExcerpt, string(flags), record.Topic,
		record.CatalogName, record.CatalogVersion, string(matches), string(governing),
		record.Trace, record.ResponseHash, record.EvaluationTime.Nanoseconds(), record.Error,
	)
	if err != nil {
		return evidence.NewStorageError("sqlite", "store", err)
	}

	for _, ruleID := range record.GoverningSet {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO turn_record_rules (record_id, rule_id) VALUES (?, ?)`,
			record.ID, ruleID,
		); err != nil {
			return evidence.NewStorageError("sqlite", "store", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return evidence.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Query retrieves records matching the query, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, query *evidence.Query) ([]*evidence.TurnRecord, error) {
	where, args := buildWhere(query)

	sqlQuery := `
		SELECT id, conversation_id, turn_seq, evaluated_time, recorded_time,
		       utterance_hash, utterance_excerpt, flags, topic,
		       catalog_name, catalog_version, matches, governing_set,
		       trace, response_hash, evaluation_ns, error
		FROM turn_records` + where + `
		ORDER BY recorded_time DESC`

	if query != nil && query.Limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d OFFSET %d", query.Limit, query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	var results []*evidence.TurnRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, evidence.NewStorageError("sqlite", "query", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, evidence.NewStorageError("sqlite", "query", err)
	}

	return results, nil
}

// Count returns the number of records matching the query.
func (s *SQLiteStorage) Count(ctx context.Context, query *evidence.Query) (int, error) {
	where, args := buildWhere(query)

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM turn_records`+where, args...).Scan(&count)
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// DeleteOlderThan removes records recorded before the cutoff.
func (s *SQLiteStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM turn_records WHERE recorded_time < ?`, cutoff)
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete", err)
	}

	return deleted, nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// buildWhere assembles the WHERE clause for a query.
func buildWhere(query *evidence.Query) (string, []interface{}) {
	if query == nil {
		return "", nil
	}

	var clauses []string
	var args []interface{}

	if query.ConversationID != "" {
		clauses = append(clauses, "conversation_id = ?")
		args = append(args, query.ConversationID)
	}
	if query.RuleID != "" {
		clauses = append(clauses, "id IN (SELECT record_id FROM turn_record_rules WHERE rule_id = ?)")
		args = append(args, query.RuleID)
	}
	if query.StartTime != nil {
		clauses = append(clauses, "recorded_time >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		clauses = append(clauses, "recorded_time <= ?")
		args = append(args, *query.EndTime)
	}
	if query.HasError != nil {
		if *query.HasError {
			clauses = append(clauses, "error != ''")
		} else {
			clauses = append(clauses, "error = ''")
		}
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// scanRecord reads one row into a TurnRecord.
func scanRecord(rows *sql.Rows) (*evidence.TurnRecord, error) {
	var record evidence.TurnRecord
	var flags, matches, governing string
	var evalNS int64

	err := rows.Scan(
		&record.ID, &record.ConversationID, &record.TurnSeq,
		&record.EvaluatedTime, &record.RecordedTime,
		&record.UtteranceHash, &record.UtteranceExcerpt, &flags, &record.Topic,
		&record.CatalogName, &record.CatalogVersion, &matches, &governing,
		&record.Trace, &record.ResponseHash, &evalNS, &record.Error,
	)
	if err != nil {
		return nil, err
	}

	record.EvaluationTime = time.Duration(evalNS)

	if flags != "" {
		if err := json.Unmarshal([]byte(flags), &record.Flags); err != nil {
			return nil, err
		}
	}
	if matches != "" {
		if err := json.Unmarshal([]byte(matches), &record.Matches); err != nil {
			return nil, err
		}
	}
	if governing != "" {
		if err := json.Unmarshal([]byte(governing), &record.GoverningSet); err != nil {
			return nil, err
		}
	}

	return &record, nil
}
