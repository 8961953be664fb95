package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"expandev/atena/pkg/conversation"
)

// SQLiteStore implements Store on a SQLite database file. It uses the
// pure-Go driver so transcript saving works without cgo, and WAL mode
// for concurrent read access while a save is in progress.
type SQLiteStore struct {
	db *sql.DB

	insertStmt *sql.Stmt
	deleteStmt *sql.Stmt
	loadStmt   *sql.Stmt
}

// SQLiteStoreConfig configures the transcript store.
type SQLiteStoreConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteStore opens a transcript store with default settings.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteStoreConfig{
		DBPath:      dbPath,
		BusyTimeout: 5 * time.Second,
	})
}

// NewSQLiteStoreWithConfig opens a transcript store with custom configuration.
func NewSQLiteStoreWithConfig(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS transcript_turns (
		conversation_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		utterance TEXT NOT NULL,
		response TEXT NOT NULL,
		applied_rules TEXT NOT NULL DEFAULT '[]',
		topic TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		PRIMARY KEY (conversation_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_transcript_created
		ON transcript_turns(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertStmt, err = s.db.Prepare(`
		INSERT INTO transcript_turns
			(conversation_id, seq, utterance, response, applied_rules, topic, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(
		`DELETE FROM transcript_turns WHERE conversation_id = ?`)
	if err != nil {
		return fmt.Errorf("prepare delete: %w", err)
	}

	s.loadStmt, err = s.db.Prepare(`
		SELECT seq, utterance, response, applied_rules, topic, created_at
		FROM transcript_turns
		WHERE conversation_id = ?
		ORDER BY seq ASC`)
	if err != nil {
		return fmt.Errorf("prepare load: %w", err)
	}

	return nil
}

// SaveTranscript replaces the stored transcript for a conversation
// with the given turns, all inside a single transaction.
func (s *SQLiteStore) SaveTranscript(ctx context.Context, conversationID string, turns []conversation.Turn) error {
	if conversationID == "" {
		return fmt.Errorf("conversation id cannot be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.StmtContext(ctx, s.deleteStmt).ExecContext(ctx, conversationID); err != nil {
		return fmt.Errorf("clear prior transcript: %w", err)
	}

	insert := tx.StmtContext(ctx, s.insertStmt)
	for i, turn := range turns {
		ruleIDs, err := json.Marshal(turn.AppliedRuleIDs)
		if err != nil {
			return fmt.Errorf("marshal applied rules: %w", err)
		}

		at := turn.At
		if at.IsZero() {
			at = time.Now()
		}

		if _, err := insert.ExecContext(ctx,
			conversationID, i+1, turn.Utterance, turn.Response,
			string(ruleIDs), turn.Topic, at.Unix(),
		); err != nil {
			return fmt.Errorf("insert turn %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transcript: %w", err)
	}

	return nil
}

// LoadTranscript returns the saved turns for a conversation in order.
func (s *SQLiteStore) LoadTranscript(ctx context.Context, conversationID string) ([]SavedTurn, error) {
	rows, err := s.loadStmt.QueryContext(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	turns := []SavedTurn{}
	for rows.Next() {
		var turn SavedTurn
		var ruleIDs string
		var createdAt int64

		if err := rows.Scan(&turn.Seq, &turn.Utterance, &turn.Response,
			&ruleIDs, &turn.Topic, &createdAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}

		if err := json.Unmarshal([]byte(ruleIDs), &turn.AppliedRuleIDs); err != nil {
			return nil, fmt.Errorf("unmarshal applied rules: %w", err)
		}

		turn.ConversationID = conversationID
		turn.CreatedAt = time.Unix(createdAt, 0)
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcript: %w", err)
	}

	return turns, nil
}

// ListConversations summarizes all saved conversations, most recent first.
func (s *SQLiteStore) ListConversations(ctx context.Context) ([]ConversationSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT conversation_id, COUNT(*), MIN(created_at), MAX(created_at)
		FROM transcript_turns
		GROUP BY conversation_id
		ORDER BY MAX(created_at) DESC`)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var summaries []ConversationSummary
	for rows.Next() {
		var summary ConversationSummary
		var first, last int64

		if err := rows.Scan(&summary.ConversationID, &summary.TurnCount, &first, &last); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}

		summary.FirstTurnAt = time.Unix(first, 0)
		summary.LastTurnAt = time.Unix(last, 0)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}

	return summaries, nil
}

// Close closes the prepared statements and the database.
func (s *SQLiteStore) Close() error {
	if s.insertStmt != nil {
		s.insertStmt.Close()
	}
	if s.deleteStmt != nil {
		s.deleteStmt.Close()
	}
	if s.loadStmt != nil {
		s.loadStmt.Close()
	}
	return s.db.Close()
}
