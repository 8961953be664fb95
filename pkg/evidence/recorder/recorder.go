package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"expandev/atena/pkg/conversation"
	"expandev/atena/pkg/evidence"
	"expandev/atena/pkg/rules/engine"
)

// Config contains configuration for the turn recorder.
type Config struct {
	// Enabled enables turn recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// MaxExcerptLength is the maximum length of stored utterance excerpts.
	// Default: 500
	MaxExcerptLength int
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:          true,
		AsyncBuffer:      1000,
		WriteTimeout:     5 * time.Second,
		MaxExcerptLength: 500,
	}
}

// Recorder writes turn audit records asynchronously so the conversation loop
// never blocks on storage.
type Recorder struct {
	storage    evidence.Storage
	config     *Config
	recordChan chan *evidence.TurnRecord
	wg         sync.WaitGroup
	done       chan struct{}
	logger     *slog.Logger
}

// NewRecorder creates a turn recorder with the given storage backend.
func NewRecorder(storage evidence.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *evidence.TurnRecord, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "evidence.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("turn recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// RecordTurn builds a turn record from an evaluated turn and enqueues it for
// async writing. annotated is the final response text with the appended
// trace; for failed turns pass empty strings and a non-nil turnErr.
func (r *Recorder) RecordTurn(turnCtx *conversation.TurnContext, decision *engine.TurnDecision, traceAnnotation, annotated string, turnErr error) error {
	if !r.config.Enabled {
		return nil
	}

	record := r.buildRecord(turnCtx, decision, traceAnnotation, annotated, turnErr)

	select {
	case r.recordChan <- record:
		return nil
	default:
		// The buffer is full. Losing audit records silently would defeat
		// the point of evidence, so surface the condition.
		return &evidence.RecorderError{
			RecordID: record.ID,
			Cause:    fmt.Errorf("record buffer full (%d pending)", r.config.AsyncBuffer),
		}
	}
}

// buildRecord assembles the audit record for one turn.
func (r *Recorder) buildRecord(turnCtx *conversation.TurnContext, decision *engine.TurnDecision, traceAnnotation, annotated string, turnErr error) *evidence.TurnRecord {
	record := &evidence.TurnRecord{
		ID:               uuid.New().String(),
		ConversationID:   turnCtx.ConversationID,
		TurnSeq:          turnCtx.TurnSeq,
		EvaluatedTime:    time.Now().UTC(),
		UtteranceHash:    HashString(turnCtx.Utterance),
		UtteranceExcerpt: truncate(turnCtx.Utterance, r.config.MaxExcerptLength),
		Flags:            turnCtx.Flags.Clone(),
		Topic:            turnCtx.CurrentTopic(),
		Trace:            traceAnnotation,
		ResponseHash:     HashString(annotated),
	}

	if decision != nil {
		record.CatalogName = decision.CatalogName
		record.CatalogVersion = decision.CatalogVersion
		record.EvaluationTime = decision.EvaluationTime
		record.GoverningSet = decision.Governing.IDs()

		record.Matches = make([]evidence.RuleMatchRecord, 0, len(decision.Matches))
		for _, m := range decision.Matches {
			record.Matches = append(record.Matches, evidence.RuleMatchRecord{
				RuleID:   m.RuleID,
				Category: string(m.Category),
				Matched:  m.Matched,
				Strength: m.Strength,
				Included: decision.Governing.Contains(m.RuleID),
			})
		}
	}

	if turnErr != nil {
		record.Error = turnErr.Error()
	}

	return record
}

// worker drains the record channel and writes to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)
		case <-r.done:
			// Drain remaining records before shutdown.
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

// writeRecord persists one record with the configured timeout.
func (r *Recorder) writeRecord(record *evidence.TurnRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	record.RecordedTime = time.Now().UTC()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store turn record",
			"record_id", record.ID,
			"conversation_id", record.ConversationID,
			"error", err,
		)
		return
	}

	r.logger.Debug("turn record stored",
		"record_id", record.ID,
		"conversation_id", record.ConversationID,
		"turn_seq", record.TurnSeq,
	)
}

// Close flushes pending records and stops the worker.
func (r *Recorder) Close() error {
	close(r.done)
	r.wg.Wait()
	return nil
}

// truncate caps a string at max runes.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
