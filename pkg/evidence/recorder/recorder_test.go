package recorder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"expandev/atena/pkg/conversation"
	"expandev/atena/pkg/evidence"
	"expandev/atena/pkg/evidence/storage"
	"expandev/atena/pkg/rcl/ast"
	"expandev/atena/pkg/rules/engine"
)

func testTurnContext() *conversation.TurnContext {
	return &conversation.TurnContext{
		ConversationID: "c1",
		TurnSeq:        3,
		Utterance:      "should we expand into the nordics",
		OpenTopics:     []string{"expansion"},
		Flags:          conversation.Flags{"client_uncertain": "true"},
		Satisfied:      make(conversation.SatisfiedSet),
	}
}

func testDecision() *engine.TurnDecision {
	return &engine.TurnDecision{
		Governing: engine.GoverningSet{Rules: []engine.GoverningRule{
			{ID: "AL01", Category: ast.CategoryAlways, Action: "a", Strength: 1.0},
			{ID: "IF02", Category: ast.CategoryIf, Action: "b", Strength: 1.0},
		}},
		Matches: []engine.MatchResult{
			{RuleID: "AL01", Category: ast.CategoryAlways, Matched: true, Strength: 1.0},
			{RuleID: "IF02", Category: ast.CategoryIf, Matched: true, Strength: 1.0},
			{RuleID: "S01", Category: ast.CategorySituational, Matched: false},
		},
		CatalogName:    "test",
		CatalogVersion: "1.0",
		EvaluationTime: 250 * time.Microsecond,
	}
}

func drainRecorder(t *testing.T, r *Recorder, store *storage.MemoryStorage, want int) []*evidence.TurnRecord {
	t.Helper()

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	records, err := store.Query(context.Background(), nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(records) != want {
		t.Fatalf("stored %d records, want %d", len(records), want)
	}
	return records
}

func TestRecordTurnBuildsFullRecord(t *testing.T) {
	store := storage.NewMemoryStorage()
	r := NewRecorder(store, nil)

	turnCtx := testTurnContext()
	decision := testDecision()
	annotated := "analysis here\n[Applied Rules: AL01, IF02]"

	if err := r.RecordTurn(turnCtx, decision, "[Applied Rules: AL01, IF02]", annotated, nil); err != nil {
		t.Fatalf("RecordTurn() error = %v", err)
	}

	record := drainRecorder(t, r, store, 1)[0]

	if record.ID == "" {
		t.Error("record has no id")
	}
	if record.ConversationID != "c1" || record.TurnSeq != 3 {
		t.Errorf("identity = %s/%d, want c1/3", record.ConversationID, record.TurnSeq)
	}
	if record.UtteranceHash != HashString(turnCtx.Utterance) {
		t.Error("utterance hash mismatch")
	}
	if record.UtteranceExcerpt != turnCtx.Utterance {
		t.Errorf("excerpt = %q, want the full short utterance", record.UtteranceExcerpt)
	}
	if record.Topic != "expansion" {
		t.Errorf("topic = %q, want expansion", record.Topic)
	}
	if record.CatalogName != "test" || record.CatalogVersion != "1.0" {
		t.Errorf("catalog = %s/%s, want test/1.0", record.CatalogName, record.CatalogVersion)
	}
	if fmt.Sprint(record.GoverningSet) != fmt.Sprint([]string{"AL01", "IF02"}) {
		t.Errorf("governing set = %v", record.GoverningSet)
	}
	if record.ResponseHash != HashString(annotated) {
		t.Error("response hash mismatch")
	}
	if record.RecordedTime.IsZero() {
		t.Error("recorded time not set")
	}

	if len(record.Matches) != 3 {
		t.Fatalf("matches = %d, want 3", len(record.Matches))
	}
	for _, m := range record.Matches {
		wantIncluded := m.RuleID == "AL01" || m.RuleID == "IF02"
		if m.Included != wantIncluded {
			t.Errorf("match %s included = %v, want %v", m.RuleID, m.Included, wantIncluded)
		}
	}
}

func TestRecordTurnFailedTurn(t *testing.T) {
	store := storage.NewMemoryStorage()
	r := NewRecorder(store, nil)

	turnErr := errors.New("rule conflict: N01 contradicts IF01")
	if err := r.RecordTurn(testTurnContext(), nil, "", "", turnErr); err != nil {
		t.Fatalf("RecordTurn() error = %v", err)
	}

	record := drainRecorder(t, r, store, 1)[0]

	if record.Error != turnErr.Error() {
		t.Errorf("error = %q, want %q", record.Error, turnErr.Error())
	}
	if len(record.GoverningSet) != 0 {
		t.Errorf("failed turn recorded a governing set: %v", record.GoverningSet)
	}
	if record.ResponseHash != "" {
		t.Error("failed turn recorded a response hash")
	}
}

func TestRecordTurnDisabled(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := DefaultConfig()
	config.Enabled = false
	r := NewRecorder(store, config)

	if err := r.RecordTurn(testTurnContext(), testDecision(), "", "", nil); err != nil {
		t.Fatalf("RecordTurn() error = %v", err)
	}

	drainRecorder(t, r, store, 0)
}

func TestRecordTurnExcerptTruncation(t *testing.T) {
	store := storage.NewMemoryStorage()
	config := DefaultConfig()
	config.MaxExcerptLength = 10
	r := NewRecorder(store, config)

	turnCtx := testTurnContext()
	turnCtx.Utterance = strings.Repeat("café ", 10)

	if err := r.RecordTurn(turnCtx, nil, "", "", nil); err != nil {
		t.Fatal(err)
	}

	record := drainRecorder(t, r, store, 1)[0]
	if got := len([]rune(record.UtteranceExcerpt)); got != 10 {
		t.Errorf("excerpt length = %d runes, want 10", got)
	}
	// The hash still covers the full utterance.
	if record.UtteranceHash != HashString(turnCtx.Utterance) {
		t.Error("hash does not cover the full utterance")
	}
}

// blockingStorage never completes a Store, keeping the worker busy so the
// channel buffer can be filled deterministically.
type blockingStorage struct {
	storage.MemoryStorage
	release chan struct{}
}

func (s *blockingStorage) Store(ctx context.Context, record *evidence.TurnRecord) error {
	select {
	case <-s.release:
	case <-ctx.Done():
	}
	return nil
}

func TestRecordTurnBufferFull(t *testing.T) {
	blocking := &blockingStorage{release: make(chan struct{})}
	defer close(blocking.release)

	config := DefaultConfig()
	config.AsyncBuffer = 1
	config.WriteTimeout = 50 * time.Millisecond
	r := NewRecorder(blocking, config)
	defer r.Close()

	// First record occupies the worker, the second fills the buffer. One of
	// the following enqueues must then fail; retry a few times to avoid
	// racing the worker pickup.
	var recErr *evidence.RecorderError
	for i := 0; i < 10; i++ {
		if err := r.RecordTurn(testTurnContext(), nil, "", "", nil); err != nil {
			if !errors.As(err, &recErr) {
				t.Fatalf("error type = %T, want *RecorderError", err)
			}
			return
		}
	}
	t.Fatal("RecordTurn() never reported a full buffer")
}

func TestHashString(t *testing.T) {
	if HashString("") != "" {
		t.Error("empty content should hash to empty string")
	}

	a := HashString("hello")
	b := HashString("hello")
	c := HashString("world")

	if a != b {
		t.Error("hashing is not deterministic")
	}
	if a == c {
		t.Error("distinct content produced identical hashes")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}
