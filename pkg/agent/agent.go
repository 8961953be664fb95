package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"expandev/atena/pkg/conversation"
	"expandev/atena/pkg/evidence/recorder"
	"expandev/atena/pkg/history"
	"expandev/atena/pkg/rcl/ast"
	"expandev/atena/pkg/rules/engine"
	"expandev/atena/pkg/telemetry/metrics"
	"expandev/atena/pkg/trace"
)

// TurnResult is the outcome of one processed turn.
type TurnResult struct {
	// Response is the final agent response, trace annotation included.
	Response string

	// Decision is the engine's evaluation output for the turn.
	Decision *engine.TurnDecision

	// Turn is the finalized history entry.
	Turn conversation.Turn
}

// Agent coordinates conversations, the rule engine, and the response
// generator.
type Agent struct {
	engine    engine.Engine
	generator Generator
	recorder  *recorder.Recorder
	history   history.Store
	metrics   *metrics.Collector
	logger    *slog.Logger

	mu            sync.RWMutex
	conversations map[string]*Conversation
}

// Option configures an Agent.
type Option func(*Agent)

// WithRecorder attaches an evidence recorder. Turn outcomes are then
// recorded asynchronously after each evaluation.
func WithRecorder(r *recorder.Recorder) Option {
	return func(a *Agent) {
		a.recorder = r
	}
}

// WithHistoryStore attaches a transcript store used by SaveHistory and
// EndConversation.
func WithHistoryStore(store history.Store) Option {
	return func(a *Agent) {
		a.history = store
	}
}

// WithMetrics attaches a metrics collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(a *Agent) {
		a.metrics = collector
	}
}

// WithLogger sets the agent logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// New creates an Agent over the given engine and generator.
func New(eng engine.Engine, gen Generator, opts ...Option) (*Agent, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if gen == nil {
		return nil, ErrNoGenerator
	}

	a := &Agent{
		engine:        eng,
		generator:     gen,
		logger:        slog.Default().With("component", "agent"),
		conversations: make(map[string]*Conversation),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// StartConversation creates a new active conversation. An empty id is
// replaced with a generated UUID.
func (a *Agent) StartConversation(id string) *Conversation {
	if id == "" {
		id = uuid.New().String()
	}

	conv := newConversation(id)

	a.mu.Lock()
	a.conversations[id] = conv
	a.mu.Unlock()

	a.logger.Info("conversation started", "conversation_id", id)

	return conv
}

// Conversation returns the tracked conversation with the given id.
func (a *Agent) Conversation(id string) (*Conversation, error) {
	a.mu.RLock()
	conv, ok := a.conversations[id]
	a.mu.RUnlock()

	if !ok {
		return nil, &UnknownConversationError{ID: id}
	}
	return conv, nil
}

// ProcessTurn evaluates one client utterance in the named conversation
// and returns the annotated response. Turns within a conversation are
// serialized; a second ProcessTurn for the same conversation blocks
// until the first finalizes.
func (a *Agent) ProcessTurn(ctx context.Context, conversationID, utterance string) (*TurnResult, error) {
	conv, err := a.Conversation(conversationID)
	if err != nil {
		return nil, err
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	switch conv.state {
	case StateEnded:
		return nil, ErrConversationEnded
	case StateError:
		return nil, ErrConversationFailed
	}

	turnCtx := conv.snapshot(utterance)

	decision, err := a.engine.EvaluateTurn(ctx, turnCtx)
	if err != nil {
		return nil, a.failTurn(conv, turnCtx, err)
	}

	req := &Request{
		ConversationID: conversationID,
		Utterance:      utterance,
		History:        turnCtx.History,
		Topic:          turnCtx.CurrentTopic(),
		Governing:      &decision.Governing,
	}

	raw, err := a.generator.Generate(ctx, req)
	if err != nil {
		a.recordEvidence(turnCtx, decision, "", "", err)
		a.recordTurnMetrics("error", decision)
		return nil, fmt.Errorf("response generation failed: %w", err)
	}

	annotation, err := trace.Render(&decision.Governing)
	if err != nil {
		a.recordEvidence(turnCtx, decision, "", raw, err)
		a.recordTurnMetrics("error", decision)
		return nil, err
	}

	annotated, err := trace.Append(raw, &decision.Governing)
	if err != nil {
		return nil, err
	}

	turn := conversation.Turn{
		Utterance:      utterance,
		Response:       annotated,
		AppliedRuleIDs: decision.Governing.IDs(),
		Topic:          turnCtx.CurrentTopic(),
		At:             time.Now(),
	}

	conv.history = append(conv.history, turn)

	currentTopic := turnCtx.CurrentTopic()
	for _, rule := range decision.Governing.Rules {
		if rule.Category == ast.CategoryIf {
			conv.recordIFApplied(currentTopic, rule.ID)
		}
	}

	a.recordEvidence(turnCtx, decision, annotation, annotated, nil)
	a.recordTurnMetrics("success", decision)

	a.logger.Debug("turn processed",
		"conversation_id", conversationID,
		"turn_seq", turnCtx.TurnSeq,
		"applied_rules", decision.Governing.IDs(),
		"evaluation_time", decision.EvaluationTime)

	return &TurnResult{
		Response: annotated,
		Decision: decision,
		Turn:     turn,
	}, nil
}

// failTurn handles an evaluation error. A rule conflict poisons the
// conversation; other errors leave it active so the client can retry.
func (a *Agent) failTurn(conv *Conversation, turnCtx *conversation.TurnContext, err error) error {
	status := "error"

	var conflict *engine.RuleConflictError
	if errors.As(err, &conflict) {
		conv.state = StateError
		status = "conflict"
		if a.metrics != nil {
			a.metrics.RecordConflict(conflict.NeverID, conflict.ConflictID)
		}
		a.logger.Error("rule conflict poisoned conversation",
			"conversation_id", conv.id,
			"never_id", conflict.NeverID,
			"conflict_id", conflict.ConflictID)
	} else {
		a.logger.Error("turn evaluation failed",
			"conversation_id", conv.id,
			"turn_seq", turnCtx.TurnSeq,
			"error", err)
	}

	a.recordEvidence(turnCtx, nil, "", "", err)
	if a.metrics != nil {
		a.metrics.RecordTurn(status, 0, 0)
	}

	return err
}

func (a *Agent) recordEvidence(turnCtx *conversation.TurnContext, decision *engine.TurnDecision, annotation, annotated string, turnErr error) {
	if a.recorder == nil {
		return
	}

	if err := a.recorder.RecordTurn(turnCtx, decision, annotation, annotated, turnErr); err != nil {
		if a.metrics != nil {
			a.metrics.RecordEvidenceWrite("dropped")
		}
		a.logger.Warn("evidence record dropped",
			"conversation_id", turnCtx.ConversationID,
			"turn_seq", turnCtx.TurnSeq,
			"error", err)
	}
}

func (a *Agent) recordTurnMetrics(status string, decision *engine.TurnDecision) {
	if a.metrics == nil {
		return
	}

	a.metrics.RecordTurn(status, decision.EvaluationTime, decision.Governing.Len())

	for _, match := range decision.Matches {
		if match.Matched {
			a.metrics.RecordRuleMatch(match.RuleID, string(match.Category))
		}
	}
	for _, rule := range decision.Governing.Rules {
		a.metrics.RecordRuleApplied(rule.ID, string(rule.Category))
	}
}

// SaveHistory persists the conversation transcript through the
// configured history store.
func (a *Agent) SaveHistory(ctx context.Context, conversationID string) error {
	if a.history == nil {
		return fmt.Errorf("no history store configured")
	}

	conv, err := a.Conversation(conversationID)
	if err != nil {
		return err
	}

	turns := conv.History()
	if err := a.history.SaveTranscript(ctx, conversationID, turns); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}

	a.logger.Info("transcript saved",
		"conversation_id", conversationID,
		"turns", len(turns))

	return nil
}

// EndConversation marks the conversation ended and, when a history
// store is configured, saves its transcript.
func (a *Agent) EndConversation(ctx context.Context, conversationID string) error {
	conv, err := a.Conversation(conversationID)
	if err != nil {
		return err
	}

	conv.mu.Lock()
	if conv.state == StateActive {
		conv.state = StateEnded
	}
	conv.mu.Unlock()

	if a.history != nil {
		if err := a.SaveHistory(ctx, conversationID); err != nil {
			return err
		}
	}

	a.logger.Info("conversation ended", "conversation_id", conversationID)

	return nil
}

// Close shuts the agent down, flushing the evidence recorder.
func (a *Agent) Close() error {
	if a.recorder != nil {
		return a.recorder.Close()
	}
	return nil
}
