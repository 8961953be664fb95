package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"expandev/atena/pkg/conversation"
	"expandev/atena/pkg/rcl/ast"
)

// Engine is the main interface for per-turn rule evaluation.
type Engine interface {
	// EvaluateTurn evaluates the catalog against one turn context and
	// returns the turn's governing set with its evaluation breakdown.
	EvaluateTurn(ctx context.Context, turnCtx *conversation.TurnContext) (*TurnDecision, error)

	// Catalog returns the currently loaded frozen catalog.
	Catalog() *Catalog

	// ReloadCatalog reloads the catalog from the source. In-flight turns
	// keep the frozen catalog they started with.
	ReloadCatalog(ctx context.Context) error

	// Close shuts down the engine and releases resources.
	Close() error
}

// CatalogSource provides catalog documents to the engine.
type CatalogSource interface {
	// LoadCatalog loads the catalog document from the source.
	LoadCatalog(ctx context.Context) (*ast.Document, error)

	// Watch watches for catalog changes and sends events on the returned
	// channel. The channel is closed when the context is cancelled.
	Watch(ctx context.Context) (<-chan CatalogEvent, error)
}

// CatalogEvent represents a catalog source change event.
type CatalogEvent struct {
	// Type is the event type ("created", "modified", "deleted").
	Type CatalogEventType

	// Path is the file path that changed.
	Path string

	// Error is any error that occurred while processing the event.
	Error error
}

// CatalogEventType represents the type of catalog change event.
type CatalogEventType string

const (
	CatalogEventCreated  CatalogEventType = "created"
	CatalogEventModified CatalogEventType = "modified"
	CatalogEventDeleted  CatalogEventType = "deleted"
)

// RuleEngine is the default Engine implementation.
//
// The loaded catalog is swapped atomically on reload; evaluation reads a
// frozen reference, so concurrent evaluations across conversations are safe
// without further locking.
type RuleEngine struct {
	// catalog is the currently loaded frozen catalog
	catalog *Catalog

	// catalogMu protects the catalog reference for concurrent access
	catalogMu sync.RWMutex

	// evaluator matches rule conditions
	evaluator ConditionEvaluator

	// resolver applies precedence and conflict rules
	resolver PrecedenceResolver

	// config contains engine configuration
	config *Config

	// logger for structured logging
	logger *slog.Logger

	// source provides catalog documents
	source CatalogSource

	// stopCh signals shutdown
	stopCh chan struct{}

	// watchCancel stops the catalog watcher
	watchCancel context.CancelFunc

	// wg tracks background goroutines
	wg sync.WaitGroup
}

// Option customizes a RuleEngine.
type Option func(*RuleEngine)

// WithScorer replaces the situational scorer.
func WithScorer(scorer Scorer) Option {
	return func(e *RuleEngine) {
		e.evaluator = NewDefaultEvaluator(scorer, e.logger)
	}
}

// WithEvaluator replaces the condition evaluator.
func WithEvaluator(evaluator ConditionEvaluator) Option {
	return func(e *RuleEngine) {
		e.evaluator = evaluator
	}
}

// New creates a rule engine, loads the initial catalog from the source, and
// starts watching for catalog changes. Catalog loading is a one-time blocking
// operation; no turn is processed before it completes.
func New(config *Config, source CatalogSource, logger *slog.Logger, opts ...Option) (*RuleEngine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("catalog source cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	engine := &RuleEngine{
		config: config,
		logger: logger,
		source: source,
		stopCh: make(chan struct{}),
	}
	engine.evaluator = NewDefaultEvaluator(nil, logger)
	engine.resolver = NewDefaultResolver()

	for _, opt := range opts {
		opt(engine)
	}

	if err := engine.ReloadCatalog(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to load initial catalog: %w", err)
	}

	engine.startWatching()

	return engine, nil
}

// EvaluateTurn evaluates the catalog against one turn context.
//
// Evaluation is a pure function of (catalog, context): identical inputs yield
// an identical decision. Errors (RuleConflictError) are fatal for the turn
// and surfaced to the caller; no trace should be emitted for a failed turn.
func (e *RuleEngine) EvaluateTurn(ctx context.Context, turnCtx *conversation.TurnContext) (*TurnDecision, error) {
	if turnCtx == nil {
		return nil, fmt.Errorf("turn context cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	catalog := e.Catalog()
	if catalog == nil {
		return nil, ErrNoCatalogLoaded
	}

	start := time.Now()

	matches := e.evaluator.Evaluate(catalog, turnCtx)

	governing, err := e.resolver.Resolve(catalog, matches, turnCtx, e.config.SituationalBudget)
	if err != nil {
		e.logger.Error("turn resolution failed",
			"conversation_id", turnCtx.ConversationID,
			"turn_seq", turnCtx.TurnSeq,
			"error", err,
		)
		return nil, err
	}

	decision := &TurnDecision{
		Governing:      *governing,
		Matches:        matches,
		CatalogName:    catalog.Name(),
		CatalogVersion: catalog.Version(),
		EvaluationTime: time.Since(start),
	}

	e.logger.Debug("turn evaluated",
		"conversation_id", turnCtx.ConversationID,
		"turn_seq", turnCtx.TurnSeq,
		"governing_rules", governing.Len(),
		"evaluation_time", decision.EvaluationTime,
	)

	return decision, nil
}

// Catalog returns the currently loaded frozen catalog.
func (e *RuleEngine) Catalog() *Catalog {
	e.catalogMu.RLock()
	defer e.catalogMu.RUnlock()
	return e.catalog
}

// ReloadCatalog reloads the catalog from the source. The new catalog replaces
// the reference atomically; evaluations already holding the old reference are
// unaffected.
func (e *RuleEngine) ReloadCatalog(ctx context.Context) error {
	e.logger.Info("loading rule catalog")

	doc, err := e.source.LoadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("catalog source failed: %w", err)
	}

	if len(doc.Rules) > e.config.MaxRules {
		return &MalformedRuleError{
			Cause: fmt.Errorf("too many rules: %d (max: %d)", len(doc.Rules), e.config.MaxRules),
		}
	}

	catalog, err := NewCatalog(doc)
	if err != nil {
		return err
	}

	e.catalogMu.Lock()
	e.catalog = catalog
	e.catalogMu.Unlock()

	e.logger.Info("rule catalog loaded",
		"catalog", catalog.Name(),
		"version", catalog.Version(),
		"rule_count", catalog.RuleCount(),
	)

	return nil
}

// startWatching starts watching for catalog changes.
func (e *RuleEngine) startWatching() {
	ctx, cancel := context.WithCancel(context.Background())
	e.watchCancel = cancel

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		eventCh, err := e.source.Watch(ctx)
		if err != nil {
			e.logger.Error("failed to start catalog watcher", "error", err)
			return
		}

		for {
			select {
			case <-e.stopCh:
				return
			case event, ok := <-eventCh:
				if !ok {
					return
				}
				e.handleCatalogEvent(event)
			}
		}
	}()
}

// handleCatalogEvent handles a catalog change event by reloading.
// A reload failure keeps the previous catalog in place.
func (e *RuleEngine) handleCatalogEvent(event CatalogEvent) {
	e.logger.Info("catalog source changed",
		"type", event.Type,
		"path", event.Path,
	)

	if err := e.ReloadCatalog(context.Background()); err != nil {
		e.logger.Error("failed to reload catalog after change, keeping previous catalog",
			"error", err,
			"path", event.Path,
		)
	}
}

// Close shuts down the engine and releases resources.
func (e *RuleEngine) Close() error {
	close(e.stopCh)
	if e.watchCancel != nil {
		e.watchCancel()
	}
	e.wg.Wait()
	return nil
}
