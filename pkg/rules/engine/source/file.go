package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"expandev/atena/pkg/rcl/ast"
	"expandev/atena/pkg/rcl/parser"
	"expandev/atena/pkg/rules/engine"
)

// FileSource loads the catalog from YAML files on disk.
type FileSource struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
}

// NewFileSource creates a file-based catalog source.
// The path can be a single file or a directory; for a directory, all .yaml
// and .yml files are loaded in lexical order and merged into one catalog.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:     path,
		debounce: 300 * time.Millisecond,
		logger:   logger,
	}
}

// WithDebounce sets the watch debounce interval.
func (s *FileSource) WithDebounce(d time.Duration) *FileSource {
	s.debounce = d
	return s
}

// LoadCatalog loads the catalog document from the configured path.
func (s *FileSource) LoadCatalog(ctx context.Context) (*ast.Document, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %q: %w", s.path, err)
	}

	p := parser.NewParser()

	if !info.IsDir() {
		doc, err := p.Parse(s.path)
		if err != nil {
			return nil, err
		}
		s.logger.Info("loaded catalog file",
			"path", s.path,
			"rule_count", doc.RuleCount(),
		)
		return doc, nil
	}

	paths, err := s.catalogFiles()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found in %q", s.path)
	}

	// Merge all documents into the first one; rule declaration order follows
	// the lexical file order. Duplicate ids across files are caught by the
	// catalog validator.
	var merged *ast.Document
	for _, path := range paths {
		doc, err := p.Parse(path)
		if err != nil {
			return nil, err
		}
		if merged == nil {
			merged = doc
			continue
		}
		merged.Rules = append(merged.Rules, doc.Rules...)
	}
	merged.SourceFile = s.path

	s.logger.Info("loaded catalog directory",
		"path", s.path,
		"file_count", len(paths),
		"rule_count", merged.RuleCount(),
	)

	return merged, nil
}

// catalogFiles returns the YAML files under the source directory in lexical order.
func (s *FileSource) catalogFiles() ([]string, error) {
	var paths []string
	err := filepath.Walk(s.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".") {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %q: %w", s.path, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Watch watches the catalog path for changes and sends debounced events on
// the returned channel. The channel is closed when the context is cancelled.
func (s *FileSource) Watch(ctx context.Context) (<-chan engine.CatalogEvent, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := s.addWatchPaths(watcher); err != nil {
		watcher.Close()
		return nil, err
	}

	eventCh := make(chan engine.CatalogEvent)

	go func() {
		defer close(eventCh)
		defer watcher.Close()

		var (
			mu      sync.Mutex
			pending *engine.CatalogEvent
			timer   *time.Timer
		)

		flush := func() {
			mu.Lock()
			event := pending
			pending = nil
			mu.Unlock()
			if event == nil {
				return
			}
			select {
			case eventCh <- *event:
			case <-ctx.Done():
			}
		}

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !s.shouldProcessEvent(ev) {
					continue
				}

				// Debounce: editors fire bursts of writes per save.
				mu.Lock()
				pending = &engine.CatalogEvent{
					Type: eventType(ev.Op),
					Path: ev.Name,
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(s.debounce, flush)
				mu.Unlock()

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Error("catalog watch error", "error", err)
				select {
				case eventCh <- engine.CatalogEvent{Error: err}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	s.logger.Info("catalog watcher started",
		"path", s.path,
		"debounce", s.debounce,
	)

	return eventCh, nil
}

// addWatchPaths registers the source path (and subdirectories) with the watcher.
func (s *FileSource) addWatchPaths(watcher *fsnotify.Watcher) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("failed to stat path %q: %w", s.path, err)
	}

	if !info.IsDir() {
		// Watch the containing directory so atomic-rename saves are seen.
		return watcher.Add(filepath.Dir(s.path))
	}

	return filepath.Walk(s.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".") && path != s.path {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		return nil
	})
}

// shouldProcessEvent filters out events that cannot change the catalog.
func (s *FileSource) shouldProcessEvent(ev fsnotify.Event) bool {
	if ev.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return false
	}

	ext := strings.ToLower(filepath.Ext(ev.Name))
	if ext != ".yaml" && ext != ".yml" {
		return false
	}

	// For a single-file source, only that file matters.
	if info, err := os.Stat(s.path); err == nil && !info.IsDir() {
		return filepath.Clean(ev.Name) == filepath.Clean(s.path)
	}
	return true
}

func eventType(op fsnotify.Op) engine.CatalogEventType {
	switch {
	case op&fsnotify.Create == fsnotify.Create:
		return engine.CatalogEventCreated
	case op&fsnotify.Remove == fsnotify.Remove, op&fsnotify.Rename == fsnotify.Rename:
		return engine.CatalogEventDeleted
	default:
		return engine.CatalogEventModified
	}
}
