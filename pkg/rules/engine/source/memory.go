package source

import (
	"context"

	"expandev/atena/pkg/rcl/ast"
	"expandev/atena/pkg/rcl/parser"
	"expandev/atena/pkg/rules/engine"
)

// MemorySource serves a fixed catalog document from memory. It is intended
// for tests and embedded catalogs; Watch never fires.
type MemorySource struct {
	doc *ast.Document
}

// NewMemorySource creates an in-memory catalog source.
func NewMemorySource(doc *ast.Document) *MemorySource {
	return &MemorySource{doc: doc}
}

// NewMemorySourceFromYAML parses catalog YAML and serves it from memory.
func NewMemorySourceFromYAML(data []byte) (*MemorySource, error) {
	doc, err := parser.NewParser().ParseBytes(data, "memory")
	if err != nil {
		return nil, err
	}
	return &MemorySource{doc: doc}, nil
}

// LoadCatalog returns the fixed document.
func (s *MemorySource) LoadCatalog(ctx context.Context) (*ast.Document, error) {
	return s.doc, nil
}

// Watch returns a channel that closes when the context is cancelled.
func (s *MemorySource) Watch(ctx context.Context) (<-chan engine.CatalogEvent, error) {
	eventCh := make(chan engine.CatalogEvent)
	go func() {
		<-ctx.Done()
		close(eventCh)
	}()
	return eventCh, nil
}
