package source

import (
	"context"
	"testing"
)

func TestMemorySourceFromYAML(t *testing.T) {
	src, err := NewMemorySourceFromYAML([]byte(alwaysRuleYAML))
	if err != nil {
		t.Fatalf("NewMemorySourceFromYAML() error = %v", err)
	}

	doc, err := src.LoadCatalog(context.Background())
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(doc.Rules) != 1 || doc.Rules[0].ID != "AL01" {
		t.Errorf("rules = %v", doc.Rules)
	}
}

func TestMemorySourceFromYAMLRejectsMalformed(t *testing.T) {
	if _, err := NewMemorySourceFromYAML([]byte("rules: [broken")); err == nil {
		t.Fatal("NewMemorySourceFromYAML() accepted malformed YAML")
	}
}

func TestMemorySourceWatchClosesOnCancel(t *testing.T) {
	src := NewMemorySource(nil)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := src.Watch(ctx)
	if err != nil {
		t.Fatal(err)
	}

	cancel()
	if _, ok := <-events; ok {
		t.Fatal("memory source emitted an event")
	}
}
