package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Catalog.Path != DefaultCatalogPath {
		t.Errorf("catalog path = %q, want %q", cfg.Catalog.Path, DefaultCatalogPath)
	}
	if cfg.Catalog.DebounceInterval != DefaultDebounceInterval {
		t.Errorf("debounce = %v, want %v", cfg.Catalog.DebounceInterval, DefaultDebounceInterval)
	}
	if cfg.Engine.SituationalBudget != DefaultSituationalBudget {
		t.Errorf("situational budget = %d, want %d", cfg.Engine.SituationalBudget, DefaultSituationalBudget)
	}
	if cfg.Evidence.Backend != "memory" {
		t.Errorf("evidence backend = %q, want memory", cfg.Evidence.Backend)
	}
	if cfg.Evidence.Retention.PruneSchedule != DefaultPruneSchedule {
		t.Errorf("prune schedule = %q, want %q", cfg.Evidence.Retention.PruneSchedule, DefaultPruneSchedule)
	}
	if cfg.Telemetry.Logging.Level != "info" || cfg.Telemetry.Logging.Format != "json" {
		t.Errorf("logging defaults = %s/%s, want info/json",
			cfg.Telemetry.Logging.Level, cfg.Telemetry.Logging.Format)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestApplyDefaultsPreservesUserValues(t *testing.T) {
	cfg := &Config{}
	cfg.Catalog.Path = "my/catalog.yaml"
	cfg.Engine.SituationalBudget = 5
	cfg.Telemetry.Logging.Level = "debug"

	ApplyDefaults(cfg)

	if cfg.Catalog.Path != "my/catalog.yaml" {
		t.Errorf("catalog path clobbered: %q", cfg.Catalog.Path)
	}
	if cfg.Engine.SituationalBudget != 5 {
		t.Errorf("situational budget clobbered: %d", cfg.Engine.SituationalBudget)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("log level clobbered: %q", cfg.Telemetry.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(cfg *Config)
		wantField string
	}{
		{
			name:      "empty catalog path",
			mutate:    func(cfg *Config) { cfg.Catalog.Path = "" },
			wantField: "catalog.path",
		},
		{
			name:      "negative situational budget",
			mutate:    func(cfg *Config) { cfg.Engine.SituationalBudget = -1 },
			wantField: "engine.situational_budget",
		},
		{
			name:      "unknown evidence backend",
			mutate:    func(cfg *Config) { cfg.Evidence.Backend = "postgres" },
			wantField: "evidence.backend",
		},
		{
			name: "sqlite backend without path",
			mutate: func(cfg *Config) {
				cfg.Evidence.Enabled = true
				cfg.Evidence.Backend = "sqlite"
			},
			wantField: "evidence.sqlite.path",
		},
		{
			name:      "history enabled without path",
			mutate:    func(cfg *Config) { cfg.History.Enabled = true },
			wantField: "history.path",
		},
		{
			name:      "unknown log level",
			mutate:    func(cfg *Config) { cfg.Telemetry.Logging.Level = "trace" },
			wantField: "telemetry.logging.level",
		},
		{
			name:      "unknown log format",
			mutate:    func(cfg *Config) { cfg.Telemetry.Logging.Format = "logfmt" },
			wantField: "telemetry.logging.format",
		},
		{
			name: "non-increasing histogram buckets",
			mutate: func(cfg *Config) {
				cfg.Telemetry.Metrics.EvaluationDurationBuckets = []float64{0.001, 0.001}
			},
			wantField: "telemetry.metrics.evaluation_duration_buckets",
		},
		{
			name: "non-positive histogram bucket",
			mutate: func(cfg *Config) {
				cfg.Telemetry.Metrics.EvaluationDurationBuckets = []float64{0}
			},
			wantField: "telemetry.metrics.evaluation_duration_buckets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}

			errs, ok := err.(ValidationErrors)
			if !ok {
				t.Fatalf("error type = %T, want ValidationErrors", err)
			}

			found := false
			for _, ve := range errs {
				if ve.Field == tt.wantField {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("no error for field %q, got: %v", tt.wantField, err)
			}
		})
	}
}

func TestValidateAccumulatesAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Catalog.Path = ""
	cfg.Engine.MaxRules = 0
	cfg.Telemetry.Logging.Level = "loud"

	err := Validate(cfg)
	errs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("error type = %T, want ValidationErrors", err)
	}
	if len(errs) != 3 {
		t.Errorf("got %d errors, want 3: %v", len(errs), err)
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("combined message not joined: %q", err.Error())
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
catalog:
  path: rules/custom.yaml
  watch: true
engine:
  situational_budget: 3
evidence:
  enabled: true
  backend: sqlite
  sqlite:
    path: /var/lib/atena/evidence.db
telemetry:
  logging:
    level: debug
    format: text
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Catalog.Path != "rules/custom.yaml" {
		t.Errorf("catalog path = %q", cfg.Catalog.Path)
	}
	if !cfg.Catalog.Watch {
		t.Error("watch not set")
	}
	if cfg.Engine.SituationalBudget != 3 {
		t.Errorf("situational budget = %d, want 3", cfg.Engine.SituationalBudget)
	}
	if cfg.Evidence.Backend != "sqlite" || cfg.Evidence.SQLite.Path != "/var/lib/atena/evidence.db" {
		t.Errorf("evidence = %s/%s", cfg.Evidence.Backend, cfg.Evidence.SQLite.Path)
	}

	// Unset fields still pick up defaults.
	if cfg.Engine.MaxRules != DefaultMaxRules {
		t.Errorf("max rules = %d, want default %d", cfg.Engine.MaxRules, DefaultMaxRules)
	}
	if cfg.Evidence.Recorder.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("write timeout = %v, want default", cfg.Evidence.Recorder.WriteTimeout)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := writeConfigFile(t, `
telemetry:
  logging:
    level: loud
`)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() accepted an invalid level")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadConfig() succeeded on a missing file")
	}
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "catalog: [broken")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("LoadConfig() succeeded on malformed YAML")
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
catalog:
  path: rules/from-file.yaml
engine:
  situational_budget: 3
`)

	t.Setenv("ATENA_CATALOG_PATH", "rules/from-env.yaml")
	t.Setenv("ATENA_ENGINE_SITUATIONAL_BUDGET", "4")
	t.Setenv("ATENA_CATALOG_DEBOUNCE_INTERVAL", "750ms")
	t.Setenv("ATENA_EVIDENCE_ENABLED", "true")
	t.Setenv("ATENA_TELEMETRY_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Catalog.Path != "rules/from-env.yaml" {
		t.Errorf("catalog path = %q, env should win", cfg.Catalog.Path)
	}
	if cfg.Engine.SituationalBudget != 4 {
		t.Errorf("situational budget = %d, want 4", cfg.Engine.SituationalBudget)
	}
	if cfg.Catalog.DebounceInterval != 750*time.Millisecond {
		t.Errorf("debounce = %v, want 750ms", cfg.Catalog.DebounceInterval)
	}
	if !cfg.Evidence.Enabled {
		t.Error("evidence not enabled from env")
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("log level = %q, want warn", cfg.Telemetry.Logging.Level)
	}
}

func TestEnvOverridesRevalidate(t *testing.T) {
	path := writeConfigFile(t, "")

	t.Setenv("ATENA_TELEMETRY_LOGGING_LEVEL", "loud")

	if _, err := LoadConfigWithEnvOverrides(path); err == nil {
		t.Fatal("LoadConfigWithEnvOverrides() accepted an invalid override")
	}
}
