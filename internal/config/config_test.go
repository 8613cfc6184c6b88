package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ecobook.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadOverDefaults(t *testing.T) {
	path := writeConfig(t, `
inputs: [x.tsv, y.tsv]
depth: 12
search_timeout_ms: 1500
engine:
  path: /usr/bin/stockfish
  init: |
    setoption name UCI_ShowWDL value false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Inputs, []string{"x.tsv", "y.tsv"}) {
		t.Fatalf("inputs = %v", cfg.Inputs)
	}
	if cfg.Depth != 12 || cfg.SearchTimeout() != 1500*time.Millisecond {
		t.Fatalf("depth/timeout = %d/%v", cfg.Depth, cfg.SearchTimeout())
	}
	if cfg.Output != "book.json" || cfg.EvalStore != StoreMemory {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.Engine.Path != "/usr/bin/stockfish" || cfg.Engine.Threads != 4 || cfg.Engine.HashMB != 256 {
		t.Fatalf("engine = %+v", cfg.Engine)
	}
	if cfg.Engine.Init == "" {
		t.Fatal("engine init lost")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "depht: 3\n")); err == nil {
		t.Fatal("expected error for unknown key")
	}
	if _, err := Load(writeConfig(t, "depth: [\n")); err == nil {
		t.Fatal("expected error for bad yaml")
	}
}

func TestWithEnv(t *testing.T) {
	t.Setenv("ECOBOOK_INPUTS", "one.tsv, two.tsv,")
	t.Setenv("ECOBOOK_DEPTH", "8")
	t.Setenv("ECOBOOK_ENGINE_ARGS", "--flag  value")
	t.Setenv("ECOBOOK_EVAL_STORE", StoreSQLite)

	cfg, err := Default().WithEnv()
	if err != nil {
		t.Fatalf("env: %v", err)
	}
	if !reflect.DeepEqual(cfg.Inputs, []string{"one.tsv", "two.tsv"}) {
		t.Fatalf("inputs = %v", cfg.Inputs)
	}
	if cfg.Depth != 8 || cfg.EvalStore != StoreSQLite {
		t.Fatalf("cfg = %+v", cfg)
	}
	if got := cfg.EngineArgs(); !reflect.DeepEqual(got, []string{"--flag", "value"}) {
		t.Fatalf("engine args = %v", got)
	}

	t.Setenv("ECOBOOK_ENGINE_THREADS", "many")
	if _, err := Default().WithEnv(); err == nil {
		t.Fatal("expected error for non-numeric threads")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no inputs", func(c *Config) { c.Inputs = nil }},
		{"no output", func(c *Config) { c.Output = "" }},
		{"zero depth", func(c *Config) { c.Depth = 0 }},
		{"negative timeout", func(c *Config) { c.SearchTimeoutMS = -1 }},
		{"unknown store", func(c *Config) { c.EvalStore = "redis" }},
		{"no engine", func(c *Config) { c.Engine.Path = "" }},
		{"negative hash", func(c *Config) { c.Engine.HashMB = -1 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
