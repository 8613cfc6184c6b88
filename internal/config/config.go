package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type EngineConfig struct {
	Path    string `yaml:"path"`
	Args    string `yaml:"args"`
	Init    string `yaml:"init"`
	Threads int    `yaml:"threads"`
	HashMB  int    `yaml:"hash_mb"`
}

type Config struct {
	Inputs          []string     `yaml:"inputs"`
	Output          string       `yaml:"output"`
	Depth           int          `yaml:"depth"`
	SearchTimeoutMS int          `yaml:"search_timeout_ms"`
	EvalStore       string       `yaml:"eval_store"`
	LogLevel        string       `yaml:"log_level"`
	Engine          EngineConfig `yaml:"engine"`
}

func Default() Config {
	return Config{
		Inputs:    []string{"a.tsv", "b.tsv", "c.tsv", "d.tsv", "e.tsv"},
		Output:    "book.json",
		Depth:     30,
		EvalStore: StoreMemory,
		LogLevel:  "info",
		Engine: EngineConfig{
			Path:    "stockfish",
			Threads: 4,
			HashMB:  256,
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if len(c.Inputs) == 0 {
		c.Inputs = def.Inputs
	}
	if c.Output == "" {
		c.Output = def.Output
	}
	if c.Depth <= 0 {
		c.Depth = def.Depth
	}
	if c.EvalStore == "" {
		c.EvalStore = def.EvalStore
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Engine.Path == "" {
		c.Engine.Path = def.Engine.Path
	}
	if c.Engine.Threads <= 0 {
		c.Engine.Threads = def.Engine.Threads
	}
	if c.Engine.HashMB <= 0 {
		c.Engine.HashMB = def.Engine.HashMB
	}
}

// WithEnv overlays ECOBOOK_* environment variables. ECOBOOK_INPUTS is a
// comma-separated list.
func (c Config) WithEnv() (Config, error) {
	if v := getenv("ECOBOOK_INPUTS", ""); v != "" {
		c.Inputs = splitList(v)
	}
	c.Output = getenv("ECOBOOK_OUTPUT", c.Output)
	c.EvalStore = getenv("ECOBOOK_EVAL_STORE", c.EvalStore)
	c.LogLevel = getenv("ECOBOOK_LOG_LEVEL", c.LogLevel)
	c.Engine.Path = getenv("ECOBOOK_ENGINE_PATH", c.Engine.Path)
	c.Engine.Args = getenv("ECOBOOK_ENGINE_ARGS", c.Engine.Args)

	ints := []struct {
		key string
		dst *int
	}{
		{"ECOBOOK_DEPTH", &c.Depth},
		{"ECOBOOK_SEARCH_TIMEOUT_MS", &c.SearchTimeoutMS},
		{"ECOBOOK_ENGINE_THREADS", &c.Engine.Threads},
		{"ECOBOOK_ENGINE_HASH_MB", &c.Engine.HashMB},
	}
	for _, iv := range ints {
		v := getenv(iv.key, "")
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", iv.key, err)
		}
		*iv.dst = n
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error
	if len(c.Inputs) == 0 {
		errs = append(errs, errors.New("no input files"))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("no output path"))
	}
	if c.Depth <= 0 {
		errs = append(errs, fmt.Errorf("depth must be positive, got %d", c.Depth))
	}
	if c.SearchTimeoutMS < 0 {
		errs = append(errs, fmt.Errorf("search_timeout_ms must not be negative, got %d", c.SearchTimeoutMS))
	}
	if c.EvalStore != StoreMemory && c.EvalStore != StoreSQLite {
		errs = append(errs, fmt.Errorf("eval_store must be %q or %q, got %q", StoreMemory, StoreSQLite, c.EvalStore))
	}
	if c.Engine.Path == "" {
		errs = append(errs, errors.New("no engine path"))
	}
	if c.Engine.Threads < 0 || c.Engine.HashMB < 0 {
		errs = append(errs, errors.New("engine threads and hash_mb must not be negative"))
	}
	return errors.Join(errs...)
}

func (c Config) SearchTimeout() time.Duration {
	return time.Duration(c.SearchTimeoutMS) * time.Millisecond
}

// EngineArgs splits Engine.Args on whitespace.
func (c Config) EngineArgs() []string {
	return strings.Fields(c.Engine.Args)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
