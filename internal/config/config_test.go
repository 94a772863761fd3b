package config

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/dshills/taggable/internal/logging"
)

type memFS map[string]string

func (m memFS) Open(string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (m memFS) ReadFile(path string) ([]byte, error) {
	s, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(s), nil
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	set, err := cfg.PolicySet()
	if err != nil {
		t.Fatalf("PolicySet: %v", err)
	}
	if set.Len() != 2 {
		t.Errorf("policies = %d, want 2", set.Len())
	}
	if _, ok := set.ByPrefix("@"); !ok {
		t.Error("default policies should include @")
	}
	if cfg.Styles["mention"] == "" {
		t.Error("default styles should color mentions")
	}
	if kinds := cfg.Kinds(); kinds["@"] != "person" || kinds["#"] != "topic" {
		t.Errorf("Kinds = %v", kinds)
	}
}

func TestLoadLayers(t *testing.T) {
	fsys := memFS{
		"/base.toml": `
[logging]
level = "warn"

[lookup]
limit = 3

[[policies]]
prefix = "~"
pattern = "[a-z]+"
style = "ticket"
kind = "issue"

[styles]
ticket = "#ff8700"
`,
		"/override.yaml": `
lookup:
  limit: 4
matching:
  timeout: 20ms
`,
	}
	t.Setenv("TAGGABLE_LOG_LEVEL", "debug")

	cfg, err := Load([]string{"/base.toml", "/override.yaml", "/missing.toml"}, WithFS(fsys))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug (env wins)", cfg.Logging.Level)
	}
	if cfg.Lookup.Limit != 4 {
		t.Errorf("Lookup.Limit = %d, want 4 (later file wins)", cfg.Lookup.Limit)
	}
	if cfg.Matching.Timeout != 20*time.Millisecond {
		t.Errorf("Matching.Timeout = %v", cfg.Matching.Timeout)
	}
	if !cfg.Lookup.AutoComplete {
		t.Error("AutoComplete default should survive")
	}
	if len(cfg.Policies) != 1 || cfg.Policies[0].Prefix != "~" {
		t.Errorf("Policies = %+v", cfg.Policies)
	}
	if kinds := cfg.Kinds(); len(kinds) != 1 || kinds["~"] != "issue" {
		t.Errorf("Kinds = %v", kinds)
	}
	if cfg.Styles["ticket"] != "#ff8700" || cfg.Styles["mention"] == "" {
		t.Errorf("Styles = %v", cfg.Styles)
	}
}

func TestLoadWithoutEnv(t *testing.T) {
	t.Setenv("TAGGABLE_LOG_LEVEL", "debug")

	cfg, err := Load(nil, WithoutEnv())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadCustomEnvPrefix(t *testing.T) {
	t.Setenv("PAD_LOOKUP_LIMIT", "2")

	cfg, err := Load(nil, WithEnvPrefix("PAD_"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Lookup.Limit != 2 {
		t.Errorf("Lookup.Limit = %d, want 2", cfg.Lookup.Limit)
	}
}

func TestFromMapTypeErrors(t *testing.T) {
	_, err := FromMap(map[string]any{
		"logging":  map[string]any{"level": 3},
		"lookup":   map[string]any{"limit": "many", "autoComplete": "yes please"},
		"matching": map[string]any{"timeout": "soon"},
		"policies": "all",
	})
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("err = %v, want ErrTypeMismatch", err)
	}

	var terr *TypeError
	if !errors.As(err, &terr) {
		t.Fatalf("err = %v, want *TypeError", err)
	}

	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("err should join every problem")
	}
	if n := len(joined.Unwrap()); n != 5 {
		t.Errorf("got %d errors, want 5: %v", n, err)
	}
}

func TestFromMapDurations(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want time.Duration
	}{
		{"string", "1s", time.Second},
		{"duration", 5 * time.Millisecond, 5 * time.Millisecond},
		{"int millis", 250, 250 * time.Millisecond},
		{"int64 millis", int64(30), 30 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromMap(map[string]any{"matching": map[string]any{"timeout": tt.in}})
			if err != nil {
				t.Fatalf("FromMap: %v", err)
			}
			if cfg.Matching.Timeout != tt.want {
				t.Errorf("Timeout = %v, want %v", cfg.Matching.Timeout, tt.want)
			}
		})
	}
}

func TestLoadLookupScoring(t *testing.T) {
	fsys := memFS{
		"/lookup.toml": `
[lookup]
cacheSize = 0

[lookup.scoring]
prefix = 40
gap = 5
`,
	}

	cfg, err := Load([]string{"/lookup.toml"}, WithFS(fsys), WithoutEnv())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Lookup.CacheSize != 0 {
		t.Errorf("Lookup.CacheSize = %d, want 0", cfg.Lookup.CacheSize)
	}
	sc := cfg.Lookup.Scoring
	if sc.Prefix != 40 || sc.Gap != 5 {
		t.Errorf("Scoring = %+v, want prefix 40 and gap 5", sc)
	}
	if sc.Consecutive != Default().Lookup.Scoring.Consecutive {
		t.Errorf("Scoring.Consecutive = %d, default should survive", sc.Consecutive)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"negative limit", func(c *Config) { c.Lookup.Limit = -1 }, "lookup.limit"},
		{"negative cache", func(c *Config) { c.Lookup.CacheSize = -1 }, "lookup.cacheSize"},
		{"negative gap", func(c *Config) { c.Lookup.Scoring.Gap = -2 }, "lookup.scoring"},
		{"negative timeout", func(c *Config) { c.Matching.Timeout = -time.Second }, "matching.timeout"},
		{"no policies", func(c *Config) { c.Policies = nil }, "policies"},
		{"empty prefix", func(c *Config) { c.Policies[0].Prefix = "" }, "policies"},
		{"bad pattern", func(c *Config) { c.Policies[0].Pattern = "([" }, "policies"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("err = %v, want ErrValidationFailed", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Path != tt.path {
				t.Errorf("err = %v, want path %s", err, tt.path)
			}
		})
	}
}

func TestLoggerConfig(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "warn"
	cfg.Logging.Prefix = "pad"

	lc := cfg.LoggerConfig()
	if lc.Level != logging.LevelWarn || lc.Prefix != "pad" {
		t.Errorf("LoggerConfig = %+v", lc)
	}
}
