package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dshills/taggable/internal/config/loader"
	"github.com/dshills/taggable/internal/logging"
	"github.com/dshills/taggable/internal/tag"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "TAGGABLE_"

// Config is the complete taggable configuration.
type Config struct {
	Logging   LoggingConfig
	Matching  MatchingConfig
	Lookup    LookupConfig
	Directory DirectoryConfig
	Policies  []PolicyConfig

	// Styles maps a policy style token to a display color such as "#5fafff".
	Styles map[string]string
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string
	Prefix string
}

// MatchingConfig configures policy pattern matching.
type MatchingConfig struct {
	// Timeout bounds a single pattern match. Zero means no limit.
	Timeout time.Duration
}

// LookupConfig configures entity lookups.
type LookupConfig struct {
	// Limit caps the number of candidates a search returns.
	Limit int

	// AutoComplete starts a lookup whenever a new query is typed.
	AutoComplete bool

	// CacheSize is the number of search results kept per directory
	// version. Zero disables caching.
	CacheSize int

	Scoring ScoringConfig
}

// ScoringConfig tunes how fuzzy search ranks candidates. Bonuses add to a
// match's score; Gap and Leading are subtracted per skipped rune.
type ScoringConfig struct {
	Consecutive  int
	WordBoundary int
	Prefix       int
	ExactPrefix  int
	Gap          int
	Leading      int
}

// DirectoryConfig locates the entity directory file.
type DirectoryConfig struct {
	Path  string
	Watch bool
}

// PolicyConfig is one tag policy.
type PolicyConfig struct {
	Prefix        string
	Pattern       string
	Style         string
	AllowAdjacent bool

	// Kind is the directory entity kind looked up for this prefix.
	Kind string
}

// Default returns the built-in configuration: people tagged with "@" and
// topics tagged with "#".
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Prefix: "taggable",
		},
		Matching: MatchingConfig{
			Timeout: 100 * time.Millisecond,
		},
		Lookup: LookupConfig{
			Limit:        8,
			AutoComplete: true,
			CacheSize:    256,
			Scoring: ScoringConfig{
				Consecutive:  20,
				WordBoundary: 15,
				Prefix:       25,
				ExactPrefix:  50,
				Gap:          2,
				Leading:      1,
			},
		},
		Directory: DirectoryConfig{
			Watch: true,
		},
		Policies: []PolicyConfig{
			{Prefix: "@", Pattern: `[A-Za-z0-9_-]+`, Style: "mention", Kind: "person"},
			{Prefix: "#", Pattern: `[A-Za-z0-9_-]+`, Style: "topic", Kind: "topic"},
		},
		Styles: map[string]string{
			"mention": "#5fafff",
			"topic":   "#87d787",
		},
	}
}

// Option configures Load.
type Option func(*options)

type options struct {
	fs        loader.FileSystem
	envPrefix string
	useEnv    bool
}

// WithFS reads configuration files from fsys.
func WithFS(fsys loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// WithEnvPrefix changes the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithoutEnv ignores the environment.
func WithoutEnv() Option {
	return func(o *options) {
		o.useEnv = false
	}
}

// Load reads the given files and the environment on top of the defaults,
// then validates the result. Missing files are skipped.
func Load(paths []string, opts ...Option) (Config, error) {
	o := options{fs: loader.DefaultFS(), envPrefix: EnvPrefix, useEnv: true}
	for _, opt := range opts {
		opt(&o)
	}

	merged := make(map[string]any)
	for _, path := range paths {
		data, err := loader.ForPath(o.fs, path).Load()
		if err != nil {
			return Config{}, err
		}
		merged = loader.DeepMerge(merged, data)
	}

	if o.useEnv {
		env, err := loader.NewEnvLoader(o.envPrefix).Load()
		if err != nil {
			return Config{}, fmt.Errorf("loading environment: %w", err)
		}
		merged = loader.DeepMerge(merged, env)
	}

	cfg, err := FromMap(merged)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromMap decodes a settings map on top of the defaults. A "policies" list
// replaces the default policies; "styles" entries are added to the default
// styles.
func FromMap(m map[string]any) (Config, error) {
	cfg := Default()
	d := &decoder{}

	d.str(m, "logging.level", &cfg.Logging.Level)
	d.str(m, "logging.prefix", &cfg.Logging.Prefix)
	d.duration(m, "matching.timeout", &cfg.Matching.Timeout)
	d.integer(m, "lookup.limit", &cfg.Lookup.Limit)
	d.boolean(m, "lookup.autoComplete", &cfg.Lookup.AutoComplete)
	d.integer(m, "lookup.cacheSize", &cfg.Lookup.CacheSize)
	d.integer(m, "lookup.scoring.consecutive", &cfg.Lookup.Scoring.Consecutive)
	d.integer(m, "lookup.scoring.wordBoundary", &cfg.Lookup.Scoring.WordBoundary)
	d.integer(m, "lookup.scoring.prefix", &cfg.Lookup.Scoring.Prefix)
	d.integer(m, "lookup.scoring.exactPrefix", &cfg.Lookup.Scoring.ExactPrefix)
	d.integer(m, "lookup.scoring.gap", &cfg.Lookup.Scoring.Gap)
	d.integer(m, "lookup.scoring.leading", &cfg.Lookup.Scoring.Leading)
	d.str(m, "directory.path", &cfg.Directory.Path)
	d.boolean(m, "directory.watch", &cfg.Directory.Watch)

	if raw, ok := getPath(m, "policies"); ok {
		cfg.Policies = d.policies(raw)
	}
	if raw, ok := getPath(m, "styles"); ok {
		d.styles(raw, cfg.Styles)
	}

	if len(d.errs) > 0 {
		return Config{}, errors.Join(d.errs...)
	}
	return cfg, nil
}

// Validate checks settings that decode fine but cannot be used.
func (c Config) Validate() error {
	var errs []error
	invalid := func(path, msg string, value any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value})
	}

	if !logging.ValidLevel(c.Logging.Level) {
		invalid("logging.level", "must be debug, info, warn or error", c.Logging.Level)
	}
	if c.Matching.Timeout < 0 {
		invalid("matching.timeout", "must not be negative", c.Matching.Timeout)
	}
	if c.Lookup.Limit < 0 {
		invalid("lookup.limit", "must not be negative", c.Lookup.Limit)
	}
	if c.Lookup.CacheSize < 0 {
		invalid("lookup.cacheSize", "must not be negative", c.Lookup.CacheSize)
	}
	if c.Lookup.Scoring.Gap < 0 || c.Lookup.Scoring.Leading < 0 {
		invalid("lookup.scoring", "penalties must not be negative", c.Lookup.Scoring)
	}
	if _, err := c.PolicySet(); err != nil {
		invalid("policies", err.Error(), len(c.Policies))
	}

	return errors.Join(errs...)
}

// PolicySet compiles the configured policies.
func (c Config) PolicySet() (*tag.PolicySet, error) {
	policies := make([]tag.Policy, len(c.Policies))
	for i, p := range c.Policies {
		policies[i] = tag.Policy{
			Prefix:        p.Prefix,
			Pattern:       p.Pattern,
			Style:         tag.Style(p.Style),
			AllowAdjacent: p.AllowAdjacent,
		}
	}

	var opts []tag.SetOption
	if c.Matching.Timeout > 0 {
		opts = append(opts, tag.WithMatchTimeout(c.Matching.Timeout))
	}
	return tag.NewPolicySet(policies, opts...)
}

// Kinds maps each policy prefix to its directory entity kind. Policies
// without a kind are left out.
func (c Config) Kinds() map[string]string {
	kinds := make(map[string]string, len(c.Policies))
	for _, p := range c.Policies {
		if p.Kind != "" {
			kinds[p.Prefix] = p.Kind
		}
	}
	return kinds
}

// LoggerConfig returns the logger settings.
func (c Config) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.Logging.Level)
	if c.Logging.Prefix != "" {
		cfg.Prefix = c.Logging.Prefix
	}
	return cfg
}
