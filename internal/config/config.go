// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Scoring holds every tunable weight and threshold of the recommendation
// heuristics. The defaults are empirical.
type Scoring struct {
	// Term matching blend.
	LexicalWeight  float64 // default 0.3
	SemanticWeight float64 // default 0.5

	// Term matching adjustments.
	EntityConflictPenalty  float64 // default 0.30
	EntityMatchBoost       float64 // default 0.15
	ConceptMatchBoost      float64 // default 0.10
	ConceptMismatchPenalty float64 // default 0.35
	SharedTokenBoost       float64 // default 0.05

	// Term matching filters.
	SuggestionFloor     float64 // default 0.30
	CompetitiveTrigger  float64 // default 0.45
	CompetitiveFraction float64 // default 0.70
	MaxSuggestions      int     // default 5

	// Upstream resolution specificity ladder.
	ExactScore         float64 // default 1.0
	CaseFoldScore      float64 // default 0.95
	SeparatorScore     float64 // default 0.9
	ContainmentScore   float64 // default 0.8
	SingleOptionScore  float64 // default 0.7
	FallbackScore      float64 // default 0.5
	MismatchMultiplier float64 // default 0.3, applied on conflicting concepts

	// Decision bands.
	AutoApplyAbove float64 // default 0.90, exclusive
	ReviewAtLeast  float64 // default 0.70, inclusive

	// Traversal bound.
	MaxDepth int // default 5
}

// DefaultScoring returns the default heuristic parameters.
func DefaultScoring() Scoring {
	return Scoring{
		LexicalWeight:          0.3,
		SemanticWeight:         0.5,
		EntityConflictPenalty:  0.30,
		EntityMatchBoost:       0.15,
		ConceptMatchBoost:      0.10,
		ConceptMismatchPenalty: 0.35,
		SharedTokenBoost:       0.05,
		SuggestionFloor:        0.30,
		CompetitiveTrigger:     0.45,
		CompetitiveFraction:    0.70,
		MaxSuggestions:         5,
		ExactScore:             1.0,
		CaseFoldScore:          0.95,
		SeparatorScore:         0.9,
		ContainmentScore:       0.8,
		SingleOptionScore:      0.7,
		FallbackScore:          0.5,
		MismatchMultiplier:     0.3,
		AutoApplyAbove:         0.90,
		ReviewAtLeast:          0.70,
		MaxDepth:               5,
	}
}

// Validate checks the scoring parameters are internally consistent.
func (s *Scoring) Validate() error {
	if s.ReviewAtLeast > s.AutoApplyAbove {
		return fmt.Errorf("REVIEW_AT_LEAST (%.2f) must not exceed AUTO_APPLY_ABOVE (%.2f)", s.ReviewAtLeast, s.AutoApplyAbove)
	}
	if s.MaxDepth <= 0 {
		return fmt.Errorf("MAX_DEPTH must be positive")
	}
	if s.MismatchMultiplier <= 0 || s.MismatchMultiplier > 1 {
		return fmt.Errorf("MISMATCH_MULTIPLIER must be in (0,1]")
	}
	return nil
}

// Config holds configuration for the steward service, HTTP API, and local
// metastore.
type Config struct {
	MetaDBPath string // path to SQLite metastore file
	ListenAddr string // HTTP listen address (default ":8080")
	LogLevel   string // log level: debug, info, warn, error (default "info")
	Env        string // "development" (default) or "production"

	// Vocabulary and embedding provider.
	Vocabulary        string // default vocabulary name (default "business-glossary")
	EmbeddingEndpoint string // HTTP embedding provider URL; empty disables embeddings
	EmbeddingTimeout  int    // seconds, default 10

	// Concurrency bound for independent per-column/per-table resolution.
	ResolveWorkers int // default 8

	// JWT auth for the /v1 API.
	JWTSecret string

	// Rate limiting.
	RateLimitRPS   float64 // default 50
	RateLimitBurst int     // default 100

	// CORS.
	CORSAllowedOrigins []string // default ["*"]

	// Relationship-hint file (YAML); empty disables hints.
	HintsPath string

	// Cron spec for scheduled bulk propagation; empty disables the scheduler.
	PropagationSchedule string
	// Namespaces the scheduler scans.
	ScheduleNamespaces []string

	Scoring Scoring

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		MetaDBPath:          os.Getenv("META_DB_PATH"),
		ListenAddr:          os.Getenv("LISTEN_ADDR"),
		LogLevel:            os.Getenv("LOG_LEVEL"),
		Env:                 os.Getenv("ENV"),
		Vocabulary:          os.Getenv("VOCABULARY"),
		EmbeddingEndpoint:   os.Getenv("EMBEDDING_ENDPOINT"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		HintsPath:           os.Getenv("HINTS_PATH"),
		PropagationSchedule: os.Getenv("PROPAGATION_SCHEDULE"),
		Scoring:             DefaultScoring(),
	}

	if v := os.Getenv("EMBEDDING_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.EmbeddingTimeout = n
		}
	}
	if v := os.Getenv("RESOLVE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ResolveWorkers = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = origins
	}
	if v := os.Getenv("SCHEDULE_NAMESPACES"); v != "" {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.ScheduleNamespaces = compactNonEmpty(parts)
	}

	loadScoringEnv(&cfg.Scoring)

	// Defaults
	if cfg.MetaDBPath == "" {
		cfg.MetaDBPath = "steward_meta.sqlite"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Vocabulary == "" {
		cfg.Vocabulary = "business-glossary"
	}
	if cfg.EmbeddingTimeout == 0 {
		cfg.EmbeddingTimeout = 10
	}
	if cfg.ResolveWorkers <= 0 {
		cfg.ResolveWorkers = 8
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 50
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 100
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.EmbeddingEndpoint == "" {
		cfg.Warnings = append(cfg.Warnings, "EMBEDDING_ENDPOINT not set, semantic matching falls back to description overlap")
	}

	if err := cfg.Scoring.Validate(); err != nil {
		return nil, err
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production (ENV=production)")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

// loadScoringEnv overrides scoring defaults from STEWARD_* environment
// variables. Unset or malformed values keep the default.
func loadScoringEnv(s *Scoring) {
	f := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = parsed
			}
		}
	}
	f("STEWARD_LEXICAL_WEIGHT", &s.LexicalWeight)
	f("STEWARD_SEMANTIC_WEIGHT", &s.SemanticWeight)
	f("STEWARD_SUGGESTION_FLOOR", &s.SuggestionFloor)
	f("STEWARD_AUTO_APPLY_ABOVE", &s.AutoApplyAbove)
	f("STEWARD_REVIEW_AT_LEAST", &s.ReviewAtLeast)
	f("STEWARD_MISMATCH_MULTIPLIER", &s.MismatchMultiplier)
	if v := os.Getenv("STEWARD_MAX_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.MaxDepth = n
		}
	}
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the
// environment. Lines must be in KEY=VALUE format. Comments (#) and blank
// lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
