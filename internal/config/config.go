// Package config provides configuration loading and validation for the analyzer.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend names the implementation behind the session store and persistence client.
type Backend string

const (
	// BackendLocal keeps accounts and analyses in PostgreSQL.
	BackendLocal Backend = "local"
	// BackendSupabase talks to a hosted Supabase project.
	BackendSupabase Backend = "supabase"
)

// Config holds the process configuration read from the environment.
type Config struct {
	Port     int
	Env      string
	LogLevel string

	Backend         Backend
	DatabaseURL     string
	SupabaseURL     string
	SupabaseAnonKey string

	GeminiAPIKey     string
	AnalysisTimeout  time.Duration
	ProgressHints    []time.Duration
	AIMaxConcurrency int
	AIMaxRetries     int

	WorkspaceIdleTTL time.Duration
	ResetURLBase     string
	ResetTokenTTL    time.Duration

	S3 S3Config

	JobImportBrowser bool
}

// S3Config configures the optional résumé upload archive.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Enabled reports whether an archive bucket is configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// Load reads the configuration from environment variables and validates it.
func Load() (*Config, error) {
	return load((*Config).Validate)
}

// LoadAnalysis reads the configuration but validates only the model
// settings, for commands that need no auth or storage backend.
func LoadAnalysis() (*Config, error) {
	return load((*Config).ValidateAnalysis)
}

func load(validate func(*Config) error) (*Config, error) {
	var errs []string
	fail := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	cfg := &Config{
		Env:             getEnv("ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Backend:         Backend(strings.ToLower(getEnv("BACKEND", string(BackendLocal)))),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SupabaseURL:     strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
		ResetURLBase:    getEnv("RESET_URL_BASE", "http://localhost:8080/recover"),
		S3: S3Config{
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    getEnv("S3_REGION", "auto"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
		},
	}

	var err error
	cfg.Port, err = getEnvInt("PORT", 8080)
	fail(err)
	cfg.AIMaxConcurrency, err = getEnvInt("AI_MAX_CONCURRENCY", 4)
	fail(err)
	cfg.AIMaxRetries, err = getEnvInt("AI_MAX_RETRIES", 2)
	fail(err)
	cfg.AnalysisTimeout, err = getEnvDuration("ANALYSIS_TIMEOUT", 60*time.Second)
	fail(err)
	cfg.WorkspaceIdleTTL, err = getEnvDuration("WORKSPACE_IDLE_TTL", 30*time.Minute)
	fail(err)
	cfg.ResetTokenTTL, err = getEnvDuration("RESET_TOKEN_TTL", time.Hour)
	fail(err)
	cfg.ProgressHints, err = getEnvDurations("PROGRESS_HINTS", []time.Duration{15 * time.Second, 35 * time.Second})
	fail(err)
	cfg.JobImportBrowser, err = getEnvBool("JOB_IMPORT_BROWSER", false)
	fail(err)

	fail(validate(cfg))

	if len(errs) > 0 {
		return nil, fmt.Errorf("config error: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// Validate checks required values and ranges.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLocal:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the local backend")
		}
	case BackendSupabase:
		if c.SupabaseURL == "" || c.SupabaseAnonKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY are required for the supabase backend")
		}
	default:
		return fmt.Errorf("BACKEND must be %q or %q, got %q", BackendLocal, BackendSupabase, c.Backend)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	return c.ValidateAnalysis()
}

// ValidateAnalysis checks the model settings.
func (c *Config) ValidateAnalysis() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.AnalysisTimeout <= 0 {
		return fmt.Errorf("ANALYSIS_TIMEOUT must be positive")
	}
	if c.AIMaxConcurrency < 1 {
		return fmt.Errorf("AI_MAX_CONCURRENCY must be at least 1")
	}
	if c.AIMaxRetries < 0 {
		return fmt.Errorf("AI_MAX_RETRIES must be non-negative")
	}
	return nil
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", key, value)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return d, nil
}

// getEnvDurations parses a comma-separated list such as "15s,35s".
func getEnvDurations(key string, defaultValue []time.Duration) ([]time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	var out []time.Duration
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := time.ParseDuration(part)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid %s: %q", key, value)
		}
		out = append(out, d)
	}
	return out, nil
}
