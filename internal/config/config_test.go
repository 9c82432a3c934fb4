package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setBaseEnv sets the minimum environment for a local backend.
func setBaseEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "BACKEND", "SUPABASE_URL", "SUPABASE_ANON_KEY", "API_KEY",
		"ANALYSIS_TIMEOUT", "PROGRESS_HINTS", "AI_MAX_CONCURRENCY", "AI_MAX_RETRIES",
		"WORKSPACE_IDLE_TTL", "RESET_URL_BASE", "RESET_TOKEN_TTL", "S3_BUCKET", "JOB_IMPORT_BROWSER",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("DATABASE_URL", "postgres://localhost/analyzer")
	t.Setenv("GEMINI_API_KEY", "test-key")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, BackendLocal, cfg.Backend)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 60*time.Second, cfg.AnalysisTimeout)
	assert.Equal(t, []time.Duration{15 * time.Second, 35 * time.Second}, cfg.ProgressHints)
	assert.Equal(t, 4, cfg.AIMaxConcurrency)
	assert.Equal(t, 2, cfg.AIMaxRetries)
	assert.Equal(t, 30*time.Minute, cfg.WorkspaceIdleTTL)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.False(t, cfg.S3.Enabled())
	assert.False(t, cfg.JobImportBrowser)
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("ANALYSIS_TIMEOUT", "90s")
	t.Setenv("PROGRESS_HINTS", "5s, 10s")
	t.Setenv("S3_BUCKET", "resumes")
	t.Setenv("JOB_IMPORT_BROWSER", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 90*time.Second, cfg.AnalysisTimeout)
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second}, cfg.ProgressHints)
	assert.True(t, cfg.S3.Enabled())
	assert.Equal(t, "auto", cfg.S3.Region)
	assert.True(t, cfg.JobImportBrowser)
}

func TestLoad_APIKeyAlias(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "alias-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "alias-key", cfg.GeminiAPIKey)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing database url",
			env:     map[string]string{"DATABASE_URL": ""},
			wantErr: "DATABASE_URL is required",
		},
		{
			name:    "missing api key",
			env:     map[string]string{"GEMINI_API_KEY": ""},
			wantErr: "GEMINI_API_KEY is required",
		},
		{
			name:    "supabase without credentials",
			env:     map[string]string{"BACKEND": "supabase"},
			wantErr: "SUPABASE_URL and SUPABASE_ANON_KEY are required",
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"BACKEND": "firebase"},
			wantErr: "BACKEND must be",
		},
		{
			name:    "bad port",
			env:     map[string]string{"PORT": "eighty"},
			wantErr: "invalid PORT",
		},
		{
			name:    "bad duration",
			env:     map[string]string{"ANALYSIS_TIMEOUT": "a minute"},
			wantErr: "invalid ANALYSIS_TIMEOUT",
		},
		{
			name:    "bad hints",
			env:     map[string]string{"PROGRESS_HINTS": "15s,-1s"},
			wantErr: "invalid PROGRESS_HINTS",
		},
		{
			name:    "zero concurrency",
			env:     map[string]string{"AI_MAX_CONCURRENCY": "0"},
			wantErr: "AI_MAX_CONCURRENCY must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_SupabaseBackend(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BACKEND", "Supabase")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co/")
	t.Setenv("SUPABASE_ANON_KEY", "anon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendSupabase, cfg.Backend)
	assert.Equal(t, "https://project.supabase.co", cfg.SupabaseURL)
}

func TestLoadAnalysis_IgnoresBackend(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)

	cfg, err := LoadAnalysis()
	require.NoError(t, err)
	assert.Equal(t, "test-key", cfg.GeminiAPIKey)

	t.Setenv("GEMINI_API_KEY", "")
	_, err = LoadAnalysis()
	assert.ErrorContains(t, err, "GEMINI_API_KEY")
}
