package main

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-analyzer/internal/analysis"
	"github.com/jonathan/resume-analyzer/internal/config"
	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/llm"
	"github.com/jonathan/resume-analyzer/internal/persistence"
	"github.com/jonathan/resume-analyzer/internal/session"
	"github.com/rs/zerolog"
)

// newAnalyzer builds the model client. Speech is optional: when the speech
// client cannot be created the analyzer runs without it.
func newAnalyzer(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*analysis.Service, func(), error) {
	llmCfg := llm.DefaultConfig().WithMaxRetries(cfg.AIMaxRetries)

	client, err := llm.NewClient(ctx, llmCfg, cfg.GeminiAPIKey, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	opts := []analysis.Option{
		analysis.WithMaxConcurrency(cfg.AIMaxConcurrency),
		analysis.WithLogger(log),
	}
	if speech, err := llm.NewSpeechClient(ctx, llmCfg, cfg.GeminiAPIKey, log); err != nil {
		log.Warn().Err(err).Msg("speech synthesis disabled")
	} else {
		opts = append(opts, analysis.WithSynthesizer(speech))
	}

	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Debug().Err(err).Msg("failed to close LLM client")
		}
	}
	return analysis.New(client, opts...), cleanup, nil
}

// newBackends builds the auth backend and the persistence client for the
// configured BACKEND.
func newBackends(ctx context.Context, cfg *config.Config, log zerolog.Logger) (session.Backend, persistence.Client, func(), error) {
	switch cfg.Backend {
	case config.BackendSupabase:
		client := session.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		return session.NewSupabaseBackendWithClient(client), persistence.NewSupabase(client, 0), func() {}, nil

	case config.BackendLocal:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		passwords, err := config.NewPasswordConfig()
		if err != nil {
			database.Close()
			return nil, nil, nil, fmt.Errorf("failed to create password config: %w", err)
		}
		jwtConfig, err := config.NewJWTConfig()
		if err != nil {
			database.Close()
			return nil, nil, nil, fmt.Errorf("failed to create JWT config: %w", err)
		}

		backend := session.NewLocalBackend(
			database,
			passwords,
			session.NewJWTService(jwtConfig),
			session.LogMailer{Log: log},
			cfg.ResetTokenTTL,
		)
		return backend, persistence.NewPostgres(database, 0), database.Close, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
