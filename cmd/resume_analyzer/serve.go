package main

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-analyzer/internal/config"
	"github.com/jonathan/resume-analyzer/internal/controller"
	"github.com/jonathan/resume-analyzer/internal/fetch"
	"github.com/jonathan/resume-analyzer/internal/logging"
	"github.com/jonathan/resume-analyzer/internal/server"
	"github.com/jonathan/resume-analyzer/internal/server/ratelimit"
	"github.com/jonathan/resume-analyzer/internal/storage"
	"github.com/spf13/cobra"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes workspaces for analyzing résumés against job descriptions.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	log := logging.New(cfg.Env, cfg.LogLevel)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ai, closeAI, err := newAnalyzer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeAI()

	backend, store, closeBackend, err := newBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeBackend()

	archive, err := storage.New(ctx, cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to create upload archive: %w", err)
	}

	pages := fetch.NewImporter(fetch.ImporterOptions{
		Browser: cfg.JobImportBrowser,
		Logger:  log,
	})

	srv := server.New(server.Config{
		Port:     cfg.Port,
		ResetURL: cfg.ResetURLBase,
		IdleTTL:  cfg.WorkspaceIdleTTL,
		Controller: controller.Options{
			AnalysisTimeout:    cfg.AnalysisTimeout,
			ProgressHints:      cfg.ProgressHints,
			PrefetchExtraction: true,
		},
		RateLimit: ratelimit.LoadConfig(),
	}, server.Deps{
		AI:          ai,
		Backend:     backend,
		Persistence: store,
		Pages:       pages,
		Archive:     archive,
		Logger:      log,
	})

	log.Info().
		Str("backend", string(cfg.Backend)).
		Bool("speech", ai.SpeechEnabled()).
		Bool("archive", cfg.S3.Enabled()).
		Msg("starting résumé analyzer")

	return srv.Start()
}
