package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jonathan/resume-analyzer/internal/analysis"
	"github.com/jonathan/resume-analyzer/internal/config"
	"github.com/jonathan/resume-analyzer/internal/controller"
	"github.com/jonathan/resume-analyzer/internal/fetch"
	"github.com/jonathan/resume-analyzer/internal/ingestion"
	"github.com/jonathan/resume-analyzer/internal/logging"
	"github.com/jonathan/resume-analyzer/internal/observability"
	"github.com/jonathan/resume-analyzer/internal/types"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a résumé against a job description",
	Long:  "Run one analysis without the server and print the scores, the tailored summary and the learning roadmap.",
	RunE:  runAnalyze,
}

var (
	resumeFile  string
	jobTitle    string
	jobDescFile string
	jobURL      string
	jsonOutput  bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&resumeFile, "resume", "r", "", "Path to the résumé (.txt, .md, .pdf or .docx)")
	analyzeCmd.Flags().StringVarP(&jobTitle, "job-title", "t", "", "Target job title")
	analyzeCmd.Flags().StringVarP(&jobDescFile, "job-description", "d", "", "Path to a text file with the job description")
	analyzeCmd.Flags().StringVarP(&jobURL, "job-url", "u", "", "URL of the job posting to import")
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")

	analyzeCmd.MarkFlagRequired("resume")

	rootCmd.AddCommand(analyzeCmd)
}

// analyzeInput is the draft submitted by the analyze command.
type analyzeInput struct {
	ResumeText     string
	JobTitle       string
	JobDescription string
}

// analyzeReport is the JSON output of the analyze command.
type analyzeReport struct {
	JobTitle       string                `json:"job_title"`
	ResumeData     *types.ResumeData     `json:"resume_data"`
	AnalysisResult *types.AnalysisResult `json:"analysis_result"`
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	if jobDescFile == "" && jobURL == "" {
		return fmt.Errorf("either --job-description or --job-url must be provided")
	}
	if jobDescFile != "" && jobURL != "" {
		return fmt.Errorf("--job-description and --job-url are mutually exclusive; provide only one")
	}

	cfg, err := config.LoadAnalysis()
	if err != nil {
		return err
	}
	log := logging.New(cfg.Env, cfg.LogLevel).Level(zerolog.WarnLevel)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	input := analyzeInput{JobTitle: jobTitle}
	if input.ResumeText, err = readResume(resumeFile); err != nil {
		return err
	}

	if jobURL != "" {
		importer := fetch.NewImporter(fetch.ImporterOptions{Browser: cfg.JobImportBrowser, Logger: log})
		posting, err := ingestion.ImportJobPosting(ctx, importer, jobURL)
		if err != nil {
			return err
		}
		input.JobDescription = posting.Description
		if input.JobTitle == "" {
			input.JobTitle = posting.Title
		}
	} else {
		data, err := os.ReadFile(jobDescFile)
		if err != nil {
			return fmt.Errorf("failed to read job description: %w", err)
		}
		input.JobDescription = ingestion.CleanText(string(data))
	}

	ai, closeAI, err := newAnalyzer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeAI()

	opts := controller.Options{
		AnalysisTimeout: cfg.AnalysisTimeout,
		ProgressHints:   cfg.ProgressHints,
	}
	return analyze(ctx, ai, input, opts, log, cmd.OutOrStdout(), cmd.ErrOrStderr(), jsonOutput)
}

func readResume(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read résumé: %w", err)
	}
	return ingestion.ExtractResumeText(filepath.Base(path), "", data)
}

// analyze runs one controller attempt and writes the report to out. Progress
// hints go to progress. Validation, analysis and timeout failures are
// returned as errors carrying the message the user would see.
func analyze(ctx context.Context, ai controller.Analyzer, input analyzeInput, opts controller.Options, log zerolog.Logger, out, progress io.Writer, asJSON bool) error {
	ctrl := controller.New(controller.Deps{Analyzer: ai, Logger: log}, opts)
	defer ctrl.Close()

	var (
		mu       sync.Mutex
		lastHint string
	)
	unsubscribe := ctrl.Subscribe(func(snap controller.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if snap.Progress != "" && snap.Progress != lastHint {
			lastHint = snap.Progress
			fmt.Fprintln(progress, snap.Progress)
		}
	})
	defer unsubscribe()

	ctrl.Start()
	ctrl.SubmitResume(input.ResumeText)
	ctrl.SetJobTitle(input.JobTitle)
	ctrl.SetJobDescription(input.JobDescription)

	if err := ctrl.Analyze(ctx); err != nil {
		return err
	}

	snap, err := ctrl.Await(ctx)
	if err != nil {
		return describeFailure(err)
	}
	if !snap.HasResult() {
		return errors.New(analysis.AnalysisFailedMessage)
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(analyzeReport{
			JobTitle:       strings.TrimSpace(input.JobTitle),
			ResumeData:     snap.ResumeData,
			AnalysisResult: snap.AnalysisResult,
		})
	}

	observability.NewPrinter(out).PrintAnalysis(input.JobTitle, snap.ResumeData, snap.AnalysisResult)
	return nil
}

func describeFailure(err error) error {
	var timeoutErr *controller.TimeoutError
	if errors.As(err, &timeoutErr) {
		return errors.New(timeoutErr.UserMessage())
	}
	return err
}
