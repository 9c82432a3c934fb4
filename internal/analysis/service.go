// Package analysis is the AI client of the analyzer. It turns raw résumé text
// into ResumeData, scores it against a job, and produces the interview
// question and the spoken briefing.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/jonathan/resume-analyzer/internal/ingestion"
	"github.com/jonathan/resume-analyzer/internal/llm"
	"github.com/jonathan/resume-analyzer/internal/prompts"
	"github.com/jonathan/resume-analyzer/internal/schemas"
	"github.com/jonathan/resume-analyzer/internal/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// Input bounds, in runes.
const (
	MaxResumeRunes         = 8000
	MaxProjectionRunes     = 6000
	MaxJobDescriptionRunes = 4000
	MaxSpeechRunes         = 1000
)

// PlaceholderName marks a résumé whose parse produced no usable name.
const PlaceholderName = "Candidate Elite"

// DefaultMaxConcurrency bounds simultaneous model calls when no option is given.
const DefaultMaxConcurrency = 4

// Service calls the model on behalf of every workspace in the process.
type Service struct {
	client llm.Client
	speech llm.Synthesizer
	sem    *semaphore.Weighted
	log    zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithSynthesizer enables speech synthesis.
func WithSynthesizer(s llm.Synthesizer) Option {
	return func(svc *Service) { svc.speech = s }
}

// WithMaxConcurrency bounds simultaneous model calls.
func WithMaxConcurrency(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(svc *Service) { svc.log = log.With().Str("component", "analysis").Logger() }
}

// New creates a Service over client.
func New(client llm.Client, opts ...Option) *Service {
	svc := &Service{
		client: client,
		sem:    semaphore.NewWeighted(DefaultMaxConcurrency),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// PlaceholderResume is the parse used when extraction fails.
func PlaceholderResume() types.ResumeData {
	r := types.ResumeData{Name: PlaceholderName}
	r.Normalize()
	return r
}

// IsPlaceholder reports whether r carries no real parse.
func IsPlaceholder(r *types.ResumeData) bool {
	if r == nil {
		return true
	}
	name := strings.TrimSpace(r.Name)
	return name == "" || name == PlaceholderName
}

// ExtractResume parses raw résumé text. It never fails: any error is logged
// and the placeholder résumé is returned.
func (s *Service) ExtractResume(ctx context.Context, raw string) types.ResumeData {
	r, err := s.extract(ctx, raw)
	if err != nil {
		s.log.Warn().Err(&ExtractionError{Cause: err}).Msg("resume extraction fell back to placeholder")
		return PlaceholderResume()
	}
	return r
}

func (s *Service) extract(ctx context.Context, raw string) (types.ResumeData, error) {
	text := llm.Truncate(strings.ToValidUTF8(ingestion.CleanText(raw), ""), MaxResumeRunes)
	if strings.TrimSpace(text) == "" {
		return types.ResumeData{}, ErrEmptyInput
	}

	prompt, err := prompts.Render(prompts.KeyExtractResume, map[string]string{"ResumeText": text})
	if err != nil {
		return types.ResumeData{}, err
	}

	resp, err := s.generateJSON(ctx, prompt, llm.TierStandard, llm.ResumeDataSchema())
	if err != nil {
		return types.ResumeData{}, err
	}

	doc, err := llm.ExtractJSONObject(resp)
	if err != nil {
		return types.ResumeData{}, err
	}
	s.checkSchema(schemas.ValidateResumeData(doc), "resume data")

	r := decodeResumeData(doc)
	if strings.TrimSpace(r.Name) == "" {
		r.Name = PlaceholderName
	}
	return r, nil
}

// ScoreResume evaluates resume against the target job. Failures of any kind
// are returned as *AnalysisError.
func (s *Service) ScoreResume(ctx context.Context, resume types.ResumeData, jobTitle, jobDescription string) (types.AnalysisResult, error) {
	projection, err := resumeProjection(resume)
	if err != nil {
		return types.AnalysisResult{}, newAnalysisError(err)
	}

	prompt, err := prompts.Render(prompts.KeyScoreResume, map[string]string{
		"JobTitle":       strings.TrimSpace(jobTitle),
		"JobDescription": llm.Truncate(strings.TrimSpace(jobDescription), MaxJobDescriptionRunes),
		"ResumeContext":  projection,
	})
	if err != nil {
		return types.AnalysisResult{}, newAnalysisError(err)
	}

	resp, err := s.generateJSON(ctx, prompt, llm.TierStandard, llm.AnalysisResultSchema())
	if err != nil {
		return types.AnalysisResult{}, newAnalysisError(err)
	}

	doc, err := llm.ExtractJSONObject(resp)
	if err != nil {
		return types.AnalysisResult{}, newAnalysisError(err)
	}
	s.checkSchema(schemas.ValidateAnalysisResult(doc), "analysis result")

	result := decodeAnalysisResult(doc)
	if result.VoiceBriefingText == "" {
		result.VoiceBriefingText = Briefing(result, jobTitle)
	}
	return result, nil
}

// GenerateInterviewQuestion asks for one opening interview question. It
// falls back to a fixed question on any failure.
func (s *Service) GenerateInterviewQuestion(ctx context.Context, jobTitle, jobDescription string) string {
	prompt, err := prompts.Render(prompts.KeyInterviewQuestion, map[string]string{
		"JobTitle":       strings.TrimSpace(jobTitle),
		"JobDescription": llm.Truncate(strings.TrimSpace(jobDescription), MaxJobDescriptionRunes),
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("interview prompt unavailable")
		return FallbackInterviewQuestion
	}

	var question string
	err = s.withSlot(ctx, func() error {
		var genErr error
		question, genErr = s.client.GenerateContent(ctx, prompt, llm.TierLite)
		return genErr
	})
	question = strings.TrimSpace(question)
	if err != nil || question == "" {
		s.log.Warn().Err(err).Msg("interview question fell back to default")
		return FallbackInterviewQuestion
	}
	return question
}

// SynthesizeSpeech returns raw 24 kHz 16-bit mono PCM for text.
func (s *Service) SynthesizeSpeech(ctx context.Context, text string) ([]byte, error) {
	if s.speech == nil {
		return nil, ErrSpeechUnavailable
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}
	text = llm.Truncate(text, MaxSpeechRunes)

	var audio []byte
	err := s.withSlot(ctx, func() error {
		var synthErr error
		audio, synthErr = s.speech.Synthesize(ctx, text)
		return synthErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}
	return audio, nil
}

// SpeechEnabled reports whether a synthesizer is configured.
func (s *Service) SpeechEnabled() bool {
	return s.speech != nil
}

func (s *Service) generateJSON(ctx context.Context, prompt string, tier llm.ModelTier, schema *genai.Schema) (string, error) {
	var resp string
	err := s.withSlot(ctx, func() error {
		var genErr error
		resp, genErr = s.client.GenerateJSON(ctx, prompt, tier, schema)
		return genErr
	})
	return resp, err
}

// withSlot runs fn while holding one unit of the process-wide model budget.
func (s *Service) withSlot(ctx context.Context, fn func() error) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)
	return fn()
}

func (s *Service) checkSchema(err error, doc string) {
	if err == nil {
		return
	}
	var vErr *schemas.ValidationError
	if errors.As(err, &vErr) {
		s.log.Warn().Int("violations", len(vErr.Errors)).Str("document", doc).Msg("model output deviates from schema; coercing")
		return
	}
	s.log.Warn().Err(err).Str("document", doc).Msg("schema check skipped")
}

type projectedExperience struct {
	Role string `json:"role"`
	Desc string `json:"desc"`
}

type projection struct {
	Summary    string                `json:"summary"`
	Skills     []string              `json:"skills"`
	Experience []projectedExperience `json:"experience"`
}

// resumeProjection is the compact résumé view sent for scoring.
func resumeProjection(r types.ResumeData) (string, error) {
	r.Normalize()
	p := projection{
		Summary:    r.Summary,
		Skills:     r.Skills,
		Experience: make([]projectedExperience, 0, len(r.Experience)),
	}
	for _, e := range r.Experience {
		p.Experience = append(p.Experience, projectedExperience{
			Role: e.Role,
			Desc: strings.Join(e.Description, " "),
		})
	}

	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode resume projection: %w", err)
	}
	return llm.Truncate(string(data), MaxProjectionRunes), nil
}

// Briefing builds a spoken summary from the scores.
func Briefing(result types.AnalysisResult, jobTitle string) string {
	focus := "Your skills already line up well with this role."
	if len(result.MissingKeywords) > 0 {
		top := result.MissingKeywords
		if len(top) > 3 {
			top = top[:3]
		}
		focus = "Focus first on " + strings.Join(top, ", ") + "."
	}

	template, err := prompts.Get(prompts.AnalysisFile, prompts.KeyVoiceFallback)
	if err != nil {
		return focus
	}
	title := strings.TrimSpace(jobTitle)
	if title == "" {
		title = "target"
	}
	return prompts.Format(template, map[string]string{
		"ATSScore":          fmt.Sprint(result.ATSScore),
		"KeywordMatchScore": fmt.Sprint(result.KeywordMatchScore),
		"JobTitle":          title,
		"Focus":             focus,
	})
}
