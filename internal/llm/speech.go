package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// ErrNoAudio is returned when the speech model answers without audio data.
var ErrNoAudio = errors.New("no audio in speech response")

// Synthesizer turns text into raw 16-bit mono PCM at SpeechSampleRate.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// SpeechClient synthesizes speech with a Gemini TTS model.
type SpeechClient struct {
	client *genai.Client
	model  string
	voice  string
	retry  RetryPolicy
	log    zerolog.Logger
}

// NewSpeechClient creates a speech client for the Gemini API backend.
func NewSpeechClient(ctx context.Context, config *Config, apiKey string, logger zerolog.Logger) (*SpeechClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultConfig()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	model := config.SpeechModel
	if model == "" {
		model = DefaultSpeechModel
	}
	voice := config.Voice
	if voice == "" {
		voice = DefaultVoice
	}

	return &SpeechClient{
		client: client,
		model:  model,
		voice:  voice,
		retry:  config.Retry,
		log:    logger.With().Str("component", "speech").Logger(),
	}, nil
}

// Synthesize returns the PCM audio for text.
func (c *SpeechClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.voice},
			},
		},
	}

	return withRetry(ctx, c.retry, c.log, "synthesize speech", func(ctx context.Context) ([]byte, error) {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(text), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to synthesize speech: %w", err)
		}
		return extractAudio(resp)
	})
}

func extractAudio(resp *genai.GenerateContentResponse) ([]byte, error) {
	if resp == nil {
		return nil, ErrNoAudio
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, ErrNoAudio
}
