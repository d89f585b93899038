package transcribe

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyTranscript is returned when a backend answers without SRT text.
var ErrEmptyTranscript = errors.New("transcript contained no SRT text")

// transcription result
type Result struct {
	SRT      string
	Language string
}

// interface for media transcription
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string) (*Result, error)
}

// transcription service provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// transcription options
type Options struct {
	Language string // Source language of audio
	Model    string
	Prompt   string
}

// parses a provider name, defaulting to OpenAI
func ParseProvider(name string) (Provider, error) {
	switch Provider(name) {
	case "", ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderGemini:
		return ProviderGemini, nil
	default:
		return "", fmt.Errorf("unsupported provider: %s", name)
	}
}

// creates transcriber based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
