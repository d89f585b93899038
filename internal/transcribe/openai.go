package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Transcriber using the OpenAI Whisper API with SRT output
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAITranscriber(
	ctx context.Context,
	apiKey string,
	opts Options,
	clientOpts ...option.RequestOption,
) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, clientOpts...)...)

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// transcribes a media file and returns the SRT produced by Whisper
func (t *OpenAITranscriber) Transcribe(
	ctx context.Context,
	mediaPath string,
) (*Result, error) {
	file, err := os.Open(mediaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open media file: %w", err)
	}
	defer file.Close()

	params := openai.AudioTranscriptionNewParams{
		File:           file,
		Model:          openai.AudioModel(t.model),
		ResponseFormat: openai.AudioResponseFormatSRT,
	}
	if t.options.Language != "" {
		params.Language = openai.String(t.options.Language)
	}
	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	// srt responses are plain text, so take the raw body
	var body []byte
	if _, err := t.client.Audio.Transcriptions.New(
		ctx,
		params,
		option.WithResponseBodyInto(&body),
	); err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	srt := srtFromWhisperBody(body)
	if srt == "" {
		return nil, ErrEmptyTranscript
	}

	return &Result{SRT: srt, Language: t.options.Language}, nil
}

// Whisper answers srt requests with plain text, but some proxies and SDK
// versions wrap it as {"text": "..."}; accept both.
func srtFromWhisperBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") {
		var wrapped struct {
			Text string `json:"text"`
			SRT  string `json:"srt"`
		}
		if err := json.Unmarshal([]byte(trimmed), &wrapped); err == nil {
			if wrapped.SRT != "" {
				return strings.TrimSpace(wrapped.SRT)
			}
			return strings.TrimSpace(wrapped.Text)
		}
	}
	return trimmed
}
