package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/mgpai22/subplay/internal/subtitle"
	"google.golang.org/genai"
)

var jsonFenceRegex = regexp.MustCompile("```(?:json)?\\s*")

// implements Transcriber using Google Gemini. Gemini has no SRT output, so
// timed segments are requested as JSON and rendered to SRT locally.
type GeminiTranscriber struct {
	client    *genai.Client
	model     string
	options   Options
	generator subtitle.Generator
}

// segment from Gemini's JSON response
type transcriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

func NewGeminiTranscriber(ctx context.Context, apiKey string, opts Options) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiTranscriber{
		client:    client,
		model:     model,
		options:   opts,
		generator: subtitle.NewDefaultGenerator(),
	}, nil
}

func (t *GeminiTranscriber) Transcribe(ctx context.Context, mediaPath string) (*Result, error) {
	if _, err := os.Stat(mediaPath); err != nil {
		return nil, fmt.Errorf("media file not found: %w", err)
	}

	uploaded, err := t.client.Files.UploadFromPath(ctx, mediaPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upload media file: %w", err)
	}
	defer func() {
		_, _ = t.client.Files.Delete(ctx, uploaded.Name, nil)
	}()

	parts := []*genai.Part{
		genai.NewPartFromText(t.buildTranscriptionPrompt()),
		genai.NewPartFromURI(uploaded.URI, uploaded.MIMEType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	segments, err := parseSegments(resp.Text())
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcription: %w", err)
	}

	cues, err := t.generator.Generate(segments)
	if err != nil {
		return nil, fmt.Errorf("failed to build cues: %w", err)
	}
	if len(cues) == 0 {
		return nil, ErrEmptyTranscript
	}

	return &Result{
		SRT:      (&subtitle.SRTWriter{}).Render(cues),
		Language: t.options.Language,
	}, nil
}

// creates the prompt for transcription
func (t *GeminiTranscriber) buildTranscriptionPrompt() string {
	var sb strings.Builder

	sb.WriteString("Generate a detailed transcript of this recording. ")
	sb.WriteString("For each sentence or phrase, provide the start timestamp, end timestamp, and the exact text spoken. ")
	sb.WriteString("Format your response as a JSON array with objects containing 'start', 'end', and 'text' fields, ")
	sb.WriteString("where 'start' and 'end' are timestamps in seconds (as numbers). ")

	if t.options.Language != "" {
		fmt.Fprintf(&sb, "The audio is in %s. ", t.options.Language)
	}
	if t.options.Prompt != "" {
		sb.WriteString(t.options.Prompt)
		sb.WriteString(" ")
	}

	sb.WriteString("Return ONLY the JSON array, no other text or markdown formatting.")
	return sb.String()
}

// parses the model's JSON array of segments, tolerating code fences and
// chatter around the array
func parseSegments(text string) ([]subtitle.Segment, error) {
	text = strings.TrimSpace(jsonFenceRegex.ReplaceAllString(text, ""))
	text = strings.ReplaceAll(text, "```", "")
	if text == "" {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in response: %s", truncateString(text, 200))
	}

	var raw []transcriptSegment
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w (response: %s)", err, truncateString(text, 200))
	}

	segments := make([]subtitle.Segment, 0, len(raw))
	for _, s := range raw {
		segments = append(segments, subtitle.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}
	return segments, nil
}

// truncates a string to maxLen bytes
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
