package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/subplay/internal/media"
)

const (
	// multipart field the proxy reads the upload from
	UploadField = "file"

	defaultClientTimeout = 30 * time.Minute
	maxErrorBodyBytes    = 64 << 10
)

// StatusError is a non-2xx answer from the transcription proxy.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error %d", e.Code)
	}
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// Client uploads media to a transcription proxy and returns its SRT.
// It satisfies Transcriber.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption customizes the client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: defaultClientTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// endpoint uploads are posted to
func (c *Client) Endpoint() string {
	return c.baseURL + "/transcribe"
}

// Transcribe posts mediaPath as multipart field "file" to {base}/transcribe.
// A JSON response must carry the transcript in "srt"; any other content
// type is taken as raw SRT text.
func (c *Client) Transcribe(ctx context.Context, mediaPath string) (*Result, error) {
	file, err := os.Open(mediaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open media file: %w", err)
	}
	defer file.Close()

	body, contentType := multipartBody(file, filepath.Base(mediaPath))
	defer body.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	srt, err := decodeTranscriptResponse(resp)
	if err != nil {
		return nil, err
	}
	return &Result{SRT: srt}, nil
}

// Health checks GET {base}/health.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}
	var payload struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}
	if !payload.OK {
		return errors.New("transcription service reported not ok")
	}
	return nil
}

// streams the upload so large videos are never held in memory
func multipartBody(file io.Reader, name string) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(
			`form-data; name=%q; filename=%q`, UploadField, name,
		))
		header.Set("Content-Type", media.ContentType(name))

		part, err := mw.CreatePart(header)
		if err == nil {
			_, err = io.Copy(part, file)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	return pr, mw.FormDataContentType()
}

func isJSON(resp *http.Response) bool {
	return strings.Contains(resp.Header.Get("Content-Type"), "application/json")
}

func decodeTranscriptResponse(resp *http.Response) (string, error) {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError(resp)
	}

	var srt string
	if isJSON(resp) {
		var payload struct {
			SRT string `json:"srt"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return "", fmt.Errorf("decode transcript response: %w", err)
		}
		srt = payload.SRT
	} else {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("read transcript response: %w", err)
		}
		srt = string(data)
	}

	if strings.TrimSpace(srt) == "" {
		return "", ErrEmptyTranscript
	}
	return srt, nil
}

// builds a StatusError, taking the message from a JSON {"error": ...} body
func statusError(resp *http.Response) error {
	statusErr := &StatusError{Code: resp.StatusCode}
	if !isJSON(resp) {
		return statusErr
	}

	var payload struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err := json.Unmarshal(data, &payload); err == nil {
		statusErr.Message = payload.Error
	}
	return statusErr
}
