package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mgpai22/subplay/internal/logging"
	"github.com/mgpai22/subplay/internal/transcribe"
)

const sampleSRT = "1\n00:00:01,000 --> 00:00:02,000\nHello\n"

type fakeTranscriber struct {
	mu      sync.Mutex
	srt     string
	err     error
	paths   []string
	payload []byte
}

func (f *fakeTranscriber) Transcribe(_ context.Context, mediaPath string) (*transcribe.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, mediaPath)
	data, err := os.ReadFile(mediaPath)
	if err != nil {
		return nil, err
	}
	f.payload = data
	if f.err != nil {
		return nil, f.err
	}
	return &transcribe.Result{SRT: f.srt}, nil
}

func newTestServer(t *testing.T, tr transcribe.Transcriber, opts Options, extra ...Option) (*Server, string) {
	t.Helper()
	if opts.UploadDir == "" {
		opts.UploadDir = filepath.Join(t.TempDir(), "uploads")
	}
	return New(tr, opts, logging.NewNop(), extra...), opts.UploadDir
}

func multipartRequest(t *testing.T, target, field, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("note", "ignored"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response is not a JSON error: %q", rec.Body.String())
	}
	return payload.Error
}

func assertUploadDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("upload dir not cleaned up: %d entries left", len(entries))
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranscriber{}, Options{})
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"ok":true}` {
		t.Errorf("body = %q", rec.Body.String())
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("missing request id header")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranscriber{}, Options{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")

	if got := serve(s, req).Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestPreflight(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranscriber{}, Options{})
	rec := serve(s, httptest.NewRequest(http.MethodOptions, "/transcribe", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Errorf("allow methods = %q", rec.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestTranscribeReturnsPlainSRT(t *testing.T) {
	fake := &fakeTranscriber{srt: sampleSRT}
	s, dir := newTestServer(t, fake, Options{})

	rec := serve(s, multipartRequest(t, "/transcribe", "file", "clip.mp4", "video/mp4", []byte("video-bytes")))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.String() != sampleSRT {
		t.Errorf("body = %q", rec.Body.String())
	}
	if string(fake.payload) != "video-bytes" {
		t.Errorf("transcriber saw %q", fake.payload)
	}
	if len(fake.paths) != 1 || filepath.Ext(fake.paths[0]) != ".mp4" {
		t.Errorf("unexpected media paths %v", fake.paths)
	}
	assertUploadDirEmpty(t, dir)
}

func TestTranscribeJSONFormat(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranscriber{srt: sampleSRT}, Options{})

	rec := serve(s, multipartRequest(t, "/transcribe?format=json", "file", "clip.webm", "video/webm", []byte("x")))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload struct {
		SRT string `json:"srt"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.SRT != sampleSRT {
		t.Errorf("srt = %q", payload.SRT)
	}
}

func TestTranscribeAcceptsLegacyField(t *testing.T) {
	fake := &fakeTranscriber{srt: sampleSRT}
	s, _ := newTestServer(t, fake, Options{})

	rec := serve(s, multipartRequest(t, "/transcribe", "video", "old.mov", "video/quicktime", []byte("legacy")))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if string(fake.payload) != "legacy" {
		t.Errorf("transcriber saw %q", fake.payload)
	}
}

func TestTranscribeInfersTypeFromExtension(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranscriber{srt: sampleSRT}, Options{})

	rec := serve(s, multipartRequest(t, "/transcribe", "file", "talk.m4a", "application/octet-stream", []byte("a")))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
}

func TestTranscribeRejectsBadUploads(t *testing.T) {
	tests := []struct {
		name   string
		req    func(t *testing.T) *http.Request
		status int
		want   string
	}{
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/transcribe", strings.NewReader(`{"file": "x"}`))
				r.Header.Set("Content-Type", "application/json")
				return r
			},
			status: http.StatusBadRequest,
			want:   "multipart",
		},
		{
			name: "wrong field",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/transcribe", "upload", "clip.mp4", "video/mp4", []byte("x"))
			},
			status: http.StatusBadRequest,
			want:   "no file received",
		},
		{
			name: "not a media file",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/transcribe", "file", "notes.txt", "text/plain", []byte("x"))
			},
			status: http.StatusBadRequest,
			want:   "only video or audio",
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/transcribe", "file", "big.mp4", "video/mp4", bytes.Repeat([]byte("v"), 2048))
			},
			status: http.StatusRequestEntityTooLarge,
			want:   "upload limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeTranscriber{srt: sampleSRT}
			s, dir := newTestServer(t, fake, Options{MaxUploadBytes: 1024})

			rec := serve(s, tt.req(t))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %q)", rec.Code, tt.status, rec.Body.String())
			}
			if msg := decodeError(t, rec); !strings.Contains(msg, tt.want) {
				t.Errorf("error = %q, want it to mention %q", msg, tt.want)
			}
			if len(fake.paths) != 0 {
				t.Error("transcriber should not be called")
			}
			assertUploadDirEmpty(t, dir)
		})
	}
}

func TestTranscribeFailureIsServerError(t *testing.T) {
	fake := &fakeTranscriber{err: errors.New("OPENAI_API_KEY is not set")}
	s, dir := newTestServer(t, fake, Options{})

	rec := serve(s, multipartRequest(t, "/transcribe", "file", "clip.mp4", "video/mp4", []byte("x")))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "OPENAI_API_KEY is not set" {
		t.Errorf("error = %q", msg)
	}
	assertUploadDirEmpty(t, dir)
}

func TestUnavailableTranscriber(t *testing.T) {
	s, _ := newTestServer(t, Unavailable(errors.New("API key is required")), Options{})

	rec := serve(s, multipartRequest(t, "/transcribe", "file", "clip.mp4", "video/mp4", []byte("x")))

	if rec.Code != http.StatusInternalServerError || decodeError(t, rec) != "API key is required" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestTranscribeExtractsAudio(t *testing.T) {
	fake := &fakeTranscriber{srt: sampleSRT}
	var extracted []string
	extract := func(_ context.Context, in, out string) error {
		extracted = append(extracted, in)
		return os.WriteFile(out, []byte("audio-only"), 0644)
	}
	s, dir := newTestServer(t, fake, Options{ExtractAudio: true}, WithExtractFunc(extract))

	rec := serve(s, multipartRequest(t, "/transcribe", "file", "clip.mkv", "video/x-matroska", []byte("video")))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rec.Code, rec.Body.String())
	}
	if len(extracted) != 1 {
		t.Fatalf("expected one extraction, got %d", len(extracted))
	}
	if string(fake.payload) != "audio-only" || filepath.Ext(fake.paths[0]) != ".mp3" {
		t.Errorf("transcriber got %q from %v", fake.payload, fake.paths)
	}
	assertUploadDirEmpty(t, dir)
}

func TestTranscribeSkipsExtractionForAudio(t *testing.T) {
	called := false
	extract := func(context.Context, string, string) error {
		called = true
		return nil
	}
	s, _ := newTestServer(t, &fakeTranscriber{srt: sampleSRT}, Options{ExtractAudio: true}, WithExtractFunc(extract))

	rec := serve(s, multipartRequest(t, "/transcribe", "file", "talk.mp3", "audio/mpeg", []byte("a")))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if called {
		t.Error("audio uploads should not be extracted")
	}
}

func TestTranscribeExtractionFailure(t *testing.T) {
	extract := func(context.Context, string, string) error {
		return errors.New("ffmpeg extraction failed: exit status 1")
	}
	fake := &fakeTranscriber{srt: sampleSRT}
	s, _ := newTestServer(t, fake, Options{ExtractAudio: true}, WithExtractFunc(extract))

	rec := serve(s, multipartRequest(t, "/transcribe", "file", "clip.mp4", "video/mp4", []byte("x")))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(fake.paths) != 0 {
		t.Error("transcriber should not run after a failed extraction")
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranscriber{srt: sampleSRT}, Options{ShutdownTimeout: time.Second})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, listener)
	}()

	client := transcribe.NewClient("http://" + listener.Addr().String())
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("health over the network failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("video"), 0644); err != nil {
		t.Fatalf("write media: %v", err)
	}
	result, err := client.Transcribe(context.Background(), path)
	if err != nil {
		t.Fatalf("client transcribe failed: %v", err)
	}
	if result.SRT != sampleSRT {
		t.Errorf("SRT = %q", result.SRT)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
