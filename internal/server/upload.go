package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/subplay/internal/media"
)

// multipart fields accepted for the media file; "video" is the legacy name
var uploadFields = []string{"file", "video"}

// slack for multipart boundaries and headers on top of the file limit
const multipartOverhead = 1 << 20

type upload struct {
	path        string
	name        string
	contentType string
	size        int64
}

type uploadError struct {
	status  int
	message string
}

func (e *uploadError) Error() string {
	return e.message
}

func badUpload(status int, format string, args ...any) error {
	return &uploadError{status: status, message: fmt.Sprintf(format, args...)}
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := s.logger.With("request_id", requestIDFrom(ctx))

	up, err := s.receiveUpload(w, r)
	if err != nil {
		var ue *uploadError
		if errors.As(err, &ue) {
			log.Warnw("rejected upload", "status", ue.status, "error", ue.message)
			writeError(w, ue.status, ue.message)
			return
		}
		log.Errorw("failed to store upload", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer os.Remove(up.path)

	log.Infow("received upload",
		"name", up.name,
		"type", up.contentType,
		"size", media.HumanSize(up.size),
	)

	mediaPath := up.path
	if s.opts.ExtractAudio && media.IsVideoFile(up.name) {
		audioPath := strings.TrimSuffix(up.path, filepath.Ext(up.path)) + ".mp3"
		if err := s.extract(ctx, up.path, audioPath); err != nil {
			log.Errorw("audio extraction failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer os.Remove(audioPath)
		mediaPath = audioPath
	}

	result, err := s.transcriber.Transcribe(ctx, mediaPath)
	if err != nil {
		log.Errorw("transcription failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.Infow("transcription complete", "bytes", len(result.SRT))

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, map[string]string{"srt": result.SRT})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, result.SRT)
}

// streams the media part to a temp file in the upload dir
func (s *Server) receiveUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+multipartOverhead)

	reader, err := r.MultipartReader()
	if err != nil {
		return nil, badUpload(http.StatusBadRequest, "expected multipart/form-data upload")
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, badUpload(http.StatusBadRequest, "no file received in field %q", uploadFields[0])
		}
		if err != nil {
			return nil, uploadReadError(err)
		}
		if !isUploadField(part.FormName()) || part.FileName() == "" {
			_ = part.Close()
			continue
		}
		return s.storePart(part)
	}
}

func (s *Server) storePart(part *multipart.Part) (*upload, error) {
	defer part.Close()

	name := filepath.Base(part.FileName())
	contentType := part.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = media.ContentType(name)
	}
	if !media.IsMediaType(contentType) {
		return nil, badUpload(http.StatusBadRequest, "only video or audio files can be uploaded (got %s)", contentType)
	}

	if err := os.MkdirAll(s.opts.UploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	file, err := os.CreateTemp(s.opts.UploadDir, "upload-*"+strings.ToLower(filepath.Ext(name)))
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}

	n, copyErr := io.Copy(file, io.LimitReader(part, s.opts.MaxUploadBytes+1))
	closeErr := file.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		os.Remove(file.Name())
		return nil, uploadReadError(err)
	}
	if n > s.opts.MaxUploadBytes {
		os.Remove(file.Name())
		return nil, tooLarge(s.opts.MaxUploadBytes)
	}

	return &upload{path: file.Name(), name: name, contentType: contentType, size: n}, nil
}

func isUploadField(name string) bool {
	for _, field := range uploadFields {
		if name == field {
			return true
		}
	}
	return false
}

func uploadReadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return tooLarge(maxErr.Limit - multipartOverhead)
	}
	return badUpload(http.StatusBadRequest, "failed to read upload: %v", err)
}

func tooLarge(limit int64) error {
	return badUpload(http.StatusRequestEntityTooLarge, "file exceeds the %s upload limit", media.HumanSize(limit))
}
