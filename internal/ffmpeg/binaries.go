package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

const (
	ffmpegEnv  = "SUBPLAY_FFMPEG_PATH"
	ffprobeEnv = "SUBPLAY_FFPROBE_PATH"
)

// ErrNotFound means ffmpeg or ffprobe is neither configured nor on PATH.
var ErrNotFound = errors.New("ffmpeg binaries not found")

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath BinaryPaths
)

// Ensure locates the binaries once per process.
func Ensure() (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = Locate(os.Getenv, exec.LookPath)
	})
	return ensurePath, ensureErr
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

// Locate resolves binary paths from the environment first, then PATH.
func Locate(getenv func(string) string, lookPath func(string) (string, error)) (BinaryPaths, error) {
	paths := BinaryPaths{
		FFmpeg:  getenv(ffmpegEnv),
		FFprobe: getenv(ffprobeEnv),
	}

	if paths.FFmpeg == "" {
		if found, err := lookPath("ffmpeg"); err == nil {
			paths.FFmpeg = found
		}
	}
	if paths.FFprobe == "" {
		if found, err := lookPath("ffprobe"); err == nil {
			paths.FFprobe = found
		}
	}

	switch {
	case paths.FFmpeg == "" && paths.FFprobe == "":
		return BinaryPaths{}, fmt.Errorf("%w: install ffmpeg or set %s and %s", ErrNotFound, ffmpegEnv, ffprobeEnv)
	case paths.FFmpeg == "":
		return BinaryPaths{}, fmt.Errorf("%w: ffmpeg missing (set %s)", ErrNotFound, ffmpegEnv)
	case paths.FFprobe == "":
		return BinaryPaths{}, fmt.Errorf("%w: ffprobe missing (set %s)", ErrNotFound, ffprobeEnv)
	}
	return paths, nil
}
