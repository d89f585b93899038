package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Client configures the CLI side that talks to the transcription proxy.
type Client struct {
	APIBase        string `toml:"api_base"`
	TimeoutMinutes int    `toml:"timeout_minutes"`
}

// Server configures the transcription proxy.
type Server struct {
	Port            int    `toml:"port"`
	UploadDir       string `toml:"upload_dir"`
	MaxUploadMB     int64  `toml:"max_upload_mb"`
	ExtractAudio    bool   `toml:"extract_audio"`
	Provider        string `toml:"provider"`
	Model           string `toml:"model"`
	Language        string `toml:"language"`
	Prompt          string `toml:"prompt"`
	OpenAIAPIKey    string `toml:"openai_api_key"`
	GeminiAPIKey    string `toml:"gemini_api_key"`
	ShutdownSeconds int    `toml:"shutdown_seconds"`
}

// Player configures terminal playback.
type Player struct {
	FontSize  int  `toml:"font_size"`
	Subtitles bool `toml:"subtitles"`
	TickHz    int  `toml:"tick_hz"`
}

// Config is the full subplay configuration.
type Config struct {
	Client Client `toml:"client"`
	Server Server `toml:"server"`
	Player Player `toml:"player"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/subplay/config.toml")
}

// Load reads .env, the TOML file at path (or the default location), and
// environment overrides, then validates the result. It reports the resolved
// path and whether a file was found there.
func Load(path string) (*Config, string, bool, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, "", false, err
	}

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	} else if path != "" {
		return nil, "", false, fmt.Errorf("config file %q not found", resolvedPath)
	}

	if err := cfg.normalize(os.LookupEnv); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	if strings.EqualFold(c.Server.Provider, "gemini") {
		return c.Server.GeminiAPIKey
	}
	return c.Server.OpenAIAPIKey
}

// MaxUploadBytes is the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}

// Addr is the listen address for the proxy.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// variables already set in the process win over .env
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = defaultPath
	}

	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
