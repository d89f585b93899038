package config

import (
	"os"
	"path/filepath"
)

const (
	defaultAPIBase         = "http://localhost:3000"
	defaultTimeoutMinutes  = 30
	defaultPort            = 3000
	defaultMaxUploadMB     = 512
	defaultProvider        = "openai"
	defaultShutdownSeconds = 5
	defaultFontSize        = 24
	defaultTickHz          = 30
)

// Default returns a Config populated with baseline values.
func Default() Config {
	return Config{
		Client: Client{
			APIBase:        defaultAPIBase,
			TimeoutMinutes: defaultTimeoutMinutes,
		},
		Server: Server{
			Port:            defaultPort,
			UploadDir:       filepath.Join(os.TempDir(), "subplay-uploads"),
			MaxUploadMB:     defaultMaxUploadMB,
			ExtractAudio:    false,
			Provider:        defaultProvider,
			ShutdownSeconds: defaultShutdownSeconds,
		},
		Player: Player{
			FontSize:  defaultFontSize,
			Subtitles: true,
			TickHz:    defaultTickHz,
		},
	}
}
