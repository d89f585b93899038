package config

import (
	"fmt"
	"strconv"
	"strings"
)

type lookupFunc func(string) (string, bool)

func (c *Config) normalize(lookup lookupFunc) error {
	if err := c.applyEnv(lookup); err != nil {
		return err
	}

	c.Client.APIBase = strings.TrimRight(strings.TrimSpace(c.Client.APIBase), "/")
	if c.Client.APIBase == "" {
		c.Client.APIBase = defaultAPIBase
	}
	if c.Client.TimeoutMinutes <= 0 {
		c.Client.TimeoutMinutes = defaultTimeoutMinutes
	}

	c.Server.Provider = strings.ToLower(strings.TrimSpace(c.Server.Provider))
	if c.Server.Provider == "" {
		c.Server.Provider = defaultProvider
	}
	var err error
	if c.Server.UploadDir, err = expandPath(strings.TrimSpace(c.Server.UploadDir)); err != nil {
		return fmt.Errorf("server.upload_dir: %w", err)
	}
	if c.Server.ShutdownSeconds <= 0 {
		c.Server.ShutdownSeconds = defaultShutdownSeconds
	}

	if c.Player.TickHz <= 0 {
		c.Player.TickHz = defaultTickHz
	}
	return nil
}

// environment wins over the config file
func (c *Config) applyEnv(lookup lookupFunc) error {
	set := func(key string, dst *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*dst = strings.TrimSpace(value)
		}
	}

	set("SUBPLAY_API_BASE", &c.Client.APIBase)
	set("SUBPLAY_PROVIDER", &c.Server.Provider)
	set("SUBPLAY_MODEL", &c.Server.Model)
	set("SUBPLAY_LANGUAGE", &c.Server.Language)
	set("SUBPLAY_UPLOAD_DIR", &c.Server.UploadDir)
	set("OPENAI_API_KEY", &c.Server.OpenAIAPIKey)
	set("GEMINI_API_KEY", &c.Server.GeminiAPIKey)

	if value, ok := lookup("PORT"); ok && strings.TrimSpace(value) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("PORT: invalid port %q", value)
		}
		c.Server.Port = port
	}
	return nil
}
