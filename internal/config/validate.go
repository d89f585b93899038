package config

import (
	"errors"
	"fmt"
	"net/url"
)

const minFontSize = 12

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateClient(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validatePlayer()
}

func (c *Config) validateClient() error {
	u, err := url.Parse(c.Client.APIBase)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("client.api_base must be an http(s) URL, got %q", c.Client.APIBase)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return errors.New("server.max_upload_mb must be positive")
	}
	switch c.Server.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("server.provider must be openai or gemini, got %q", c.Server.Provider)
	}
	return nil
}

func (c *Config) validatePlayer() error {
	if c.Player.FontSize < minFontSize {
		return fmt.Errorf("player.font_size must be at least %d, got %d", minFontSize, c.Player.FontSize)
	}
	return nil
}
