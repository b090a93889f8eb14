package command

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-town/internal/video"
)

const defaultGrantTTL = time.Hour

type VideoConfig struct {
	KeyPath string `json:"key_path,omitempty"`
	GrantTTL string `json:"grant_ttl,omitempty"`
}

func (c *VideoConfig) validate() error {
	el := errors.NewErrorList()

	if c.GrantTTL != "" {
		_, err := time.ParseDuration(c.GrantTTL)
		if err != nil {
			el.Add(fmt.Errorf("parsing grant_ttl: %w", err))
		}
	}

	return el.Err()
}

func (c *VideoConfig) buildProvider() (*video.LocalProvider, error) {
	key, err := c.loadOrGenerateKey()
	if err != nil {
		return nil, fmt.Errorf("setting up video signing key: %w", err)
	}

	ttl := defaultGrantTTL
	if c.GrantTTL != "" {
		ttl, err = time.ParseDuration(c.GrantTTL)
		if err != nil {
			return nil, fmt.Errorf("parsing grant_ttl: %w", err)
		}
	}

	return video.NewLocalProvider(key, ttl), nil
}

func (c *VideoConfig) loadOrGenerateKey() ([]byte, error) {
	if c.KeyPath != "" {
		key, err := os.ReadFile(c.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("reading key %q: %w", c.KeyPath, err)
		}
		return key, nil
	}

	slog.Warn("no key_path configured for video grants, generating ephemeral key")
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating ephemeral key: %w", err)
	}
	return key, nil
}
