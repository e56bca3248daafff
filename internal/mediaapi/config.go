package mediaapi

import (
	"strings"
	"time"
)

const (
	defaultTokenTimeout  = 10 * time.Second
	defaultUploadTimeout = 30 * time.Second
	defaultDeleteTimeout = 10 * time.Second
)

// Config holds the media service coordinates and client credentials.
// Read-only after initialization, injected by the host configuration.
type Config struct {
	// Base URL of the media service API, e.g. https://api.media.example
	BaseURL string

	// Client-credentials grant identity
	ClientID     string
	ClientSecret string

	// Per-request timeouts
	// Zero values fall back to the package defaults
	TokenTimeout  time.Duration
	UploadTimeout time.Duration
	DeleteTimeout time.Duration
}

func (c Config) withDefaults() Config {
	setDefault := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefault(&c.TokenTimeout, defaultTokenTimeout)
	setDefault(&c.UploadTimeout, defaultUploadTimeout)
	setDefault(&c.DeleteTimeout, defaultDeleteTimeout)

	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c
}

func (c Config) endpoint(p string) string {
	return c.BaseURL + p
}
