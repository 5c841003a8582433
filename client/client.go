// Package client talks to the talklens backend API. It covers the
// authenticated session/artifact surface plus the second-hop fetch of
// artifact content from time-limited access URLs.
package client

import (
	"errors"
	"net/http"

	"talklens/config"
)

// ErrNoToken is returned before any request is issued when the client has no
// bearer token. First-class API calls are never sent unauthenticated.
var ErrNoToken = errors.New("no API token configured")

// Client represents the talklens backend API client
type Client struct {
	baseURL string
	token   string

	// httpClient serves status/descriptor calls and is bounded tightly so a
	// slow fetch cannot overlap the next poll tick. contentClient serves
	// artifact content downloads, which can be larger.
	httpClient    *http.Client
	contentClient *http.Client
}

// New creates a backend client from configuration.
func New(cfg config.Config) *Client {
	base := cfg.APIBase
	if base == "" {
		base = "http://localhost:8080/api"
	}
	return &Client{
		baseURL:       base,
		token:         cfg.Token,
		httpClient:    &http.Client{Timeout: config.RequestTimeout},
		contentClient: &http.Client{Timeout: config.ContentTimeout},
	}
}

// requireToken short-circuits calls issued without credentials.
func (c *Client) requireToken() error {
	if c.token == "" {
		return ErrNoToken
	}
	return nil
}
