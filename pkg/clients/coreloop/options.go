package coreloop

import (
	"net/http"
	"time"
)

// ClientOption configures the coreloop client.
type ClientOption func(*ClientConfig)

type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	UserAgent  string
}

// DefaultConfig returns a sensible default configuration. Row processing
// can legitimately take minutes on large inputs, hence the long timeout.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:   "https://loop-over-rows.frontand.tech",
		Timeout:   5 * time.Minute,
		UserAgent: "frontand-go/1.0.0",
	}
}

// WithBaseURL sets the backend base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *ClientConfig) {
		c.BaseURL = baseURL
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *ClientConfig) {
		c.HTTPClient = httpClient
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *ClientConfig) {
		c.UserAgent = userAgent
	}
}
