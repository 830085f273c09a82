package ledger

import (
	"errors"
	"net/url"
	"time"
)

const (
	// DefaultTimeout bounds every remote call
	DefaultTimeout = 30 * time.Second
	// DefaultMaxResponseBytes caps how much of a response body is read
	DefaultMaxResponseBytes int64 = 10 << 20
	// DefaultPath is the JSON-RPC endpoint path on the ledger host
	DefaultPath = "/jsonrpc"
)

// Errors for ledger configuration
var (
	ErrConfigMissingURL = errors.New("ledger: url is required")
	ErrConfigInvalidURL = errors.New("ledger: url must be an absolute http(s) url")
)

// Config holds configuration for the ledger JSON-RPC gateway
type Config struct {
	// URL is the JSON-RPC endpoint, e.g. https://ledger.example.com/jsonrpc
	URL string
	// Timeout is the per-call deadline
	Timeout time.Duration
	// MaxResponseBytes caps the response body read
	MaxResponseBytes int64
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.URL == "" {
		return ErrConfigMissingURL
	}
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrConfigInvalidURL
	}
	return nil
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.MaxResponseBytes <= 0 {
		out.MaxResponseBytes = DefaultMaxResponseBytes
	}
	return out
}
