// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vision

import (
	"errors"
	"strings"
	"time"
)

// Extraction backends.
const (
	BackendLocal  = "local"
	BackendOpenAI = "openai"
)

// Config holds configuration for color extraction.
type Config struct {
	// Backend selects the extractor: "local" or "openai".
	Backend string

	// Host is the base URL of the OpenAI-compatible API. Only used by the openai backend.
	// Example: "http://localhost:11434/v1" for a local Ollama server
	Host string

	// Model is the multimodal model identifier. Only used by the openai backend.
	// Example: "llava", "gpt-4o-mini"
	Model string

	// Token is the API token. Local servers accept "none".
	Token string

	// Scheme is prefixed to scheme-relative locators ("//host/path").
	// Default: "https:"
	Scheme string

	// Timeout bounds a single HTTP fetch.
	Timeout time.Duration

	// MaxAttempts is the number of fetch attempts for transient failures.
	MaxAttempts int

	// RetryDelay is the base delay for exponential backoff between attempts.
	RetryDelay time.Duration

	// MaxImageBytes rejects larger photos with ErrColorMissing.
	MaxImageBytes int64

	// MaxImagePixels rejects photos whose declared width×height is larger,
	// before any pixel data is decoded.
	MaxImagePixels int64

	// SampleWidth is the width photos are reduced to before the local
	// backend builds its color histogram.
	SampleWidth int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBackend sets the extraction backend.
func WithBackend(backend string) ConfigOption {
	return func(c *Config) {
		c.Backend = backend
	}
}

// WithHost sets the OpenAI-compatible API host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the multimodal model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithToken sets the API token.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// WithScheme sets the scheme used for scheme-relative locators.
func WithScheme(scheme string) ConfigOption {
	return func(c *Config) {
		c.Scheme = scheme
	}
}

// WithTimeout sets the per-request fetch timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithRetry sets the attempt count and base backoff delay for fetches.
func WithRetry(maxAttempts int, delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.MaxAttempts = maxAttempts
		c.RetryDelay = delay
	}
}

// WithMaxImageBytes sets the largest accepted photo size.
func WithMaxImageBytes(n int64) ConfigOption {
	return func(c *Config) {
		c.MaxImageBytes = n
	}
}

// WithMaxImagePixels sets the largest accepted photo area in pixels.
func WithMaxImagePixels(n int64) ConfigOption {
	return func(c *Config) {
		c.MaxImagePixels = n
	}
}

// WithSampleWidth sets the histogram sampling width of the local backend.
func WithSampleWidth(width int) ConfigOption {
	return func(c *Config) {
		c.SampleWidth = width
	}
}

// DefaultConfig returns a Config using the local backend.
func DefaultConfig() *Config {
	return &Config{
		Backend:        BackendLocal,
		Host:           "http://localhost:11434/v1",
		Model:          "llava",
		Token:          "none",
		Scheme:         "https:",
		Timeout:        30 * time.Second,
		MaxAttempts:    3,
		RetryDelay:     500 * time.Millisecond,
		MaxImageBytes:  20 << 20,
		MaxImagePixels: 40_000_000,
		SampleWidth:    64,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithBackend(BackendOpenAI),
//	    WithHost("http://localhost:11434"),
//	    WithModel("llava"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix required by OpenAI-compatible APIs and
// the trailing colon of the locator scheme.
func (c *Config) Normalize() {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/") + "/v1"
	}
	if c.Scheme != "" && !strings.HasSuffix(c.Scheme, ":") {
		c.Scheme += ":"
	}
	if c.Token == "" {
		c.Token = "none"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Backend {
	case BackendLocal:
	case BackendOpenAI:
		if c.Host == "" {
			return errors.New("vision config: Host is required for the openai backend")
		}
		if c.Model == "" {
			return errors.New("vision config: Model is required for the openai backend")
		}
	default:
		return errors.New("vision config: Backend must be \"local\" or \"openai\"")
	}
	if c.Scheme != "http:" && c.Scheme != "https:" {
		return errors.New("vision config: Scheme must be \"http:\" or \"https:\"")
	}
	if c.Timeout <= 0 {
		return errors.New("vision config: Timeout must be positive")
	}
	if c.MaxAttempts < 1 {
		return errors.New("vision config: MaxAttempts must be at least 1")
	}
	if c.RetryDelay < 0 {
		return errors.New("vision config: RetryDelay must not be negative")
	}
	if c.MaxImageBytes <= 0 {
		return errors.New("vision config: MaxImageBytes must be positive")
	}
	if c.MaxImagePixels <= 0 {
		return errors.New("vision config: MaxImagePixels must be positive")
	}
	if c.SampleWidth < 1 {
		return errors.New("vision config: SampleWidth must be at least 1")
	}
	return nil
}
