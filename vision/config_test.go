package vision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, BackendLocal, cfg.Backend)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	assert.Equal(t, "https:", cfg.Scheme)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(
		WithBackend("OpenAI"),
		WithHost("http://gpu-box:8000/"),
		WithModel("gpt-4o-mini"),
		WithToken(""),
		WithScheme("http"),
		WithTimeout(5*time.Second),
		WithRetry(5, time.Second),
		WithMaxImageBytes(1024),
		WithMaxImagePixels(4096),
		WithSampleWidth(32),
	)

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, BackendOpenAI, cfg.Backend)
	assert.Equal(t, "http://gpu-box:8000/v1", cfg.Host)
	assert.Equal(t, "none", cfg.Token)
	assert.Equal(t, "http:", cfg.Scheme)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, time.Second, cfg.RetryDelay)
	assert.Equal(t, int64(1024), cfg.MaxImageBytes)
	assert.Equal(t, int64(4096), cfg.MaxImagePixels)
	assert.Equal(t, 32, cfg.SampleWidth)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		opt  ConfigOption
	}{
		{"unknown backend", WithBackend("gpu")},
		{"bad scheme", WithScheme("ftp")},
		{"zero timeout", WithTimeout(0)},
		{"zero attempts", WithRetry(0, time.Second)},
		{"negative delay", WithRetry(1, -time.Second)},
		{"zero image bytes", WithMaxImageBytes(0)},
		{"zero image pixels", WithMaxImagePixels(0)},
		{"zero sample width", WithSampleWidth(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, NewConfig(tt.opt).Validate())
		})
	}

	t.Run("openai requires model", func(t *testing.T) {
		cfg := NewConfig(WithBackend(BackendOpenAI), WithModel(""))
		assert.Error(t, cfg.Validate())
	})
}
