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

// Package config loads the colormatch command line configuration file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"

	"github.com/poiesic/colormatch/batch"
	"github.com/poiesic/colormatch/vision"
)

//go:embed sample_config.toml
var sampleConfig string

// Store locates the catalog database.
type Store struct {
	Path     string `toml:"path"`
	InMemory bool   `toml:"in_memory"`
}

// Batch sizes chunked jobs.
type Batch struct {
	Workers       int `toml:"workers"`
	QueueCapacity int `toml:"queue_capacity"`
	ChunkSize     int `toml:"chunk_size"`
	PageSize      int `toml:"page_size"`
}

// Import configures the delimited source reader.
type Import struct {
	Delimiter string `toml:"delimiter"`
	Header    bool   `toml:"header"`
}

// Vision configures the color extractor.
type Vision struct {
	Backend        string `toml:"backend"`
	Host           string `toml:"host"`
	Model          string `toml:"model"`
	Token          string `toml:"token"`
	Scheme         string `toml:"scheme"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxAttempts    int    `toml:"max_attempts"`
	RetryDelayMS   int    `toml:"retry_delay_ms"`
	MaxImageBytes  int64  `toml:"max_image_bytes"`
	MaxImagePixels int64  `toml:"max_image_pixels"`
	SampleWidth    int    `toml:"sample_width"`
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	Enabled   bool   `toml:"enabled"`
	Addr      string `toml:"addr"`
	Namespace string `toml:"namespace"`
}

// Config is the full configuration file.
type Config struct {
	LogLevel string  `toml:"log_level"`
	Store    Store   `toml:"store"`
	Batch    Batch   `toml:"batch"`
	Import   Import  `toml:"import"`
	Vision   Vision  `toml:"vision"`
	Metrics  Metrics `toml:"metrics"`
}

// Default returns the built-in configuration.
func Default() Config {
	policy := batch.DefaultPolicy()
	v := vision.DefaultConfig()
	return Config{
		LogLevel: "info",
		Store:    Store{Path: defaultStorePath()},
		Batch: Batch{
			Workers:       policy.Workers,
			QueueCapacity: policy.QueueCapacity,
			ChunkSize:     batch.DefaultChunkSize,
			PageSize:      100,
		},
		Import: Import{Delimiter: ",", Header: true},
		Vision: Vision{
			Backend:        v.Backend,
			Host:           v.Host,
			Model:          v.Model,
			Token:          v.Token,
			Scheme:         v.Scheme,
			TimeoutSeconds: int(v.Timeout / time.Second),
			MaxAttempts:    v.MaxAttempts,
			RetryDelayMS:   int(v.RetryDelay / time.Millisecond),
			MaxImageBytes:  v.MaxImageBytes,
			MaxImagePixels: v.MaxImagePixels,
			SampleWidth:    v.SampleWidth,
		},
		Metrics: Metrics{Addr: ":9464", Namespace: "colormatch"},
	}
}

// DefaultConfigPath returns the per-user configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/colormatch/config.toml")
}

// Load reads the configuration at path, or from the default locations
// when path is empty. A missing file yields the defaults. It returns the
// resolved path and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("colormatch.toml")
	if err != nil {
		return "", false, err
	}

	for _, candidate := range []string{defaultPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// Normalize trims values and expands the store path.
func (c *Config) Normalize() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Vision.Backend = strings.ToLower(strings.TrimSpace(c.Vision.Backend))
	if c.Import.Delimiter == `\t` {
		c.Import.Delimiter = "\t"
	}
	if !c.Store.InMemory {
		path, err := expandPath(strings.TrimSpace(c.Store.Path))
		if err != nil {
			return err
		}
		c.Store.Path = path
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	if !c.Store.InMemory && c.Store.Path == "" {
		return errors.New("config: store.path is required")
	}
	if err := c.BatchPolicy().Validate(); err != nil {
		return fmt.Errorf("config: batch: %w", err)
	}
	if c.Batch.ChunkSize < 1 {
		return errors.New("config: batch.chunk_size must be positive")
	}
	if c.Batch.PageSize < 1 {
		return errors.New("config: batch.page_size must be positive")
	}
	if utf8.RuneCountInString(c.Import.Delimiter) != 1 {
		return fmt.Errorf("config: import.delimiter must be a single character, got %q", c.Import.Delimiter)
	}
	if err := c.VisionConfig().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errors.New("config: metrics.addr is required when metrics are enabled")
	}
	return nil
}

// BatchPolicy returns the worker pool policy.
func (c *Config) BatchPolicy() batch.Policy {
	return batch.Policy{Workers: c.Batch.Workers, QueueCapacity: c.Batch.QueueCapacity}
}

// Delimiter returns the import field delimiter.
func (c *Config) Delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.Import.Delimiter)
	return r
}

// VisionConfig converts the [vision] section.
func (c *Config) VisionConfig() *vision.Config {
	return vision.NewConfig(
		vision.WithBackend(c.Vision.Backend),
		vision.WithHost(c.Vision.Host),
		vision.WithModel(c.Vision.Model),
		vision.WithToken(c.Vision.Token),
		vision.WithScheme(c.Vision.Scheme),
		vision.WithTimeout(time.Duration(c.Vision.TimeoutSeconds)*time.Second),
		vision.WithRetry(c.Vision.MaxAttempts, time.Duration(c.Vision.RetryDelayMS)*time.Millisecond),
		vision.WithMaxImageBytes(c.Vision.MaxImageBytes),
		vision.WithMaxImagePixels(c.Vision.MaxImagePixels),
		vision.WithSampleWidth(c.Vision.SampleWidth),
	)
}

// CreateSample writes a sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves a leading ~ and makes path absolute.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

func defaultStorePath() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "colormatch")
	}
	return "~/.local/share/colormatch"
}
