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

package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/poiesic/colormatch/core"
	"github.com/poiesic/colormatch/vision"
)

// parseAttempts bounds how often a malformed model answer is retried.
const parseAttempts = 3

// Generator is the subset of llms.Model the extractor needs.
type Generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Extractor implements vision.ColorExtractor by asking a multimodal chat model.
type Extractor struct {
	source vision.ImageSource
	client Generator
	logger *slog.Logger
}

var _ vision.ColorExtractor = (*Extractor)(nil)

// rgb matches the JSON object the model is asked to produce.
type rgb struct {
	R *int `json:"r"`
	G *int `json:"g"`
	B *int `json:"b"`
}

// Option configures an Extractor.
type Option func(*Extractor) error

// WithModel replaces the langchaingo client, mainly for tests.
func WithModel(model Generator) Option {
	return func(e *Extractor) error {
		if model == nil {
			return errors.New("model must not be nil")
		}
		e.client = model
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewExtractor creates an extractor that loads photos from source and sends
// them to the model configured in config.
func NewExtractor(source vision.ImageSource, config *vision.Config, opts ...Option) (*Extractor, error) {
	if source == nil {
		return nil, vision.ErrFetcherRequired
	}
	if config == nil {
		config = vision.NewConfig(vision.WithBackend(vision.BackendOpenAI))
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Extractor{
		source: source,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "openai-extractor")

	if e.client == nil {
		client, err := openai.New(
			openai.WithBaseURL(config.Host),
			openai.WithToken(config.Token),
			openai.WithModel(config.Model),
		)
		if err != nil {
			return nil, err
		}
		e.client = client
	}
	return e, nil
}

// ExtractColor fetches the photo at locator and asks the model for its dominant color.
func (e *Extractor) ExtractColor(ctx context.Context, locator string) (core.ColorVector, error) {
	img, err := e.source.Fetch(ctx, locator)
	if err != nil {
		return core.ColorVector{}, err
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(colorPrompt)},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(img.ContentType, img.Data),
				llms.TextPart("What is the dominant color of this garment?"),
			},
		},
	}

	var lastErr error
	for attempt := 1; attempt <= parseAttempts; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt, "locator", img.Locator, "err", err)
			return core.ColorVector{}, fmt.Errorf("%w: %w", vision.ErrColorMissing, err)
		}
		if len(response.Choices) < 1 {
			return core.ColorVector{}, fmt.Errorf("%w: no choices returned from model", vision.ErrColorMissing)
		}

		color, err := parseColor(response.Choices[0].Content)
		if err == nil {
			return color, nil
		}
		lastErr = err
		e.logger.Warn("error parsing model response",
			"attempt", attempt,
			"response", response.Choices[0].Content,
			"err", err)
	}

	return core.ColorVector{}, fmt.Errorf("%w: %w", vision.ErrColorMissing, lastErr)
}

func parseColor(text string) (core.ColorVector, error) {
	var v rgb
	if err := json.Unmarshal([]byte(cleanResponse(text)), &v); err != nil {
		return core.ColorVector{}, err
	}
	if v.R == nil || v.G == nil || v.B == nil {
		return core.ColorVector{}, errors.New("response lacks one of r, g, b")
	}
	color := core.ColorVector{R: *v.R, G: *v.G, B: *v.B}
	if err := color.Validate(); err != nil {
		return core.ColorVector{}, err
	}
	return color, nil
}
