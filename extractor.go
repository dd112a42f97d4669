package colormatch

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/colormatch/vision"
	"github.com/poiesic/colormatch/vision/local"
	"github.com/poiesic/colormatch/vision/openai"
)

// NewExtractor builds the color extractor selected by cfg.Backend.
// A nil cfg uses vision.DefaultConfig().
func NewExtractor(cfg *vision.Config, logger *slog.Logger) (vision.ColorExtractor, error) {
	if cfg == nil {
		cfg = vision.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fetcher, err := vision.NewFetcher(cfg, vision.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	var extractor vision.ColorExtractor
	switch cfg.Backend {
	case vision.BackendLocal:
		extractor, err = local.NewExtractor(fetcher, cfg, local.WithLogger(logger))
	case vision.BackendOpenAI:
		extractor, err = openai.NewExtractor(fetcher, cfg, openai.WithLogger(logger))
	default:
		err = fmt.Errorf("unknown vision backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return extractor, nil
}
