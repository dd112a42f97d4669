package local

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/poiesic/colormatch/core"
	"github.com/poiesic/colormatch/vision"
)

const (
	// bucketBits is the number of high bits kept per channel.
	bucketBits  = 4
	bucketShift = 8 - bucketBits
	bucketCount = 1 << (3 * bucketBits)

	// Pixels below this alpha do not vote.
	minAlpha = 128
)

// Extractor implements vision.ColorExtractor with a histogram over the photo's pixels.
type Extractor struct {
	source      vision.ImageSource
	sampleWidth int
	maxPixels   int64
	logger      *slog.Logger
}

var _ vision.ColorExtractor = (*Extractor)(nil)

// Option configures an Extractor.
type Option func(*Extractor) error

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

// NewExtractor creates an extractor that loads photos from source.
func NewExtractor(source vision.ImageSource, config *vision.Config, opts ...Option) (*Extractor, error) {
	if source == nil {
		return nil, vision.ErrFetcherRequired
	}
	if config == nil {
		config = vision.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Extractor{
		source:      source,
		sampleWidth: config.SampleWidth,
		maxPixels:   config.MaxImagePixels,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "local-extractor")
	return e, nil
}

// ExtractColor fetches the photo at locator and returns its dominant color.
func (e *Extractor) ExtractColor(ctx context.Context, locator string) (core.ColorVector, error) {
	img, err := e.source.Fetch(ctx, locator)
	if err != nil {
		return core.ColorVector{}, err
	}
	color, err := DominantColor(img.Data, e.sampleWidth, e.maxPixels)
	if err != nil {
		e.logger.Debug("no dominant color", "locator", img.Locator, "contentType", img.ContentType, "err", err)
		return core.ColorVector{}, err
	}
	return color, nil
}

// DominantColor decodes data and returns the average color of its most
// populated histogram bucket. Images wider than sampleWidth are downscaled first.
// Images whose declared area exceeds maxPixels are rejected before decoding;
// a maxPixels of zero or less disables the check.
func DominantColor(data []byte, sampleWidth int, maxPixels int64) (core.ColorVector, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return core.ColorVector{}, fmt.Errorf("%w: decode: %w", vision.ErrColorMissing, err)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return core.ColorVector{}, fmt.Errorf("%w: %dx%d exceeds %d pixels",
			vision.ErrColorMissing, cfg.Width, cfg.Height, maxPixels)
	}

	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return core.ColorVector{}, fmt.Errorf("%w: decode: %w", vision.ErrColorMissing, err)
	}

	var sample *image.NRGBA
	if sampleWidth > 0 && src.Bounds().Dx() > sampleWidth {
		sample = imaging.Resize(src, sampleWidth, 0, imaging.Box)
	} else {
		sample = imaging.Clone(src)
	}

	var (
		counts [bucketCount]int
		sums   [bucketCount][3]int
	)
	bounds := sample.Bounds()
	for y := 0; y < bounds.Dy(); y++ {
		row := sample.Pix[y*sample.Stride : y*sample.Stride+bounds.Dx()*4]
		for x := 0; x < len(row); x += 4 {
			r, g, b, a := int(row[x]), int(row[x+1]), int(row[x+2]), row[x+3]
			if a < minAlpha {
				continue
			}
			key := (r>>bucketShift)<<(2*bucketBits) | (g>>bucketShift)<<bucketBits | b>>bucketShift
			counts[key]++
			sums[key][0] += r
			sums[key][1] += g
			sums[key][2] += b
		}
	}

	best := -1
	for key, n := range counts {
		if n > 0 && (best < 0 || n > counts[best]) {
			best = key
		}
	}
	if best < 0 {
		return core.ColorVector{}, fmt.Errorf("%w: no opaque pixels", vision.ErrColorMissing)
	}

	n := counts[best]
	return core.ColorVector{
		R: (sums[best][0] + n/2) / n,
		G: (sums[best][1] + n/2) / n,
		B: (sums[best][2] + n/2) / n,
	}, nil
}
