package vision

import (
	"context"

	"github.com/poiesic/colormatch/core"
)

// ColorExtractor determines the dominant color of a product photo.
// Implementations must be thread-safe for concurrent use.
type ColorExtractor interface {
	// ExtractColor returns the dominant color of the photo at locator.
	// Fails with ErrResourceNotFound or ErrColorMissing.
	ExtractColor(ctx context.Context, locator string) (core.ColorVector, error)
}

// ImageSource loads raw image bytes.
// Fetcher is the production implementation.
type ImageSource interface {
	Fetch(ctx context.Context, locator string) (*Image, error)
}

// Image is a fetched photo.
type Image struct {
	// Locator is the resolved location the bytes were loaded from.
	Locator string

	// ContentType is the MIME type reported by the server or sniffed from the data.
	ContentType string

	Data []byte
}
