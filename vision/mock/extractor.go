package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/poiesic/colormatch/core"
	"github.com/poiesic/colormatch/vision"
)

// Extractor is a mock implementation of vision.ColorExtractor.
// It is safe for concurrent use.
type Extractor struct {
	// ExtractFunc allows customizing ExtractColor behavior.
	// If nil, a color is derived from a hash of the locator.
	ExtractFunc func(ctx context.Context, locator string) (core.ColorVector, error)

	mu    sync.Mutex
	calls []string
}

var _ vision.ColorExtractor = (*Extractor)(nil)

// NewExtractor creates a mock extractor with default behavior.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractColor returns ExtractFunc's result or a color hashed from locator.
// Blank locators fail with vision.ErrResourceNotFound.
func (m *Extractor) ExtractColor(ctx context.Context, locator string) (core.ColorVector, error) {
	m.mu.Lock()
	m.calls = append(m.calls, locator)
	fn := m.ExtractFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, locator)
	}
	if strings.TrimSpace(locator) == "" {
		return core.ColorVector{}, fmt.Errorf("%w: empty photo locator", vision.ErrResourceNotFound)
	}
	return HashColor(locator), nil
}

// HashColor derives a stable color from s.
func HashColor(s string) core.ColorVector {
	h := fnv.New32a()
	h.Write([]byte(s))
	sum := h.Sum32()
	return core.ColorVector{
		R: int(sum & 0xff),
		G: int(sum >> 8 & 0xff),
		B: int(sum >> 16 & 0xff),
	}
}

// CallCount returns the number of times ExtractColor was called.
func (m *Extractor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns the locators ExtractColor was called with, in call order.
func (m *Extractor) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Reset clears the recorded calls and the custom function.
func (m *Extractor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.ExtractFunc = nil
}
