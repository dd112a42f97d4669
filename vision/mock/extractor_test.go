package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/colormatch/core"
	"github.com/poiesic/colormatch/vision"
)

func TestExtractor_Deterministic(t *testing.T) {
	m := NewExtractor()
	ctx := context.Background()

	a, err := m.ExtractColor(ctx, "//cdn/a.jpg")
	require.NoError(t, err)
	b, err := m.ExtractColor(ctx, "//cdn/a.jpg")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NoError(t, a.Validate())
	assert.Equal(t, 2, m.CallCount())
}

func TestExtractor_BlankLocator(t *testing.T) {
	_, err := NewExtractor().ExtractColor(context.Background(), "  ")
	assert.ErrorIs(t, err, vision.ErrResourceNotFound)
}

func TestExtractor_Custom(t *testing.T) {
	m := NewExtractor()
	m.ExtractFunc = func(_ context.Context, locator string) (core.ColorVector, error) {
		if locator == "bad" {
			return core.ColorVector{}, vision.ErrColorMissing
		}
		return core.ColorVector{R: 1, G: 2, B: 3}, nil
	}

	got, err := m.ExtractColor(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, core.ColorVector{R: 1, G: 2, B: 3}, got)

	_, err = m.ExtractColor(context.Background(), "bad")
	assert.True(t, errors.Is(err, vision.ErrColorMissing))
	assert.Equal(t, []string{"good", "bad"}, m.Calls())

	m.Reset()
	assert.Zero(t, m.CallCount())
	assert.Nil(t, m.ExtractFunc)
}
