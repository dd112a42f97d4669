package colorspace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/colormatch/core"
)

func TestToLabGolden(t *testing.T) {
	tests := []struct {
		rgb  core.ColorVector
		want core.LabColor
	}{
		{core.ColorVector{R: 255, G: 0, B: 0}, core.LabColor{L: 138, A: 81, B: 70}},
		{core.ColorVector{R: 0, G: 255, B: 0}, core.LabColor{L: 224, A: -78, B: 81}},
		{core.ColorVector{R: 0, G: 0, B: 255}, core.LabColor{L: 75, A: 68, B: -111}},
		{core.ColorVector{R: 0, G: 0, B: 0}, core.LabColor{L: 0, A: 0, B: 0}},
		{core.ColorVector{R: 255, G: 255, B: 255}, core.LabColor{L: 255, A: 0, B: 0}},
		{core.ColorVector{R: 250, G: 10, B: 10}, core.LabColor{L: 136, A: 79, B: 66}},
		{core.ColorVector{R: 128, G: 128, B: 128}, core.LabColor{L: 137, A: 0, B: 0}},
		{core.ColorVector{R: 10, G: 10, B: 10}, core.LabColor{L: 8, A: 0, B: 0}},
		{core.ColorVector{R: 1, G: 1, B: 1}, core.LabColor{L: 1, A: 0, B: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.rgb.String(), func(t *testing.T) {
			got, err := ToLab(tt.rgb)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToLabHalfAwayFromZero(t *testing.T) {
	conv := Converter{Rounding: RoundHalfAwayFromZero}

	// Legacy truncation biases negative components toward zero; these
	// are the primaries where the two modes disagree.
	got, err := conv.ToLab(core.ColorVector{G: 255})
	require.NoError(t, err)
	assert.Equal(t, core.LabColor{L: 224, A: -79, B: 81}, got)

	got, err = conv.ToLab(core.ColorVector{B: 255})
	require.NoError(t, err)
	assert.Equal(t, core.LabColor{L: 75, A: 68, B: -112}, got)

	got, err = conv.ToLab(core.ColorVector{R: 255})
	require.NoError(t, err)
	assert.Equal(t, core.LabColor{L: 138, A: 81, B: 70}, got)
}

func TestToLabRejectsOutOfRange(t *testing.T) {
	for _, c := range []core.ColorVector{{R: 256}, {G: -1}, {B: 1000}} {
		_, err := ToLab(c)
		assert.ErrorIs(t, err, core.ErrInvalidColor, c.String())
	}
}

func TestToLabDeterministic(t *testing.T) {
	for r := 0; r <= 255; r += 15 {
		for g := 0; g <= 255; g += 15 {
			for b := 0; b <= 255; b += 15 {
				c := core.ColorVector{R: r, G: g, B: b}
				first, err := ToLab(c)
				require.NoError(t, err)
				second, err := ToLab(c)
				require.NoError(t, err)
				require.Equal(t, first, second)
				require.GreaterOrEqual(t, first.L, 0.0)
				require.LessOrEqual(t, first.L, 255.0)
			}
		}
	}
}

func TestDistanceGolden(t *testing.T) {
	red := core.ColorVector{R: 255}
	tests := []struct {
		name string
		a, b core.ColorVector
		want float64
	}{
		{"red-green", red, core.ColorVector{G: 255}, math.Sqrt(32798)},
		{"red-near red", red, core.ColorVector{R: 250, G: 10, B: 10}, math.Sqrt(24)},
		{"red-black", red, core.ColorVector{}, math.Sqrt(30505)},
		{"black-white", core.ColorVector{}, core.ColorVector{R: 255, G: 255, B: 255}, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Distance(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, d, 1e-9)
		})
	}
}

func TestDistanceProperties(t *testing.T) {
	colors := []core.ColorVector{
		{}, {R: 255}, {G: 255}, {B: 255}, {R: 12, G: 200, B: 77},
		{R: 255, G: 255, B: 255}, {R: 128, G: 64, B: 32},
	}
	for _, a := range colors {
		d, err := Distance(a, a)
		require.NoError(t, err)
		assert.Zero(t, d, "distance to self must be zero for %s", a)

		for _, b := range colors {
			ab, err := Distance(a, b)
			require.NoError(t, err)
			ba, err := Distance(b, a)
			require.NoError(t, err)
			assert.Equal(t, ab, ba, "distance must be symmetric for %s and %s", a, b)
			assert.GreaterOrEqual(t, ab, 0.0)
		}
	}
}

func TestDistanceRejectsOutOfRange(t *testing.T) {
	_, err := Distance(core.ColorVector{}, core.ColorVector{R: -5})
	assert.ErrorIs(t, err, core.ErrInvalidColor)

	_, err = Distance(core.ColorVector{R: 300}, core.ColorVector{})
	assert.ErrorIs(t, err, core.ErrInvalidColor)
}

func TestParseRounding(t *testing.T) {
	r, err := ParseRounding("")
	require.NoError(t, err)
	assert.Equal(t, RoundLegacy, r)

	r, err = ParseRounding("half-away-from-zero")
	require.NoError(t, err)
	assert.Equal(t, RoundHalfAwayFromZero, r)

	_, err = ParseRounding("banker")
	assert.Error(t, err)
}
