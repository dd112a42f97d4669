package colorspace

import (
	"fmt"
	"math"

	"github.com/poiesic/colormatch/core"
)

// Rounding selects how Lab components are quantized to integers.
type Rounding int

const (
	// RoundLegacy adds 0.5 and truncates toward zero, so negative
	// components are biased toward zero.
	RoundLegacy Rounding = iota
	// RoundHalfAwayFromZero rounds to the nearest integer, ties away from zero.
	RoundHalfAwayFromZero
)

func (r Rounding) String() string {
	switch r {
	case RoundLegacy:
		return "legacy"
	case RoundHalfAwayFromZero:
		return "half-away-from-zero"
	default:
		return fmt.Sprintf("Rounding(%d)", int(r))
	}
}

// ParseRounding converts a configuration value into a Rounding mode.
func ParseRounding(s string) (Rounding, error) {
	switch s {
	case "", "legacy":
		return RoundLegacy, nil
	case "half-away-from-zero", "round":
		return RoundHalfAwayFromZero, nil
	default:
		return RoundLegacy, fmt.Errorf("unknown rounding mode %q", s)
	}
}

// D50 reference white.
const (
	whiteX float32 = 0.964221
	whiteY float32 = 1.0
	whiteZ float32 = 0.825211
)

const (
	epsilon float32 = 216.0 / 24389.0
	kappa   float32 = 24389.0 / 27.0
)

// sRGB to XYZ, Bradford-adapted to D50.
var rgbToXYZ = [3][3]float32{
	{0.436052025, 0.385081593, 0.143087414},
	{0.222491598, 0.71688606, 0.060621486},
	{0.013929122, 0.097097002, 0.71418547},
}

// Converter maps RGB colors into Lab space.
// The zero value uses RoundLegacy.
type Converter struct {
	Rounding Rounding
}

var legacy = Converter{Rounding: RoundLegacy}

// ToLab converts c using legacy rounding.
func ToLab(c core.ColorVector) (core.LabColor, error) {
	return legacy.ToLab(c)
}

// Distance measures the distance between a and b using legacy rounding.
func Distance(a, b core.ColorVector) (float64, error) {
	return legacy.Distance(a, b)
}

// ToLab converts c to Lab. It fails with core.ErrInvalidColor when any
// component is outside [0,255].
func (cv Converter) ToLab(c core.ColorVector) (core.LabColor, error) {
	if err := c.Validate(); err != nil {
		return core.LabColor{}, err
	}

	r := linearize(float32(c.R) / 255)
	g := linearize(float32(c.G) / 255)
	b := linearize(float32(c.B) / 255)

	// Explicit float32 conversions keep every product rounded on its own,
	// matching the single-precision pipeline that produced stored values.
	x := float32(rgbToXYZ[0][0]*r) + float32(rgbToXYZ[0][1]*g) + float32(rgbToXYZ[0][2]*b)
	y := float32(rgbToXYZ[1][0]*r) + float32(rgbToXYZ[1][1]*g) + float32(rgbToXYZ[1][2]*b)
	z := float32(rgbToXYZ[2][0]*r) + float32(rgbToXYZ[2][1]*g) + float32(rgbToXYZ[2][2]*b)

	fx := labF(x / whiteX)
	fy := labF(y / whiteY)
	fz := labF(z / whiteZ)

	l := float32(116*fy) - 16
	as := 500 * (fx - fy)
	bs := 200 * (fy - fz)

	return core.LabColor{
		L: cv.quantize(float64(2.55 * float64(l))),
		A: cv.quantize(float64(as)),
		B: cv.quantize(float64(bs)),
	}, nil
}

// Distance is the Euclidean distance between the Lab representations of a
// and b. It is symmetric and zero when a equals b.
func (cv Converter) Distance(a, b core.ColorVector) (float64, error) {
	la, err := cv.ToLab(a)
	if err != nil {
		return 0, err
	}
	lb, err := cv.ToLab(b)
	if err != nil {
		return 0, err
	}
	return LabDistance(la, lb), nil
}

// LabDistance is the Euclidean distance between two Lab values.
func LabDistance(a, b core.LabColor) float64 {
	dl := a.L - b.L
	da := a.A - b.A
	db := a.B - b.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

func linearize(v float32) float32 {
	if float64(v) <= 0.04045 {
		return v / 12
	}
	return float32(math.Pow((float64(v)+0.055)/1.055, 2.4))
}

func labF(t float32) float32 {
	if t > epsilon {
		return float32(math.Pow(float64(t), 1.0/3.0))
	}
	return float32((float64(float32(kappa*t)) + 16) / 116)
}

func (cv Converter) quantize(v float64) float64 {
	if cv.Rounding == RoundHalfAwayFromZero {
		if r := math.Round(v); r != 0 {
			return r
		}
		return 0
	}
	return float64(int(v + 0.5))
}
