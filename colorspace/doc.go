// Package colorspace converts RGB colors to CIE L*a*b* and measures the
// perceptual distance between them.
//
// The conversion reproduces the legacy single-precision arithmetic used by
// earlier releases of the catalog, so that distances computed today agree
// with comparisons stored by those releases. Components are normalized,
// companded back to linear sRGB, projected to XYZ with a D50-adapted
// matrix and finally mapped to Lab. The output is quantized to integer
// values: L is scaled by 2.55 to [0,255], a and b are kept as is.
//
// Basic usage:
//
//	lab, err := colorspace.ToLab(core.ColorVector{R: 255})
//	d, err := colorspace.Distance(a, b)
//
// A Converter with RoundHalfAwayFromZero produces mathematically rounded
// values instead. Its output is not comparable with legacy values.
package colorspace
