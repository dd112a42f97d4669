// Package local extracts dominant colors in-process.
//
// Photos are decoded and reduced to a small sample width, then every
// opaque pixel is counted in a coarse RGB histogram. The most populated
// bucket wins and its average color is reported.
package local
