// Package mock provides a deterministic vision.ColorExtractor for tests
// and offline runs.
package mock
