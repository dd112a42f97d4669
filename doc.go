// Package colormatch catalogs products by dominant color and finds the
// items whose colors are perceptually closest to a reference item.
//
// A Catalog wraps a BadgerDB store and exposes:
//   - ImportFrom, a chunked import of delimited catalog files
//   - AnnotateAllMissing, a chunked backfill of missing dominant colors
//   - AnnotateAndSave and GetColor for single items
//   - FindSimilar, a nearest-neighbour query in CIE L*a*b* space
//
// Every batch job is recorded in the store and listed by Jobs.
package colormatch
