// Package backfill fills in missing dominant colors across the catalog.
//
// A backfill is a chunked batch job that pages through the catalog in
// ascending identity order, asks a vision.ColorExtractor for the color of
// every uncolored item and stores the results. Items that already have a
// color are skipped, so running a backfill twice in a row writes nothing
// the second time. Items whose photo cannot be analyzed are counted as
// failed and picked up again by the next run.
package backfill
