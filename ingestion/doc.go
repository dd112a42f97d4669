// Package ingestion imports catalog records from delimited files.
//
// An import is a chunked batch job:
//   - CSVReader turns each data line into a Record, skipping the header
//   - Deduplicator validates records and drops ones that would not change the catalog
//   - CatalogWriter upserts each chunk's survivors in one transaction
//
// Malformed lines and invalid records are counted as failed items. They
// never fail the job.
package ingestion
