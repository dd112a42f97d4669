// Package metrics exports batch job progress as Prometheus metrics.
//
// Observer implements batch.Observer. Register it on a Run with
// batch.WithObserver and serve its registry with promhttp.
package metrics
