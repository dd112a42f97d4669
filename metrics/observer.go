package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/poiesic/colormatch/batch"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "colormatch"

// Item outcomes used as the "outcome" label of the items counter.
const (
	OutcomeRead    = "read"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
	OutcomeWritten = "written"
)

// Observer records job and chunk progress in Prometheus collectors.
type Observer struct {
	jobsStarted   *prometheus.CounterVec
	jobsFinished  *prometheus.CounterVec
	jobsRunning   *prometheus.GaugeVec
	items         *prometheus.CounterVec
	chunks        *prometheus.CounterVec
	chunkDuration *prometheus.HistogramVec
	jobDuration   *prometheus.HistogramVec

	mu      sync.Mutex
	running map[uint64]struct{}
}

var _ batch.Observer = (*Observer)(nil)

// NewObserver creates an Observer and registers its collectors with reg.
// An empty namespace uses DefaultNamespace.
func NewObserver(reg prometheus.Registerer, namespace string) (*Observer, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	o := &Observer{
		running: make(map[uint64]struct{}),
		jobsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_started_total",
			Help:      "Batch jobs started.",
		}, []string{"pipeline"}),
		jobsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_finished_total",
			Help:      "Batch jobs finished, by terminal status.",
		}, []string{"pipeline", "status"}),
		jobsRunning: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_running",
			Help:      "Batch jobs currently running.",
		}, []string{"pipeline"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_total",
			Help:      "Records handled by batch jobs, by outcome.",
		}, []string{"pipeline", "outcome"}),
		chunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_total",
			Help:      "Chunks committed by batch jobs.",
		}, []string{"pipeline"}),
		chunkDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunk_duration_seconds",
			Help:      "Time to read, process and write one chunk.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 14),
		}, []string{"pipeline"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Wall time of finished batch jobs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14),
		}, []string{"pipeline", "status"}),
	}

	for _, c := range []prometheus.Collector{
		o.jobsStarted, o.jobsFinished, o.jobsRunning, o.items,
		o.chunks, o.chunkDuration, o.jobDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// JobStarted implements batch.Observer.
func (o *Observer) JobStarted(job *batch.ChunkJob) {
	o.mu.Lock()
	o.running[job.ID] = struct{}{}
	o.mu.Unlock()

	o.jobsStarted.WithLabelValues(job.Name).Inc()
	o.jobsRunning.WithLabelValues(job.Name).Inc()
}

// ChunkCompleted implements batch.Observer.
func (o *Observer) ChunkCompleted(job *batch.ChunkJob, stats batch.ChunkStats) {
	o.items.WithLabelValues(job.Name, OutcomeRead).Add(float64(stats.Read))
	o.items.WithLabelValues(job.Name, OutcomeSkipped).Add(float64(stats.Skipped))
	o.items.WithLabelValues(job.Name, OutcomeFailed).Add(float64(stats.Failed))
	o.items.WithLabelValues(job.Name, OutcomeWritten).Add(float64(stats.Written))
	o.chunks.WithLabelValues(job.Name).Inc()
	o.chunkDuration.WithLabelValues(job.Name).Observe(stats.Duration.Seconds())
}

// JobFinished implements batch.Observer.
func (o *Observer) JobFinished(job *batch.ChunkJob) {
	status := job.Status.String()
	o.jobsFinished.WithLabelValues(job.Name, status).Inc()
	o.mu.Lock()
	_, started := o.running[job.ID]
	delete(o.running, job.ID)
	o.mu.Unlock()
	if started {
		o.jobsRunning.WithLabelValues(job.Name).Dec()
	}
	o.jobDuration.WithLabelValues(job.Name, status).Observe(job.Duration().Seconds())
}
