package worker

import "github.com/prometheus/client_golang/prometheus"

// Job outcome label values.
const (
	outcomeExecuted = "executed"
	outcomeSkipped  = "skipped"
	outcomeFailed   = "failed"
	outcomePanicked = "panicked"
)

var (
	jobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxstream_worker_jobs_total",
			Help: "Total number of jobs dequeued by workers, by outcome.",
		},
		[]string{"pool", "outcome"},
	)

	workersAlive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "voxstream_worker_alive",
			Help: "Number of worker goroutines still running.",
		},
		[]string{"pool"},
	)

	workerDeaths = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voxstream_worker_deaths_total",
			Help: "Workers terminated by a panicking generation function.",
		},
		[]string{"pool"},
	)

	queueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "voxstream_worker_queue_depth",
			Help: "Jobs waiting in the shared queue.",
		},
		[]string{"pool"},
	)

	generateSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voxstream_worker_generate_seconds",
			Help:    "Duration of the generation function per job, in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		},
		[]string{"pool"},
	)
)

func init() {
	prometheus.MustRegister(jobsTotal)
	prometheus.MustRegister(workersAlive)
	prometheus.MustRegister(workerDeaths)
	prometheus.MustRegister(queueDepth)
	prometheus.MustRegister(generateSeconds)
}
