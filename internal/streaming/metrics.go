package streaming

import "github.com/prometheus/client_golang/prometheus"

var (
	dispatchedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "voxstream_streaming_dispatched_total",
		Help: "Generation jobs handed to the dispatcher.",
	}, []string{"manager"})

	cancelledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "voxstream_streaming_cancelled_total",
		Help: "Pending keys cancelled because they left the wanted set.",
	}, []string{"manager"})

	installedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "voxstream_streaming_installed_total",
		Help: "Results inserted into the owner.",
	}, []string{"manager"})

	evictedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "voxstream_streaming_evicted_total",
		Help: "Live keys removed from the owner.",
	}, []string{"manager"})

	failedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "voxstream_streaming_failed_total",
		Help: "Pending keys whose generation failed or whose worker was lost.",
	}, []string{"manager"})

	keysGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "voxstream_streaming_keys",
		Help: "Keys per streaming state.",
	}, []string{"manager", "state"})

	installLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voxstream_streaming_install_latency_seconds",
		Help:    "Time from dispatch to installation.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"manager"})
)

func init() {
	prometheus.MustRegister(
		dispatchedTotal,
		cancelledTotal,
		installedTotal,
		evictedTotal,
		failedTotal,
		keysGauge,
		installLatency,
	)
}
