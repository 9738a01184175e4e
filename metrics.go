package jacquesctf

import "github.com/prometheus/client_golang/prometheus"

var (
	coverageFills = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "jacquesctf",
		Subsystem: "packet",
		Name:      "coverage_fills_total",
		Help:      "Number of times the working region/event-record cache was (re)filled.",
	})

	coverageFillLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "jacquesctf",
		Subsystem: "packet",
		Name:      "coverage_fill_seconds",
		Help:      "Latency of a single coverage fill (checkpoint seek plus replay).",
	})

	offsetLRUHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "jacquesctf",
		Subsystem: "packet",
		Name:      "offset_lru_hits_total",
		Help:      "RegionAt calls served directly from the offset LRU cache.",
	})

	offsetLRUMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "jacquesctf",
		Subsystem: "packet",
		Name:      "offset_lru_misses_total",
		Help:      "RegionAt calls not already served by the offset LRU cache.",
	})

	checkpointsBuilt = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "jacquesctf",
		Subsystem: "packet",
		Name:      "checkpoints_built_total",
		Help:      "Packets for which the checkpoint pass ran to completion.",
	})

	eventRecordsDecoded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "jacquesctf",
		Subsystem: "packet",
		Name:      "event_records_decoded_total",
		Help:      "Event records fully decoded across all coverage fills and checkpoint passes.",
	})
)

func init() {
	prometheus.MustRegister(
		coverageFills,
		coverageFillLatency,
		offsetLRUHits,
		offsetLRUMisses,
		checkpointsBuilt,
		eventRecordsDecoded,
	)
}
