package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "verylcheck_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	})

	PassDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "verylcheck_pass_seconds",
		Help:    "Time spent in one analyzer pass over one source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"pass"})

	FilesCheckedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "verylcheck_files_checked_total",
		Help: "Total number of source files run through the analyzer.",
	})

	FactsRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verylcheck_facts_recorded_total",
		Help: "Total number of assignment facts recorded, by innermost position frame.",
	}, []string{"position"})

	DiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verylcheck_diagnostics_total",
		Help: "Total number of analyzer diagnostics raised, by code.",
	}, []string{"code"})

	SymbolsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "verylcheck_symbols_total",
		Help: "Number of symbols in the most recent symbol table.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "verylcheck_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RechecksThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "verylcheck_rechecks_throttled_total",
		Help: "Total number of watch-mode re-checks delayed by the rate limiter.",
	})

	FactsPersistDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "verylcheck_facts_persist_seconds",
		Help:    "Latency for writing one analysis run to the facts store.",
		Buckets: prometheus.DefBuckets,
	})
)
