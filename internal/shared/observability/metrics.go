package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "styledetect_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "styledetect_analysis_seconds",
		Help:    "Time spent on high-level analysis tasks.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})

	FilesAnalyzedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "styledetect_files_analyzed_total",
		Help: "Total number of files analyzed, by outcome.",
	}, []string{"outcome"})

	ClassificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "styledetect_classifications_total",
		Help: "Total number of tagged templates classified, by result kind.",
	}, []string{"kind"})

	ClassificationCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "styledetect_classification_cache_hits_total",
		Help: "Total number of classifications answered from the per-file cache.",
	})

	ResolverCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "styledetect_resolver_cache_hits_total",
		Help: "Total number of module resolutions answered from cache.",
	})

	ResolverCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "styledetect_resolver_cache_misses_total",
		Help: "Total number of module resolutions that hit the filesystem.",
	})

	UnresolvedSpecifiersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "styledetect_unresolved_specifiers_total",
		Help: "Total number of module specifiers that could not be resolved.",
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "styledetect_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RescansThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "styledetect_rescans_throttled_total",
		Help: "Total number of watch-mode rescans delayed by the rate limiter.",
	})

	HistoryWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "styledetect_history_writes_total",
		Help: "Total number of run records handed to the history writer, by outcome.",
	}, []string{"outcome"})

	HistoryQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "styledetect_history_queue_depth",
		Help: "Run records waiting to be written to the history store.",
	})
)
