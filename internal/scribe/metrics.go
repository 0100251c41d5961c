package scribe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesSucceeded tracks the number of pages fetched and persisted.
	PagesSucceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitescribe_pages_succeeded_total",
		Help: "The total number of pages successfully fetched and saved.",
	})
	// PagesFailed tracks the number of pages that ended in a failure outcome.
	PagesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitescribe_pages_failed_total",
		Help: "The total number of pages that failed to fetch.",
	})
	// WordsExtracted tracks the cumulative word count across saved pages.
	WordsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitescribe_words_extracted_total",
		Help: "The cumulative number of words extracted from saved pages.",
	})
	// FetchDuration observes wall-clock latency of individual page fetches.
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sitescribe_fetch_duration_seconds",
		Help:    "Latency of individual page fetches.",
		Buckets: prometheus.DefBuckets,
	})
)
