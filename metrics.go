package main

import "github.com/prometheus/client_golang/prometheus"

// - documents indexed (counter)
// - words indexed (counter)
// - flush duration (histogram)
// - fetch errors by reason (counter)
// - crawl items seen / inserted (counter)

func init() {
	prometheus.MustRegister(metricsDocsIndexed)
	prometheus.MustRegister(metricsWordsIndexed)
	prometheus.MustRegister(metricsFlushDuration)
	prometheus.MustRegister(metricsFetchErrors)
	prometheus.MustRegister(metricsCrawlItemsSeen)
	prometheus.MustRegister(metricsCrawlItemsInserted)
}

var metricsDocsIndexed = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "scout_docs_indexed_total",
		Help: "Documents inserted into the index",
	},
)

var metricsWordsIndexed = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "scout_words_indexed_total",
		Help: "Distinct word postings touched during inserts",
	},
)

var metricsFlushDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name: "scout_flush_duration_seconds",
		Help: "Time spent flushing the index stores to disk",
	},
)

var metricsFetchErrors = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "scout_fetch_errors_total",
		Help: "Fetch errors by reason",
	},
	[]string{"reason"},
)

var metricsCrawlItemsSeen = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "scout_crawl_items_seen_total",
		Help: "Feed items seen during a crawl",
	},
)

var metricsCrawlItemsInserted = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "scout_crawl_items_inserted_total",
		Help: "Feed items newly inserted during a crawl",
	},
)
