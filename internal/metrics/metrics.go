// Package metrics exposes pipeline state in the Prometheus text format.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/paperbridge/internal/processing"
)

const statisticsTimeout = 5 * time.Second

type StatisticsSource interface {
	Statistics(ctx context.Context) processing.Statistics
}

type Metrics struct {
	registry *prometheus.Registry
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "document_outcomes_total",
			Help: "Processing attempts by outcome since start.",
		}, []string{"status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "document_processing_duration_seconds",
			Help:    "Time spent processing one document.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.outcomes,
		m.duration,
	)

	return m
}

// ObserveOutcome records one finished processing attempt.
func (m *Metrics) ObserveOutcome(status processing.Status, elapsed time.Duration) {
	m.outcomes.WithLabelValues(string(status)).Inc()
	m.duration.WithLabelValues(string(status)).Observe(elapsed.Seconds())
}

// CollectStatistics exports the store's document counts on every scrape.
func (m *Metrics) CollectStatistics(src StatisticsSource) error {
	return m.registry.Register(newStatisticsCollector(src))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

var statuses = []processing.Status{
	processing.StatusPending,
	processing.StatusProcessing,
	processing.StatusCompleted,
	processing.StatusFailed,
	processing.StatusSkipped,
}

type statisticsCollector struct {
	src         StatisticsSource
	documents   *prometheus.Desc
	unresolved  *prometheus.Desc
	successRate *prometheus.Desc
	up          *prometheus.Desc
}

func newStatisticsCollector(src StatisticsSource) *statisticsCollector {
	return &statisticsCollector{
		src: src,
		documents: prometheus.NewDesc("processed_documents_total",
			"Tracked documents by processing status.", []string{"status"}, nil),
		unresolved: prometheus.NewDesc("processing_errors_unresolved",
			"Processing errors not yet resolved.", nil, nil),
		successRate: prometheus.NewDesc("processing_success_rate_percent",
			"Completed documents as a percentage of all tracked documents.", nil, nil),
		up: prometheus.NewDesc("processing_store_up",
			"Whether the processing store could be read.", nil, nil),
	}
}

func (c *statisticsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.documents
	ch <- c.unresolved
	ch <- c.successRate
	ch <- c.up
}

func (c *statisticsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), statisticsTimeout)
	defer cancel()

	stats := c.src.Statistics(ctx)

	if stats.Error != "" {
		ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 0)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 1)

	counts := map[processing.Status]int{
		processing.StatusPending:    stats.Pending,
		processing.StatusProcessing: stats.Processing,
		processing.StatusCompleted:  stats.Completed,
		processing.StatusFailed:     stats.Failed,
		processing.StatusSkipped:    stats.Skipped,
	}

	for _, status := range statuses {
		ch <- prometheus.MustNewConstMetric(c.documents, prometheus.GaugeValue, float64(counts[status]), string(status))
	}

	ch <- prometheus.MustNewConstMetric(c.unresolved, prometheus.GaugeValue, float64(stats.UnresolvedErrors))
	ch <- prometheus.MustNewConstMetric(c.successRate, prometheus.GaugeValue, stats.SuccessRate)
}
