package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the server's metrics on a private registry.
type Collector struct {
	toolCalls     *prometheus.CounterVec
	toolDuration  *prometheus.HistogramVec
	buildDuration prometheus.Histogram
	sourceErrors  prometheus.Counter
	lastGames     prometheus.Gauge
	lastPlayers   prometheus.Gauge

	registry *prometheus.Registry
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,

		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ti_tool_calls_total",
			Help: "Tool calls by tool name and outcome",
		}, []string{"tool", "outcome"}),

		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ti_tool_duration_seconds",
			Help:    "Time spent serving a tool call",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}, []string{"tool"}),

		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ti_document_build_duration_seconds",
			Help:    "Time to load the source and build the document",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),

		sourceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ti_source_errors_total",
			Help: "Failed source loads or pipeline runs",
		}),

		lastGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ti_document_games",
			Help: "Games in the most recently built document",
		}),

		lastPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ti_document_players",
			Help: "Players in the most recently built document",
		}),
	}

	registry.MustRegister(
		c.toolCalls,
		c.toolDuration,
		c.buildDuration,
		c.sourceErrors,
		c.lastGames,
		c.lastPlayers,
	)
	registry.MustRegister(collectors.NewGoCollector())

	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) RecordToolCall(tool string, took time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.toolCalls.WithLabelValues(tool, outcome).Inc()
	c.toolDuration.WithLabelValues(tool).Observe(took.Seconds())
}

func (c *Collector) RecordBuild(took time.Duration, games, players int) {
	c.buildDuration.Observe(took.Seconds())
	c.lastGames.Set(float64(games))
	c.lastPlayers.Set(float64(players))
}

func (c *Collector) RecordSourceError() {
	c.sourceErrors.Inc()
}
