package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks records layout and cache events as Prometheus metrics
// on a private registry. The CLI runs to completion rather than serving
// scrapes, so metrics are written out with [PrometheusHooks.WriteFile].
type PrometheusHooks struct {
	registry *prometheus.Registry

	layouts        *prometheus.CounterVec
	layoutDuration prometheus.Histogram
	passDuration   *prometheus.HistogramVec
	graphNodes     prometheus.Histogram
	cacheEvents    *prometheus.CounterVec
	cacheBytes     prometheus.Counter
}

// NewPrometheusHooks creates hooks with all collectors registered.
func NewPrometheusHooks() *PrometheusHooks {
	reg := prometheus.NewRegistry()
	p := &PrometheusHooks{
		registry: reg,
		layouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stratum_layouts_total",
			Help: "Total number of layout calls, labelled by outcome.",
		}, []string{"status"}),
		layoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stratum_layout_duration_ms",
			Help:    "End-to-end layout latency in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
		passDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stratum_pass_duration_ms",
			Help:    "Per-pass latency in milliseconds, recorded with debug timing.",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 50, 100, 500},
		}, []string{"pass"}),
		graphNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stratum_graph_nodes",
			Help:    "Number of caller nodes per layout call.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stratum_cache_events_total",
			Help: "Cache lookups and writes, labelled by backend and event.",
		}, []string{"backend", "event"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stratum_cache_written_bytes_total",
			Help: "Bytes written to the layout cache.",
		}),
	}
	reg.MustRegister(p.layouts, p.layoutDuration, p.passDuration, p.graphNodes, p.cacheEvents, p.cacheBytes)
	return p
}

// Registry exposes the registry, e.g. for a custom exporter.
func (p *PrometheusHooks) Registry() *prometheus.Registry { return p.registry }

// WriteFile writes all metrics in the text exposition format, suitable
// for the node_exporter textfile collector.
func (p *PrometheusHooks) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, p.registry)
}

func (p *PrometheusHooks) OnLayoutStart(_ context.Context, nodeCount, _ int) {
	p.graphNodes.Observe(float64(nodeCount))
}

func (p *PrometheusHooks) OnPassComplete(_ context.Context, pass string, d time.Duration, _ error) {
	p.passDuration.WithLabelValues(pass).Observe(ms(d))
}

func (p *PrometheusHooks) OnLayoutComplete(_ context.Context, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.layouts.WithLabelValues(status).Inc()
	p.layoutDuration.Observe(ms(d))
}

func (p *PrometheusHooks) OnCacheHit(_ context.Context, backend string) {
	p.cacheEvents.WithLabelValues(backend, "hit").Inc()
}

func (p *PrometheusHooks) OnCacheMiss(_ context.Context, backend string) {
	p.cacheEvents.WithLabelValues(backend, "miss").Inc()
}

func (p *PrometheusHooks) OnCacheSet(_ context.Context, backend string, size int) {
	p.cacheEvents.WithLabelValues(backend, "set").Inc()
	p.cacheBytes.Add(float64(size))
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
