package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "partimport"

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	parts       *prometheus.CounterVec
	partLatency *prometheus.HistogramVec
	unresolved  *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	unitWarns   *prometheus.CounterVec
	hookFails   *prometheus.CounterVec
	swaps       prometheus.Counter
	categories  prometheus.Gauge
	parameters  prometheus.Gauge
	cache       *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec
	sinkWrites  *prometheus.CounterVec
	sinkLatency *prometheus.HistogramVec
	requests    *prometheus.CounterVec
	reqLatency  *prometheus.HistogramVec
}

// NewPrometheus creates the collectors and registers them with reg.
// It panics if a collector is already registered.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		parts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "parts_total",
			Help: "Parts resolved, by supplier and import result.",
		}, []string{"supplier", "result"}),
		partLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "part_resolve_seconds",
			Help:    "Time to resolve one part, hooks included.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		}, []string{"supplier"}),
		unresolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "category_unresolved_total",
			Help: "Category paths that did not resolve, by reason.",
		}, []string{"supplier", "reason"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "parameters_skipped_total",
			Help: "Raw parameters not mapped onto the schema, by reason.",
		}, []string{"reason"}),
		unitWarns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "unit_warnings_total",
			Help: "Values passed through raw because unit normalization failed.",
		}, []string{"parameter"}),
		hookFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "hook_failures_total",
			Help: "Transformation hook failures, by hook.",
		}, []string{"hook", "panic"}),
		swaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "taxonomy_reloads_total",
			Help: "Taxonomy snapshots swapped in.",
		}),
		categories: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "taxonomy_categories",
			Help: "Categories in the active taxonomy.",
		}),
		parameters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "taxonomy_parameters",
			Help: "Parameters in the active schema.",
		}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_operations_total",
			Help: "Cache lookups and writes, by key type and outcome.",
		}, []string{"key_type", "op"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_written_bytes_total",
			Help: "Bytes written to the cache.",
		}, []string{"key_type"}),
		sinkWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "sink_writes_total",
			Help: "Parts written to a sink, by outcome.",
		}, []string{"sink", "status"}),
		sinkLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "sink_write_seconds",
			Help:    "Time to write one part to a sink.",
			Buckets: prometheus.DefBuckets,
		}, []string{"sink"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP API requests, by route and status code.",
		}, []string{"method", "route", "code"}),
		reqLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_seconds",
			Help:    "HTTP API request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		p.parts, p.partLatency, p.unresolved, p.skipped, p.unitWarns,
		p.hookFails, p.swaps, p.categories, p.parameters,
		p.cache, p.cacheBytes, p.sinkWrites, p.sinkLatency,
		p.requests, p.reqLatency,
	)
	return p
}

func (p *Prometheus) OnPartResolved(_ context.Context, supplier, result string, d time.Duration) {
	p.parts.WithLabelValues(supplier, result).Inc()
	p.partLatency.WithLabelValues(supplier).Observe(d.Seconds())
}

func (p *Prometheus) OnCategoryUnresolved(_ context.Context, supplier, reason string) {
	p.unresolved.WithLabelValues(supplier, reason).Inc()
}

func (p *Prometheus) OnParameterSkipped(_ context.Context, reason string) {
	p.skipped.WithLabelValues(reason).Inc()
}

func (p *Prometheus) OnUnitWarning(_ context.Context, parameter string) {
	p.unitWarns.WithLabelValues(parameter).Inc()
}

func (p *Prometheus) OnHookFailure(_ context.Context, hook string, panicked bool) {
	p.hookFails.WithLabelValues(hook, strconv.FormatBool(panicked)).Inc()
}

func (p *Prometheus) OnSnapshotSwap(_ context.Context, categories, parameters int) {
	p.swaps.Inc()
	p.categories.Set(float64(categories))
	p.parameters.Set(float64(parameters))
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cache.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cache.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cache.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnSinkWrite(_ context.Context, sink string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.sinkWrites.WithLabelValues(sink, status).Inc()
	p.sinkLatency.WithLabelValues(sink).Observe(d.Seconds())
}

func (p *Prometheus) OnRequest(_ context.Context, method, route string, code int, d time.Duration) {
	p.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	p.reqLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

// Register installs p for every hook category.
func (p *Prometheus) Register() {
	SetImportHooks(p)
	SetCacheHooks(p)
	SetSinkHooks(p)
	SetHTTPHooks(p)
}
