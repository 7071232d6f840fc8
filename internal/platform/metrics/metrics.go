package metrics

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector keeps process-local counters for HTTP traffic and payroll runs.
// The same observations feed a private Prometheus registry for scraping.
type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	payrollRuns       uint64
	payrollEntries    uint64
	payrollFailures   uint64
	payrollDurationMs uint64

	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration prometheus.Histogram
	runs            prometheus.Counter
	entries         prometheus.Counter
	failures        prometheus.Counter
	runDuration     prometheus.Histogram
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "outlethr_http_requests_total",
			Help: "HTTP requests by status code.",
		}, []string{"code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "outlethr_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "outlethr_payroll_runs_total",
			Help: "Payroll computations performed.",
		}),
		entries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "outlethr_payroll_entries_total",
			Help: "Payroll entries produced.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "outlethr_payroll_failures_total",
			Help: "Staff entries that failed to compute.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "outlethr_payroll_run_duration_seconds",
			Help:    "Payroll computation latency.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
	c.registry.MustRegister(c.requests, c.requestDuration, c.runs, c.entries, c.failures, c.runDuration)
	return c
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))

	c.requests.WithLabelValues(strconv.Itoa(status)).Inc()
	c.requestDuration.Observe(duration.Seconds())
}

func (c *Collector) RecordPayrollRun(entries, failures int, duration time.Duration) {
	atomic.AddUint64(&c.payrollRuns, 1)
	atomic.AddUint64(&c.payrollEntries, uint64(max(entries, 0)))
	atomic.AddUint64(&c.payrollFailures, uint64(max(failures, 0)))
	atomic.AddUint64(&c.payrollDurationMs, uint64(duration.Milliseconds()))

	c.runs.Inc()
	c.entries.Add(float64(max(entries, 0)))
	c.failures.Add(float64(max(failures, 0)))
	c.runDuration.Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	runs := atomic.LoadUint64(&c.payrollRuns)
	runMs := atomic.LoadUint64(&c.payrollDurationMs)
	avgRun := float64(0)
	if runs > 0 {
		avgRun = float64(runMs) / float64(runs)
	}
	return map[string]any{
		"requestsTotal":          total,
		"errorsTotal":            errs,
		"rateLimitedTotal":       limited,
		"avgDurationMs":          avg,
		"totalDurationMs":        totalMs,
		"payrollRunsTotal":       runs,
		"payrollEntriesTotal":    atomic.LoadUint64(&c.payrollEntries),
		"payrollFailuresTotal":   atomic.LoadUint64(&c.payrollFailures),
		"payrollAvgDurationMs":   avgRun,
		"payrollTotalDurationMs": runMs,
	}
}
