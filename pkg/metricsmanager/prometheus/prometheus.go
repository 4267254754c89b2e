package metricsmanager

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
	"github.com/kubescape/procguardian/pkg/metricsmanager"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	prometheusRuleIdLabel = "rule_id"
	metricsPath           = "/metrics"
)

var _ metricsmanager.MetricsManager = (*PrometheusMetric)(nil)

type PrometheusMetric struct {
	address  string
	registry *prometheus.Registry
	server   *http.Server

	processScannedCounter  prometheus.Counter
	processExcludedCounter prometheus.Counter
	transientErrorCounter  prometheus.Counter
	ruleCounter            *prometheus.CounterVec
	matchCounter           *prometheus.CounterVec
	alertCounter           *prometheus.CounterVec
	suppressedCounter      *prometheus.CounterVec
	cycleDuration          prometheus.Histogram

	// Cache to avoid allocating Labels maps on every call
	counterCache      map[*prometheus.CounterVec]map[string]prometheus.Counter
	counterCacheMutex sync.RWMutex
}

// NewPrometheusMetric registers the collectors on a private registry served
// at address once Start is called.
func NewPrometheusMetric(address string) *PrometheusMetric {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &PrometheusMetric{
		address:  address,
		registry: registry,
		processScannedCounter: factory.NewCounter(prometheus.CounterOpts{
			Name: "procguardian_process_scanned_counter",
			Help: "The total number of process snapshots evaluated",
		}),
		processExcludedCounter: factory.NewCounter(prometheus.CounterOpts{
			Name: "procguardian_process_excluded_counter",
			Help: "The total number of process snapshots skipped because of an excluded user",
		}),
		transientErrorCounter: factory.NewCounter(prometheus.CounterOpts{
			Name: "procguardian_transient_error_counter",
			Help: "The total number of failed process reads",
		}),
		ruleCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "procguardian_rule_counter",
			Help: "The total number of rules processed by the engine",
		}, []string{prometheusRuleIdLabel}),
		matchCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "procguardian_rule_match_counter",
			Help: "The total number of rule matches, admitted or not",
		}, []string{prometheusRuleIdLabel}),
		alertCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "procguardian_alert_counter",
			Help: "The total number of alerts written to the sink",
		}, []string{prometheusRuleIdLabel}),
		suppressedCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "procguardian_alert_suppressed_counter",
			Help: "The total number of matches suppressed by deduplication",
		}, []string{prometheusRuleIdLabel}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "procguardian_cycle_duration_seconds",
			Help:    "Time taken to evaluate one full process set",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}),
		counterCache: make(map[*prometheus.CounterVec]map[string]prometheus.Counter),
	}
}

func (p *PrometheusMetric) Start() {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry}))
	p.server = &http.Server{Addr: p.address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.L().Info("prometheus metrics server started", helpers.String("address", p.address), helpers.String("path", metricsPath))
		if err := p.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Error("prometheus metrics server stopped", helpers.Error(err))
		}
	}()
}

func (p *PrometheusMetric) Destroy() {
	if p.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = p.server.Shutdown(ctx)
	}
	p.registry.Unregister(p.processScannedCounter)
	p.registry.Unregister(p.processExcludedCounter)
	p.registry.Unregister(p.transientErrorCounter)
	p.registry.Unregister(p.ruleCounter)
	p.registry.Unregister(p.matchCounter)
	p.registry.Unregister(p.alertCounter)
	p.registry.Unregister(p.suppressedCounter)
	p.registry.Unregister(p.cycleDuration)
}

// Gatherer exposes the private registry.
func (p *PrometheusMetric) Gatherer() prometheus.Gatherer {
	return p.registry
}

// getCachedCounter returns a cached counter for the given rule ID to avoid map allocations
func (p *PrometheusMetric) getCachedCounter(vec *prometheus.CounterVec, ruleID string) prometheus.Counter {
	p.counterCacheMutex.RLock()
	counter, exists := p.counterCache[vec][ruleID]
	p.counterCacheMutex.RUnlock()

	if exists {
		return counter
	}

	p.counterCacheMutex.Lock()
	defer p.counterCacheMutex.Unlock()

	// Double-check after acquiring write lock
	if counter, exists := p.counterCache[vec][ruleID]; exists {
		return counter
	}

	if p.counterCache[vec] == nil {
		p.counterCache[vec] = make(map[string]prometheus.Counter)
	}
	counter = vec.With(prometheus.Labels{prometheusRuleIdLabel: ruleID})
	p.counterCache[vec][ruleID] = counter
	return counter
}

func (p *PrometheusMetric) ReportProcessScanned() {
	p.processScannedCounter.Inc()
}

func (p *PrometheusMetric) ReportProcessExcluded() {
	p.processExcludedCounter.Inc()
}

func (p *PrometheusMetric) ReportTransientError() {
	p.transientErrorCounter.Inc()
}

func (p *PrometheusMetric) ReportRuleProcessed(ruleID string) {
	p.getCachedCounter(p.ruleCounter, ruleID).Inc()
}

func (p *PrometheusMetric) ReportRuleMatch(ruleID string) {
	p.getCachedCounter(p.matchCounter, ruleID).Inc()
}

func (p *PrometheusMetric) ReportRuleAlert(ruleID string) {
	p.getCachedCounter(p.alertCounter, ruleID).Inc()
}

func (p *PrometheusMetric) ReportAlertSuppressed(ruleID string) {
	p.getCachedCounter(p.suppressedCounter, ruleID).Inc()
}

func (p *PrometheusMetric) ReportCycleDuration(duration time.Duration) {
	p.cycleDuration.Observe(duration.Seconds())
}
