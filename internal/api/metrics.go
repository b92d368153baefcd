package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "courtage_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	quotesTotal     *prometheus.CounterVec
	assistantCalls  *prometheus.CounterVec
	ratesReloads    *prometheus.CounterVec
	solverTotal     *prometheus.CounterVec
	comparisonsSize prometheus.Histogram
)

// InitMetrics registers the API collectors with the default registry
func InitMetrics() {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		)
		quotesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "quotes_total",
				Help: "Quotes computed by product and result",
			},
			[]string{"product", "result"},
		)
		assistantCalls = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "assistant_calls_total",
				Help: "Assistant gateway calls by operation and result",
			},
			[]string{"op", "result"},
		)
		ratesReloads = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rates_reloads_total",
				Help: "Rate table reloads by result",
			},
			[]string{"result"},
		)
		solverTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "solver_runs_total",
				Help: "Solver runs by target and outcome",
			},
			[]string{"target", "result"},
		)
		comparisonsSize = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "comparison_variants",
				Help:    "Number of variants per comparison",
				Buckets: []float64{1, 2, 3, 5, 8},
			},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			quotesTotal,
			assistantCalls,
			ratesReloads,
			solverTotal,
			comparisonsSize,
		)
	})
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}

// ObserveQuote counts a quote computation
func ObserveQuote(product string, err error) {
	if product == "" {
		product = "unknown"
	}
	if quotesTotal != nil {
		quotesTotal.WithLabelValues(product, result(err)).Inc()
	}
}

// ObserveAssistant counts an assistant call
func ObserveAssistant(op string, err error) {
	if assistantCalls != nil {
		assistantCalls.WithLabelValues(op, result(err)).Inc()
	}
}

// ObserveRatesReload counts a rate table reload
func ObserveRatesReload(err error) {
	if ratesReloads != nil {
		ratesReloads.WithLabelValues(result(err)).Inc()
	}
}

func observeSolve(target string, success bool) {
	if solverTotal == nil {
		return
	}
	r := resultSuccess
	if !success {
		r = "unreachable"
	}
	solverTotal.WithLabelValues(target, r).Inc()
}

func observeComparison(variants int) {
	if comparisonsSize != nil {
		comparisonsSize.Observe(float64(variants))
	}
}

// metricsMiddleware records request count and latency per route pattern
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if httpRequests != nil {
			httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		}
		if httpLatency != nil {
			httpLatency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		}
	})
}
