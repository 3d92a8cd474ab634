// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package metrics collects Prometheus metrics of the auth service and
// exposes them for scraping.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dealer_auth"

// Outcome labels of authentication events.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeLocked   = "locked"
	OutcomeLimited  = "rate_limited"
	OutcomeDisabled = "disabled"
)

// Recorder is the set of events the services, middleware and workers
// report. A nil-safe no-op implementation is available via [Nop].
type Recorder interface {
	RecordLogin(outcome string)
	RecordRegistration()
	RecordRefresh(outcome string)
	RecordLockout()
	RecordRateLimited(scope string)
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	RecordCleanup(kind string, removed int64)
}

// Collector is the Prometheus-backed [Recorder].
type Collector struct {
	logins        *prometheus.CounterVec
	registrations prometheus.Counter
	refreshes     *prometheus.CounterVec
	lockouts      prometheus.Counter
	rateLimited   *prometheus.CounterVec
	httpStatus    *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
	cleanup       *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Successful registrations.",
		}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Token refreshes by outcome.",
		}, []string{"outcome"}),
		lockouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lockouts_total",
			Help:      "Accounts locked after repeated login failures.",
		}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by a rate limiter.",
		}, []string{"scope"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP responses by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		cleanup: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_removed_total",
			Help:      "Records removed by the housekeeping worker.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		c.logins,
		c.registrations,
		c.refreshes,
		c.lockouts,
		c.rateLimited,
		c.httpStatus,
		c.httpLatency,
		c.cleanup,
	)

	return c
}

func (c *Collector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

func (c *Collector) RecordRefresh(outcome string) {
	c.refreshes.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordLockout() {
	c.lockouts.Inc()
}

func (c *Collector) RecordRateLimited(scope string) {
	c.rateLimited.WithLabelValues(scope).Inc()
}

// RecordHTTPRequest records one served request. route is the matched route
// pattern, not the raw path, to keep label cardinality bounded.
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpStatus.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) RecordCleanup(kind string, removed int64) {
	c.cleanup.WithLabelValues(kind).Add(float64(removed))
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type nopRecorder struct{}

// Nop returns a Recorder that discards everything.
func Nop() Recorder { return nopRecorder{} }

func (nopRecorder) RecordLogin(string) {}
func (nopRecorder) RecordRegistration() {}
func (nopRecorder) RecordRefresh(string) {}
func (nopRecorder) RecordLockout() {}
func (nopRecorder) RecordRateLimited(string) {}
func (nopRecorder) RecordHTTPRequest(string, string, int, time.Duration) {}
func (nopRecorder) RecordCleanup(string, int64) {}
