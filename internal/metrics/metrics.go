// Package metrics provides Prometheus metrics collection for the load planner.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Plan outcome labels.
const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
	StatusError    = "error"
)

// Recorder holds the collectors registered for one service instance.
type Recorder struct {
	gatherer prometheus.Gatherer

	plansTotal       *prometheus.CounterVec
	planDuration     prometheus.Histogram
	planUtilization  prometheus.Histogram
	boxesPlacedTotal prometheus.Counter
	httpRequests     *prometheus.CounterVec
}

// NewRecorder creates a Recorder backed by a fresh registry.
func NewRecorder() (*Recorder, error) {
	reg := prometheus.NewRegistry()
	return NewRecorderWith(reg, reg)
}

// NewRecorderWith registers the collectors on reg and serves them from gatherer.
func NewRecorderWith(reg prometheus.Registerer, gatherer prometheus.Gatherer) (*Recorder, error) {
	r := &Recorder{
		gatherer: gatherer,
		plansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "load_plans_total",
				Help: "Total number of load plans computed",
			},
			[]string{"status"},
		),
		planDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "load_plan_duration_seconds",
				Help:    "Load plan computation duration in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
		),
		planUtilization: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "load_plan_utilization_percent",
				Help:    "Used container volume percentage per load plan",
				Buckets: prometheus.LinearBuckets(10, 10, 10),
			},
		),
		boxesPlacedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "load_plan_boxes_placed_total",
				Help: "Total number of unit boxes placed across all load plans",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
	}

	collectors := []prometheus.Collector{
		r.plansTotal, r.planDuration, r.planUtilization, r.boxesPlacedTotal, r.httpRequests,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RecordPlan records metrics for a successful load plan.
func (r *Recorder) RecordPlan(duration time.Duration, utilization float64, placed int) {
	if r == nil {
		return
	}
	r.plansTotal.WithLabelValues(StatusOK).Inc()
	r.planDuration.Observe(duration.Seconds())
	r.planUtilization.Observe(utilization)
	r.boxesPlacedTotal.Add(float64(placed))
}

// RecordPlanFailure counts a plan that did not produce a result.
func (r *Recorder) RecordPlanFailure(status string) {
	if r == nil {
		return
	}
	r.plansTotal.WithLabelValues(status).Inc()
}

// RecordHTTPRequest counts a served HTTP request.
func (r *Recorder) RecordHTTPRequest(method, path string, status int) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// IsAlreadyRegistered reports whether err came from registering a duplicate collector.
func IsAlreadyRegistered(err error) bool {
	var are prometheus.AlreadyRegisteredError
	return errors.As(err, &are)
}
