package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/xavierca1/mandate-sync/internal/usecase"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	passesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_passes_total",
			Help: "Total number of reconciliation passes",
		},
		[]string{"result"},
	)

	recordsLastPass = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reconcile_records_last_pass",
			Help: "Number of records read by the last pass",
		},
	)

	lastPassTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reconcile_last_pass_timestamp_seconds",
			Help: "Unix time at which the last pass finished",
		},
	)

	actionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_actions_total",
			Help: "Invite and link actions by outcome",
		},
		[]string{"action", "result"},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

// RecordPass publica o resultado de uma passada de reconciliação.
func RecordPass(report usecase.PassReport) {
	result := "ok"
	if report.ListErr != nil {
		result = "list_error"
		RecordIntegrationError("airtable")
	}
	passesTotal.WithLabelValues(result).Inc()
	recordsLastPass.Set(float64(report.Records))
	lastPassTimestamp.Set(float64(report.FinishedAt.Unix()))

	actionsTotal.WithLabelValues(usecase.ActionInvite, "success").Add(float64(report.InvitesSent))
	actionsTotal.WithLabelValues(usecase.ActionLink, "success").Add(float64(report.MandatesLinked))

	for _, f := range report.Failures {
		if usecase.IsDomainError(f.Err) {
			actionsTotal.WithLabelValues(f.Action, "data_error").Inc()
			continue
		}
		actionsTotal.WithLabelValues(f.Action, "remote_error").Inc()
		RecordIntegrationError(serviceOf(f.Err))
	}
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}

// serviceOf lê o prefixo do código do TechnicalError (SELLSY_..., AIRTABLE_...)
func serviceOf(err error) string {
	var tech *usecase.TechnicalError
	if errors.As(err, &tech) {
		if prefix, _, ok := strings.Cut(tech.Code, "_"); ok {
			return strings.ToLower(prefix)
		}
	}
	return "unknown"
}
