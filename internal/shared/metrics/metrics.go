package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	applicationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hippo_applications_created_total",
		Help: "Total applications created",
	})

	documentsUploaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hippo_documents_uploaded_total",
		Help: "Total documents stored, by document type",
	}, []string{"file_type"})

	verificationUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hippo_verification_updates_total",
		Help: "Total admin verification updates, by resulting state",
	}, []string{"outcome"})

	exportedApplications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hippo_export_applications_total",
		Help: "Applications handed to the export endpoint, by result",
	}, []string{"result"})

	recoveredPanics = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hippo_http_panics_total",
		Help: "Handler panics turned into 500 responses, by route",
	}, []string{"route"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hippo_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// IncApplicationCreated increments the created counter.
func IncApplicationCreated() {
	applicationsCreated.Inc()
}

// IncDocumentUploaded counts a stored document of the given type.
func IncDocumentUploaded(fileType string) {
	documentsUploaded.WithLabelValues(fileType).Inc()
}

// IncVerificationUpdate counts an admin update; outcome is "verified" or "unverified".
func IncVerificationUpdate(outcome string) {
	verificationUpdates.WithLabelValues(outcome).Inc()
}

// AddExported counts applications passed to the export endpoint.
func AddExported(result string, n int) {
	if n <= 0 {
		return
	}
	exportedApplications.WithLabelValues(result).Add(float64(n))
}

// ObserveRequest records one served HTTP request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// IncPanic counts a recovered handler panic.
func IncPanic(route string) {
	if route == "" {
		route = "unmatched"
	}
	recoveredPanics.WithLabelValues(route).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
