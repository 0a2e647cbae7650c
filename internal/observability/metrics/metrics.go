package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "estatehub_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "estatehub_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	offersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "estatehub_offers_created_total",
		Help: "Count of offer creation attempts by result",
	}, []string{"result"})

	offerStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "estatehub_offer_status_changes_total",
		Help: "Count of offer status transitions by target status",
	}, []string{"status"})

	propertyResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "estatehub_property_resolutions_total",
		Help: "Count of property identifier resolutions by lookup path",
	}, []string{"path"})

	propertyCacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "estatehub_property_cache_ops_total",
		Help: "Count of property cache lookups by outcome",
	}, []string{"outcome"})

	listedProperties = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "estatehub_listed_properties",
		Help: "Number of properties currently listed",
	})

	pendingOffers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "estatehub_pending_offers",
		Help: "Number of offers currently in PENDING status",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveOfferCreated records an offer creation attempt with a result label.
func ObserveOfferCreated(result string) {
	offersCreated.WithLabelValues(result).Inc()
}

// ObserveStatusChange records an offer status transition.
func ObserveStatusChange(status string) {
	offerStatusChanges.WithLabelValues(status).Inc()
}

// ObserveResolution records which lookup path resolved an identifier:
// "native", "property_id", or "miss".
func ObserveResolution(path string) {
	propertyResolutions.WithLabelValues(path).Inc()
}

// ObserveCacheOp records a property cache lookup outcome: "hit", "miss",
// "error", or "skip" when the breaker is open.
func ObserveCacheOp(outcome string) {
	propertyCacheOps.WithLabelValues(outcome).Inc()
}

// SetListedProperties sets the listed property gauge.
func SetListedProperties(count int) {
	if count < 0 {
		count = 0
	}
	listedProperties.Set(float64(count))
}

// SetPendingOffers sets the pending offer gauge.
func SetPendingOffers(count int) {
	if count < 0 {
		count = 0
	}
	pendingOffers.Set(float64(count))
}
