package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the service's prometheus instruments behind a private
// registry
type Collector struct {
	reg *prometheus.Registry

	TileFetches     prometheus.Counter
	TileFetchErrors prometheus.Counter
	TrafficSamples  *prometheus.CounterVec // level label

	ReportsSubmitted prometheus.Counter
	ReportsRejected  *prometheus.CounterVec // reason label
	ReportsConfirmed prometheus.Counter
	TrustScore       prometheus.Gauge

	TrackingActive prometheus.Gauge
	TripsCompleted prometheus.Counter

	PredictionDuration   prometheus.Histogram
	PredictionsPublished prometheus.Counter
	PublishErrs          prometheus.Counter
}

// NewCollector creates and registers all instruments
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		TileFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arrivals_tile_fetches_total",
			Help: "Total traffic tile fetch attempts.",
		}),
		TileFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arrivals_tile_fetch_errors_total",
			Help: "Total traffic tile fetches that failed or returned no image.",
		}),
		TrafficSamples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arrivals_traffic_samples_total",
			Help: "Traffic point classifications by congestion level.",
		}, []string{"level"}),
		ReportsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arrivals_reports_submitted_total",
			Help: "Total crowd reports accepted for storage.",
		}),
		ReportsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arrivals_reports_rejected_total",
			Help: "Crowd report validation failures by reason.",
		}, []string{"reason"}),
		ReportsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arrivals_reports_confirmed_total",
			Help: "Reports confirmed by an independent second device.",
		}),
		TrustScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arrivals_device_trust_score",
			Help: "Current trust score of the local device.",
		}),
		TrackingActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arrivals_tracking_active",
			Help: "1 while a GPS tracking session is running.",
		}),
		TripsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arrivals_trips_completed_total",
			Help: "Total completed GPS tracking sessions.",
		}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arrivals_prediction_duration_seconds",
			Help:    "Duration of one station prediction pass.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		PredictionsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arrivals_predictions_published_total",
			Help: "Prediction update events published.",
		}),
		PublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arrivals_publish_errors_total",
			Help: "Prediction update publish failures.",
		}),
	}

	reg.MustRegister(
		c.TileFetches, c.TileFetchErrors, c.TrafficSamples,
		c.ReportsSubmitted, c.ReportsRejected, c.ReportsConfirmed, c.TrustScore,
		c.TrackingActive, c.TripsCompleted,
		c.PredictionDuration, c.PredictionsPublished, c.PublishErrs,
	)

	return c
}

// Handler exposes the registry for a /metrics route
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
