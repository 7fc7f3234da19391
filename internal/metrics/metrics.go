package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Resolutions        *prometheus.CounterVec
	ResolutionFailures *prometheus.CounterVec
	CascadeSteps       *prometheus.CounterVec
	RequestSeconds     *prometheus.HistogramVec
	ProviderErrors     *prometheus.CounterVec
	TaskProcessed      *prometheus.CounterVec
	ActiveWorkers      prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Resolutions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "locus_resolutions_total",
			Help: "Total number of completed resolutions by query kind and precision tier.",
		}, []string{"kind", "tier"}),
		ResolutionFailures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "locus_resolution_failures_total",
			Help: "Total number of resolutions that ended with an error, by reason.",
		}, []string{"reason"}),
		CascadeSteps: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "locus_cascade_steps_total",
			Help: "Geocoder cascade steps by step number and outcome.",
		}, []string{"step", "outcome"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "locus_provider_request_duration_seconds",
			Help:    "Duration of requests to the external address providers.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ProviderErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "locus_provider_errors_total",
			Help: "Total number of transport errors received from address providers.",
		}, []string{"provider"}),
		TaskProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "locus_backfill_tasks_processed_total",
			Help: "Total number of processed address backfill tasks.",
		}, []string{"status"}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "locus_backfill_active_workers",
			Help: "Current number of active workers processing backfill tasks.",
		}),
	}
}
