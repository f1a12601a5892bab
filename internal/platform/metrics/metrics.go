package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CodesIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "codes_issued_total",
			Help: "Total assessment codes issued.",
		},
	)
	CodeValidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "code_validations_total",
			Help: "Total code validations by outcome.",
		},
		[]string{"outcome"}, // valid, not_found, already_used, expired
	)
	CodeRedemptions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "code_redemptions_total",
			Help: "Total redemption attempts by outcome.",
		},
		[]string{"outcome"}, // ok, not_found, expired, already_used, center_not_found
	)
	ResultsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "results_submitted_total",
			Help: "Total result submissions by outcome.",
		},
		[]string{"outcome"}, // ok, not_redeemed, duplicate
	)
	SponsorNotifications = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sponsor_notifications_total",
			Help: "Total sponsor completion notices handed to the notifier.",
		},
	)
	OutboxPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sponsor_outbox_pending",
			Help: "Sponsor notices not yet published.",
		},
	)
	OutboxPublishFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sponsor_outbox_publish_failures_total",
			Help: "Total sponsor outbox publish failures.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		CodesIssued,
		CodeValidations,
		CodeRedemptions,
		ResultsSubmitted,
		SponsorNotifications,
		OutboxPending,
		OutboxPublishFailures,
	)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
