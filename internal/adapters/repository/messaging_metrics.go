package repository

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	alertsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bp_alerts_published_total",
			Help: "Total number of hypertensive crisis alerts published to RabbitMQ",
		},
		[]string{"status"},
	)

	submissionsConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bp_submissions_consumed_total",
			Help: "Total number of reading submissions consumed from RabbitMQ",
		},
		[]string{"status"},
	)

	submissionConsumeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bp_submission_consume_duration_seconds",
			Help:    "Duration of reading submission processing",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"status"},
	)
)
