package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var readingsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bp_readings_recorded_total",
		Help: "Total number of readings recorded, by severity category",
	},
	[]string{"category"},
)
