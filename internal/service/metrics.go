package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cartLinesAdded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_lines_added_total",
			Help: "Total number of cart line additions",
		},
		[]string{"merged"},
	)

	cartLinesRemoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_lines_removed_total",
			Help: "Total number of cart lines removed to the ledger",
		},
		[]string{"reason"},
	)

	cartCapacityRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_capacity_rejections_total",
			Help: "Total number of cart operations rejected for exceeding variant stock",
		},
		[]string{"operation"},
	)

	cartSyncLines = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_sync_lines_total",
			Help: "Total number of cart sync line outcomes",
		},
		[]string{"outcome"},
	)
)
