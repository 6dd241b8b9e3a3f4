package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cartOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_operations_total",
			Help: "Cart session operations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	staleResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_stale_responses_discarded_total",
			Help: "Backend responses discarded because a newer operation already committed.",
		},
		[]string{"operation"},
	)
)
