package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	grantsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corre_wallet_grants_total",
		Help: "Number of point grants committed, by cause.",
	}, []string{"cause"})

	consumesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "corre_wallet_consumes_total",
		Help: "Number of successful point consumptions.",
	})

	insufficientTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "corre_wallet_insufficient_points_total",
		Help: "Number of consume/redeem requests rejected for insufficient balance.",
	})

	pointsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "corre_wallet_points_consumed_total",
		Help: "Total points debited from wallets.",
	})
)
