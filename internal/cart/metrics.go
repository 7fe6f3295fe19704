package cart

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation outcomes.
const (
	outcomeApplied    = "applied"
	outcomeNoop       = "noop"
	outcomeInvalid    = "invalid"
	outcomeSaveFailed = "save_failed"
)

var (
	cartOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_operations_total",
			Help: "Total number of cart operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	cartCheckoutLinksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_checkout_links_total",
			Help: "Total number of checkout deep links opened",
		},
	)
)
