package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// PollsTotal counts completed poll cycles per wallet.
	PollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletwatch_polls_total",
			Help: "Total number of completed balance poll cycles.",
		},
		[]string{"wallet"},
	)

	// PollErrorsTotal counts per-asset fetch failures by error kind.
	PollErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletwatch_poll_errors_total",
			Help: "Total number of failed balance fetches.",
		},
		[]string{"wallet", "asset", "kind"},
	)

	// BalanceEventsTotal counts detected balance increases.
	BalanceEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletwatch_balance_events_total",
			Help: "Total number of detected balance increases.",
		},
		[]string{"wallet", "asset"},
	)

	// NotificationsTotal counts flushed notification messages.
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletwatch_notifications_total",
			Help: "Total number of emitted notification messages.",
		},
		[]string{"wallet"},
	)

	// WriteOpsTotal counts transfer and sign attempts by outcome.
	WriteOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletwatch_write_ops_total",
			Help: "Total number of transfer/sign operations.",
		},
		[]string{"wallet", "op", "status"},
	)

	// BreakerTransitionsTotal counts circuit breaker state changes per asset.
	BreakerTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletwatch_breaker_transitions_total",
			Help: "Total number of fetch circuit breaker state transitions.",
		},
		[]string{"wallet", "asset", "state"},
	)
)

// MustRegisterMetrics registers all collectors with the default registry.
// Call once from main.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		PollsTotal,
		PollErrorsTotal,
		BalanceEventsTotal,
		NotificationsTotal,
		WriteOpsTotal,
		BreakerTransitionsTotal,
	)
}
