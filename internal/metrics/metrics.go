package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	// PaymentCallbacks counts payment gateway notifications by outcome
	// (acknowledged/rejected) and reason (paid, duplicate,
	// signature_mismatch, ...). Duplicate deliveries are expected under
	// at-least-once; a rising rejected/signature_mismatch series is not.
	PaymentCallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_callbacks_total",
			Help: "Payment gateway notifications by outcome and reason.",
		},
		[]string{"outcome", "reason"},
	)

	// OrdersCreated counts orders registered with the gateway.
	OrdersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders created by product type.",
		},
		[]string{"product"},
	)

	// VIPGrants counts successful entitlement grants.
	VIPGrants = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vip_grants_total",
			Help: "Successful VIP entitlement grants.",
		},
	)

	// GrantFailures counts paid orders whose VIP grant failed and needs
	// manual follow-up.
	GrantFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vip_grant_failures_total",
			Help: "Paid orders whose VIP grant failed.",
		},
	)
)

func init() {
	registry.MustRegister(
		PaymentCallbacks,
		OrdersCreated,
		VIPGrants,
		GrantFailures,
	)
}

// Handler exposes the metrics registry for the /metrics route.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
