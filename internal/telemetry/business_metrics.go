package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for checkout, events and notifications.
type BusinessMetrics struct {
	// Checkout pipeline
	CheckoutStarted   prometheus.Counter
	CheckoutCompleted prometheus.Counter
	CheckoutFailed    *prometheus.CounterVec // code, state
	PaymentAttempts   *prometheus.CounterVec // gateway, outcome
	OrderValue        prometheus.Histogram

	// Cart reservations
	CartItemsAdded   prometheus.Counter
	CartItemsRemoved prometheus.Counter

	// Domain events
	EventsPublished *prometheus.CounterVec // kind
	HandlerFailures *prometheus.CounterVec // handler

	// Notifications
	NotificationsCreated *prometheus.CounterVec // type
	NotificationFailures prometheus.Counter
	PushesDelivered      prometheus.Counter
	PushesDropped        *prometheus.CounterVec // reason
	LiveConnections      prometheus.Gauge
	ConnectionsClosed    *prometheus.CounterVec // reason
}

// NewBusinessMetrics creates business metrics registered with reg.
// A nil reg registers with the default registry.
func NewBusinessMetrics(namespace string, reg prometheus.Registerer) *BusinessMetrics {
	if namespace == "" {
		namespace = "mercato"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	f := promauto.With(reg)
	subsystem := "business"

	return &BusinessMetrics{
		// =======================================================================
		// Checkout
		// =======================================================================
		CheckoutStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "checkout_started_total",
			Help:      "Total checkout attempts",
		}),
		CheckoutCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "checkout_completed_total",
			Help:      "Total checkouts that committed a confirmed order",
		}),
		CheckoutFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "checkout_failed_total",
			Help:      "Total aborted checkouts by error code and last reached state",
		}, []string{"code", "state"}),
		PaymentAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "payment_attempts_total",
			Help:      "Total gateway charges by gateway and outcome",
		}, []string{"gateway", "outcome"}), // outcome: succeeded, declined, error
		OrderValue: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "order_value",
			Help:      "Confirmed order totals in currency units",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}),

		// =======================================================================
		// Cart
		// =======================================================================
		CartItemsAdded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cart_items_added_total",
			Help:      "Total units reserved into carts",
		}),
		CartItemsRemoved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cart_items_removed_total",
			Help:      "Total units released back to stock by users",
		}),

		// =======================================================================
		// Events
		// =======================================================================
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "domain_events_published_total",
			Help:      "Total domain events published by kind",
		}, []string{"kind"}),
		HandlerFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "event_handler_failures_total",
			Help:      "Total event handler errors and panics",
		}, []string{"handler"}),

		// =======================================================================
		// Notifications
		// =======================================================================
		NotificationsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_created_total",
			Help:      "Total notifications persisted by type",
		}, []string{"type"}),
		NotificationFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notification_failures_total",
			Help:      "Total per-user notification failures isolated by the cart listener",
		}),
		PushesDelivered: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notification_pushes_total",
			Help:      "Total notification frames written to live connections",
		}),
		PushesDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notification_pushes_dropped_total",
			Help:      "Total notification frames not queued",
		}, []string{"reason"}), // reason: offline, overflow
		LiveConnections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notification_live_connections",
			Help:      "Currently registered notification streams",
		}),
		ConnectionsClosed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notification_connections_closed_total",
			Help:      "Total notification streams closed by reason",
		}, []string{"reason"}),
	}
}

// Global instance for easy access from services. Nil until InitBusinessMetrics.
var Business *BusinessMetrics

// InitBusinessMetrics initializes the global business metrics instance.
func InitBusinessMetrics(namespace string) *BusinessMetrics {
	Business = NewBusinessMetrics(namespace, nil)
	return Business
}
