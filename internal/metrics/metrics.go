// Package metrics exposes Prometheus instruments for the booking flow.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the booking instruments.
type Recorder struct {
	checkouts         *prometheus.CounterVec
	seatReservations  *prometheus.CounterVec
	seatsReserved     prometheus.Counter
	gatewayLatency    *prometheus.HistogramVec
	notificationFails *prometheus.CounterVec
	quotes            *prometheus.CounterVec
}

// New creates a Recorder and registers it with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pethotel",
			Name:      "checkout_results_total",
			Help:      "Checkout attempts by result code.",
		}, []string{"code"}),
		seatReservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pethotel",
			Name:      "seat_reservations_total",
			Help:      "Shared taxi seat reservation attempts by outcome.",
		}, []string{"outcome"}),
		seatsReserved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pethotel",
			Name:      "seats_reserved_total",
			Help:      "Shared taxi seats reserved.",
		}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pethotel",
			Name:      "gateway_charge_seconds",
			Help:      "Payment gateway charge latency by outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		notificationFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pethotel",
			Name:      "notification_failures_total",
			Help:      "Notifications that could not be delivered, by kind.",
		}, []string{"kind"}),
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pethotel",
			Name:      "quotes_total",
			Help:      "Quotes added to carts by item kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		r.checkouts,
		r.seatReservations,
		r.seatsReserved,
		r.gatewayLatency,
		r.notificationFails,
		r.quotes,
	)

	return r
}

// CheckoutResult counts a checkout attempt.
func (r *Recorder) CheckoutResult(code string) {
	if r == nil {
		return
	}
	r.checkouts.WithLabelValues(code).Inc()
}

// SeatReservation counts a reservation attempt and the seats it took.
func (r *Recorder) SeatReservation(seats int, ok bool) {
	if r == nil {
		return
	}
	if !ok {
		r.seatReservations.WithLabelValues("rejected").Inc()
		return
	}
	r.seatReservations.WithLabelValues("accepted").Inc()
	r.seatsReserved.Add(float64(seats))
}

// GatewayCharge observes one gateway call.
func (r *Recorder) GatewayCharge(outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.gatewayLatency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// NotificationFailed counts an undelivered notification.
func (r *Recorder) NotificationFailed(kind string) {
	if r == nil {
		return
	}
	r.notificationFails.WithLabelValues(kind).Inc()
}

// Quote counts a quote accepted into a cart.
func (r *Recorder) Quote(kind string) {
	if r == nil {
		return
	}
	r.quotes.WithLabelValues(kind).Inc()
}
