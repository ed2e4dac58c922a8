package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

const tracerName = "hotel-booking/services"

var tracer = otel.Tracer(tracerName)

var (
	ReservationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_reservation_transitions_total",
			Help: "Reservation lifecycle transitions that were committed",
		},
		[]string{"event"},
	)
	ReservationRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_reservation_rejections_total",
			Help: "Reservation operations rejected, by operation and error kind",
		},
		[]string{"operation", "kind"},
	)
	RefundPercentages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hotel_cancellation_refund_percentage",
			Help:    "Refund percentage granted on cancellation",
			Buckets: []float64{0, 50, 100},
		},
	)
)

func observeRejection(operation string, err error) {
	if err == nil {
		return
	}
	ReservationRejections.WithLabelValues(operation, string(KindOf(err))).Inc()
}
