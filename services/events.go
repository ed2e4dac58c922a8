package services

import (
	"context"
	"log"
	"time"

	"github.com/Karoll-esc/hotel-booking-system/models"

	"github.com/shopspring/decimal"
)

const (
	EventReservationCreated    = "reservation.created"
	EventReservationConfirmed  = "reservation.confirmed"
	EventReservationCheckedIn  = "reservation.checked_in"
	EventReservationCheckedOut = "reservation.checked_out"
	EventReservationCancelled  = "reservation.cancelled"
	EventReservationExpired    = "reservation.expired"
)

// ReservationEvent is published after a lifecycle change has been committed.
type ReservationEvent struct {
	Type              string                   `json:"type"`
	ReservationID     uint                     `json:"reservationId"`
	ReservationNumber string                   `json:"reservationNumber"`
	RoomID            uint                     `json:"roomId"`
	Status            models.ReservationStatus `json:"status"`
	OccurredAt        time.Time                `json:"occurredAt"`

	RefundPercentage *int            `json:"refundPercentage,omitempty"`
	RefundAmount     *decimal.Decimal `json:"refundAmount,omitempty"`
	PenaltyAmount    *decimal.Decimal `json:"penaltyAmount,omitempty"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event ReservationEvent) error
}

func newEvent(kind string, r *models.Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		Type:              kind,
		ReservationID:     r.ID,
		ReservationNumber: r.ReservationNumber,
		RoomID:            r.RoomID,
		Status:            r.Status,
		OccurredAt:        at,
	}
}

// publish never fails the caller; the database already holds the change.
func publish(ctx context.Context, p EventPublisher, event ReservationEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		log.Printf("warning: failed to publish %s for %s: %v", event.Type, event.ReservationNumber, err)
	}
}
