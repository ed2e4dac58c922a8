package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const DateLayout = "2006-01-02"

// Reservation references its guest and room by id only. Both are loaded
// through the store when an operation needs them.
type Reservation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ReservationNumber string `gorm:"column:reservation_number;size:20;uniqueIndex;not null" json:"reservationNumber"`

	GuestID uint `gorm:"column:guest_id;not null;index" json:"guestId"`
	RoomID  uint `gorm:"column:room_id;not null;index:idx_reservation_room_dates,priority:1" json:"roomId"`

	CheckInDate  datatypes.Date `gorm:"column:check_in_date;not null;index:idx_reservation_room_dates,priority:2" json:"checkInDate"`
	CheckOutDate datatypes.Date `gorm:"column:check_out_date;not null;index:idx_reservation_room_dates,priority:3" json:"checkOutDate"`

	NumberOfGuests int             `gorm:"column:number_of_guests;not null" json:"numberOfGuests"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:decimal(10,2);not null" json:"totalAmount"`

	Status ReservationStatus `gorm:"column:status;size:20;not null;index" json:"status"`

	CheckInTime        *time.Time `gorm:"column:check_in_time" json:"checkInTime,omitempty"`
	CheckOutTime       *time.Time `gorm:"column:check_out_time" json:"checkOutTime,omitempty"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at" json:"cancelledAt,omitempty"`
	CancellationReason string     `gorm:"column:cancellation_reason;size:500" json:"cancellationReason,omitempty"`
}

// CheckInDay returns the check-in date as midnight UTC.
func (r Reservation) CheckInDay() time.Time {
	return CivilDate(time.Time(r.CheckInDate))
}

// CheckOutDay returns the check-out date as midnight UTC.
func (r Reservation) CheckOutDay() time.Time {
	return CivilDate(time.Time(r.CheckOutDate))
}

// Nights is the number of nights charged; the check-out day is not a night.
func (r Reservation) Nights() int {
	return DaysBetween(r.CheckInDay(), r.CheckOutDay())
}

// Apply copies the side effects of an accepted transition onto r and its room.
// room may be nil when the effects do not touch occupancy.
func (r *Reservation) Apply(to ReservationStatus, fx Effects, room *Room, now time.Time) {
	r.Status = to
	if fx.StampCheckIn {
		t := now
		r.CheckInTime = &t
	}
	if fx.StampCheckOut {
		t := now
		r.CheckOutTime = &t
	}
	if fx.StampCancelled {
		t := now
		r.CancelledAt = &t
	}
	if room == nil {
		return
	}
	switch fx.Room {
	case RoomOccupy:
		room.IsAvailable = false
	case RoomRelease:
		room.IsAvailable = true
	}
}

// CivilDate drops the clock part of t, keeping the calendar date it has in its
// own location, and returns that date at midnight UTC.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from a to b; negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(CivilDate(b).Sub(CivilDate(a)).Hours() / 24)
}

// ParseDate parses a YYYY-MM-DD string into a civil date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
