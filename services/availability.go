package services

import (
	"context"
	"time"

	"github.com/Karoll-esc/hotel-booking-system/models"
	"github.com/Karoll-esc/hotel-booking-system/repositories"
)

const DefaultMaxStayNights = 30

// Overlaps reports whether the half-open stays [aIn, aOut) and [bIn, bOut)
// share a night. A stay ending the day another begins does not overlap.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return models.CivilDate(aIn).Before(models.CivilDate(bOut)) &&
		models.CivilDate(bIn).Before(models.CivilDate(aOut))
}

// AvailabilityChecker validates a requested stay and finds the reservations
// that block it.
type AvailabilityChecker struct {
	MaxStayNights int
}

func NewAvailabilityChecker(maxStayNights int) *AvailabilityChecker {
	if maxStayNights <= 0 {
		maxStayNights = DefaultMaxStayNights
	}
	return &AvailabilityChecker{MaxStayNights: maxStayNights}
}

// ValidateDates checks the stay against today's date and the stay limit.
func (a *AvailabilityChecker) ValidateDates(checkIn, checkOut, today time.Time) error {
	checkIn, checkOut = models.CivilDate(checkIn), models.CivilDate(checkOut)
	if checkIn.Before(models.CivilDate(today)) {
		return InvalidDateRange("check-in date cannot be in the past")
	}
	if !checkIn.Before(checkOut) {
		return InvalidDateRange("check-out date must be after check-in date")
	}
	if nights := models.DaysBetween(checkIn, checkOut); nights > a.MaxStayNights {
		return Validation("stay cannot exceed %d nights", a.MaxStayNights)
	}
	return nil
}

func (a *AvailabilityChecker) ValidateCapacity(room *models.Room, guests int) error {
	if guests < 1 {
		return Validation("number of guests must be at least 1")
	}
	if guests > room.Capacity {
		return Validation("room %s allows at most %d guests", room.RoomNumber, room.Capacity)
	}
	return nil
}

// Blocking returns the non-terminal reservations of roomID that overlap the stay.
// excludeID is never reported.
func (a *AvailabilityChecker) Blocking(ctx context.Context, store repositories.ReservationStore, roomID uint, checkIn, checkOut time.Time, excludeID uint) ([]models.Reservation, error) {
	return store.FindOverlapping(ctx, roomID, checkIn, checkOut, excludeID)
}
