package services

import (
	"time"

	"github.com/Karoll-esc/hotel-booking-system/models"
)

// Clock supplies the current instant in the hotel's timezone.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

func NewSystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time { return time.Now().In(c.loc) }

// FixedClock always reports the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// Today is the hotel's current calendar date.
func Today(c Clock) time.Time {
	return models.CivilDate(c.Now())
}
