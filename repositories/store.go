package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Karoll-esc/hotel-booking-system/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

type RoomFilter struct {
	Type          models.RoomType
	OnlyAvailable bool
}

// RoomInventory holds room records.
type RoomInventory interface {
	GetRoom(ctx context.Context, id uint) (*models.Room, error)
	// LockRoom reads the room and holds a write lock on it until the
	// surrounding transaction ends.
	LockRoom(ctx context.Context, id uint) (*models.Room, error)
	RoomNumberExists(ctx context.Context, number string, excludeID uint) (bool, error)
	SaveRoom(ctx context.Context, room *models.Room) error
	DeleteRoom(ctx context.Context, id uint) error
	ListRooms(ctx context.Context, filter RoomFilter) ([]models.Room, error)
	ListRoomsByIDs(ctx context.Context, ids []uint) ([]models.Room, error)
}

// GuestDirectory holds guests keyed by document number.
type GuestDirectory interface {
	FindGuestByDocument(ctx context.Context, documentNumber string) (*models.Guest, error)
	SaveGuest(ctx context.Context, guest *models.Guest) error
	ListGuestsByIDs(ctx context.Context, ids []uint) ([]models.Guest, error)
}

// ReservationStore persists reservations. Dates are civil dates; only the
// calendar day is compared.
type ReservationStore interface {
	SaveReservation(ctx context.Context, r *models.Reservation) error
	FindReservation(ctx context.Context, id uint) (*models.Reservation, error)
	LockReservation(ctx context.Context, id uint) (*models.Reservation, error)
	FindReservationByNumber(ctx context.Context, number string) (*models.Reservation, error)
	// FindOverlapping returns the non-terminal reservations of roomID with
	// checkIn < to and checkOut > from. excludeID 0 excludes nothing.
	FindOverlapping(ctx context.Context, roomID uint, from, to time.Time, excludeID uint) ([]models.Reservation, error)
	// BookedRoomIDs lists rooms holding a non-terminal reservation that overlaps [from, to).
	BookedRoomIDs(ctx context.Context, from, to time.Time) ([]uint, error)
	RoomHasReservations(ctx context.Context, roomID uint) (bool, error)
	FindByGuestName(ctx context.Context, pattern string) ([]models.Reservation, error)
	FindByCheckInDateAndStatusIn(ctx context.Context, date time.Time, statuses ...models.ReservationStatus) ([]models.Reservation, error)
	FindByCheckOutDateAndStatus(ctx context.Context, date time.Time, status models.ReservationStatus) ([]models.Reservation, error)
	// FindPendingBefore returns PENDING reservations whose check-in date is before date.
	FindPendingBefore(ctx context.Context, date time.Time) ([]models.Reservation, error)
}

// PaymentLedger records confirmed payments.
type PaymentLedger interface {
	SavePayment(ctx context.Context, p *models.Payment) error
	ListPayments(ctx context.Context, reservationID uint) ([]models.Payment, error)
}

type Store interface {
	RoomInventory
	GuestDirectory
	ReservationStore
	PaymentLedger

	// Transaction runs fn against a store bound to one transaction. fn's
	// error rolls everything back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

var (
	_ Store = (*GormStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
