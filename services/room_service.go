package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Karoll-esc/hotel-booking-system/models"
	"github.com/Karoll-esc/hotel-booking-system/repositories"

	"github.com/shopspring/decimal"
)

type RoomInput struct {
	RoomNumber    string
	RoomType      string
	Capacity      int
	PricePerNight decimal.Decimal
	// IsAvailable is only applied when set.
	IsAvailable *bool
}

type RoomService struct {
	Store   repositories.Store
	Checker *AvailabilityChecker
	Clock   Clock
}

func NewRoomService(store repositories.Store, checker *AvailabilityChecker, clock Clock) *RoomService {
	return &RoomService{Store: store, Checker: checker, Clock: clock}
}

func validateRoom(in RoomInput) (models.RoomType, error) {
	if strings.TrimSpace(in.RoomNumber) == "" {
		return "", Validation("room number is required")
	}
	roomType, err := models.ParseRoomType(in.RoomType)
	if err != nil {
		return "", Validation("room type must be one of STANDARD, SUPERIOR, SUITE")
	}
	if in.Capacity < models.MinRoomCapacity || in.Capacity > models.MaxRoomCapacity {
		return "", Validation("capacity must be between %d and %d", models.MinRoomCapacity, models.MaxRoomCapacity)
	}
	if !in.PricePerNight.IsPositive() {
		return "", Validation("price per night must be greater than zero")
	}
	return roomType, nil
}

func (s *RoomService) Register(ctx context.Context, in RoomInput) (*models.Room, error) {
	roomType, err := validateRoom(in)
	if err != nil {
		return nil, err
	}
	number := strings.TrimSpace(in.RoomNumber)

	exists, err := s.Store.RoomNumberExists(ctx, number, 0)
	if err != nil {
		return nil, fmt.Errorf("check room number: %w", err)
	}
	if exists {
		return nil, Conflict("room number %s already exists", number)
	}

	room := models.NewRoom(number, roomType, in.Capacity, in.PricePerNight)
	if in.IsAvailable != nil {
		room.IsAvailable = *in.IsAvailable
	}
	if err := s.Store.SaveRoom(ctx, room); err != nil {
		if repositories.IsDuplicate(err) {
			return nil, Conflict("room number %s already exists", number)
		}
		return nil, fmt.Errorf("save room: %w", err)
	}
	return room, nil
}

func (s *RoomService) List(ctx context.Context, filter repositories.RoomFilter) ([]models.Room, error) {
	rooms, err := s.Store.ListRooms(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

func (s *RoomService) Get(ctx context.Context, id uint) (*models.Room, error) {
	room, err := s.Store.GetRoom(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, NotFound("room %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return room, nil
}

func (s *RoomService) Update(ctx context.Context, id uint, in RoomInput) (*models.Room, error) {
	roomType, err := validateRoom(in)
	if err != nil {
		return nil, err
	}
	number := strings.TrimSpace(in.RoomNumber)

	var out *models.Room
	err = s.Store.Transaction(ctx, func(tx repositories.Store) error {
		room, err := tx.LockRoom(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			return NotFound("room %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("lock room: %w", err)
		}

		exists, err := tx.RoomNumberExists(ctx, number, id)
		if err != nil {
			return fmt.Errorf("check room number: %w", err)
		}
		if exists {
			return Conflict("room number %s already exists", number)
		}

		if in.IsAvailable != nil && *in.IsAvailable != room.IsAvailable {
			occupied, err := s.occupied(ctx, tx, room.ID)
			if err != nil {
				return err
			}
			if occupied {
				return StateConflict("room %s is occupied; its availability follows check-in and check-out", room.RoomNumber)
			}
		}

		room.RoomNumber = number
		room.RoomType = roomType
		room.Capacity = in.Capacity
		room.PricePerNight = in.PricePerNight
		if in.IsAvailable != nil {
			room.IsAvailable = *in.IsAvailable
		}
		if err := tx.SaveRoom(ctx, room); err != nil {
			if repositories.IsDuplicate(err) {
				return Conflict("room number %s already exists", number)
			}
			return fmt.Errorf("save room: %w", err)
		}
		out = room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// occupied reports whether a guest is checked in to the room, including a
// stay that ran past its check-out date.
func (s *RoomService) occupied(ctx context.Context, tx repositories.ReservationStore, roomID uint) (bool, error) {
	today := Today(s.Clock)
	stays, err := s.Checker.Blocking(ctx, tx, roomID, today.AddDate(-1, 0, 0), today.AddDate(0, 0, 1), 0)
	if err != nil {
		return false, fmt.Errorf("check occupancy: %w", err)
	}
	for _, r := range stays {
		if r.Status == models.StatusActive {
			return true, nil
		}
	}
	return false, nil
}

// Delete removes a room that no reservation has ever referenced.
func (s *RoomService) Delete(ctx context.Context, id uint) error {
	return s.Store.Transaction(ctx, func(tx repositories.Store) error {
		room, err := tx.LockRoom(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			return NotFound("room %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("lock room: %w", err)
		}
		referenced, err := tx.RoomHasReservations(ctx, room.ID)
		if err != nil {
			return fmt.Errorf("check reservations: %w", err)
		}
		if referenced {
			return Conflict("room %s has reservations and cannot be deleted", room.RoomNumber)
		}
		return tx.DeleteRoom(ctx, room.ID)
	})
}

// Available lists rooms of roomType (any type when empty) that are not
// occupied and have no overlapping reservation for the stay.
func (s *RoomService) Available(ctx context.Context, checkIn, checkOut time.Time, roomType string) ([]models.Room, error) {
	if err := s.Checker.ValidateDates(checkIn, checkOut, Today(s.Clock)); err != nil {
		return nil, err
	}
	filter := repositories.RoomFilter{OnlyAvailable: true}
	if strings.TrimSpace(roomType) != "" {
		t, err := models.ParseRoomType(roomType)
		if err != nil {
			return nil, Validation("room type must be one of STANDARD, SUPERIOR, SUITE")
		}
		filter.Type = t
	}

	rooms, err := s.Store.ListRooms(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	booked, err := s.Store.BookedRoomIDs(ctx, checkIn, checkOut)
	if err != nil {
		return nil, fmt.Errorf("booked rooms: %w", err)
	}
	taken := make(map[uint]bool, len(booked))
	for _, id := range booked {
		taken[id] = true
	}

	out := make([]models.Room, 0, len(rooms))
	for _, r := range rooms {
		if !taken[r.ID] {
			out = append(out, r)
		}
	}
	return out, nil
}
