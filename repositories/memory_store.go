package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Karoll-esc/hotel-booking-system/models"
)

type memoryData struct {
	rooms        map[uint]models.Room
	guests       map[uint]models.Guest
	reservations map[uint]models.Reservation
	payments     map[string]models.Payment
	nextID       uint
}

func (d *memoryData) clone() *memoryData {
	c := &memoryData{
		rooms:        make(map[uint]models.Room, len(d.rooms)),
		guests:       make(map[uint]models.Guest, len(d.guests)),
		reservations: make(map[uint]models.Reservation, len(d.reservations)),
		payments:     make(map[string]models.Payment, len(d.payments)),
		nextID:       d.nextID,
	}
	for k, v := range d.rooms {
		c.rooms[k] = v
	}
	for k, v := range d.guests {
		c.guests[k] = v
	}
	for k, v := range d.reservations {
		c.reservations[k] = v
	}
	for k, v := range d.payments {
		c.payments[k] = v
	}
	return c
}

func (d *memoryData) id() uint {
	d.nextID++
	return d.nextID
}

// MemoryStore keeps everything in process. Transactions hold a single mutex
// for their whole duration and work on a copy that replaces the live data on
// commit, so the row locks are trivially satisfied.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memoryData
	inTx bool
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.Mutex{},
		data: &memoryData{
			rooms:        map[uint]models.Room{},
			guests:       map[uint]models.Guest{},
			reservations: map[uint]models.Reservation{},
			payments:     map[string]models.Payment{},
		},
		now: time.Now,
	}
}

func (s *MemoryStore) do(fn func(d *memoryData) error) error {
	if s.inTx {
		return fn(s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &MemoryStore{mu: s.mu, data: s.data.clone(), inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// ---------------- rooms ----------------

func (s *MemoryStore) GetRoom(_ context.Context, id uint) (*models.Room, error) {
	var out *models.Room
	err := s.do(func(d *memoryData) error {
		room, ok := d.rooms[id]
		if !ok {
			return fmt.Errorf("%w: room %d", ErrNotFound, id)
		}
		out = &room
		return nil
	})
	return out, err
}

func (s *MemoryStore) LockRoom(ctx context.Context, id uint) (*models.Room, error) {
	return s.GetRoom(ctx, id)
}

func (s *MemoryStore) RoomNumberExists(_ context.Context, number string, excludeID uint) (bool, error) {
	found := false
	_ = s.do(func(d *memoryData) error {
		for _, r := range d.rooms {
			if r.RoomNumber == number && r.ID != excludeID {
				found = true
				break
			}
		}
		return nil
	})
	return found, nil
}

func (s *MemoryStore) SaveRoom(_ context.Context, room *models.Room) error {
	return s.do(func(d *memoryData) error {
		for _, r := range d.rooms {
			if r.RoomNumber == room.RoomNumber && r.ID != room.ID {
				return fmt.Errorf("%w: room number %s", ErrDuplicate, room.RoomNumber)
			}
		}
		now := s.now()
		if room.ID == 0 {
			room.ID = d.id()
			room.CreatedAt = now
		}
		room.UpdatedAt = now
		d.rooms[room.ID] = *room
		return nil
	})
}

func (s *MemoryStore) DeleteRoom(_ context.Context, id uint) error {
	return s.do(func(d *memoryData) error {
		if _, ok := d.rooms[id]; !ok {
			return fmt.Errorf("%w: room %d", ErrNotFound, id)
		}
		delete(d.rooms, id)
		return nil
	})
}

func (s *MemoryStore) ListRooms(_ context.Context, filter RoomFilter) ([]models.Room, error) {
	var out []models.Room
	_ = s.do(func(d *memoryData) error {
		for _, r := range d.rooms {
			if filter.Type != "" && r.RoomType != filter.Type {
				continue
			}
			if filter.OnlyAvailable && !r.IsAvailable {
				continue
			}
			out = append(out, r)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].RoomNumber < out[j].RoomNumber })
	return out, nil
}

func (s *MemoryStore) ListRoomsByIDs(_ context.Context, ids []uint) ([]models.Room, error) {
	var out []models.Room
	_ = s.do(func(d *memoryData) error {
		for _, id := range ids {
			if r, ok := d.rooms[id]; ok {
				out = append(out, r)
			}
		}
		return nil
	})
	return out, nil
}

// ---------------- guests ----------------

func (s *MemoryStore) FindGuestByDocument(_ context.Context, documentNumber string) (*models.Guest, error) {
	var out *models.Guest
	err := s.do(func(d *memoryData) error {
		for _, g := range d.guests {
			if g.DocumentNumber == documentNumber {
				g := g
				out = &g
				return nil
			}
		}
		return fmt.Errorf("%w: guest %s", ErrNotFound, documentNumber)
	})
	return out, err
}

func (s *MemoryStore) SaveGuest(_ context.Context, guest *models.Guest) error {
	return s.do(func(d *memoryData) error {
		for _, g := range d.guests {
			if g.DocumentNumber == guest.DocumentNumber && g.ID != guest.ID {
				return fmt.Errorf("%w: document %s", ErrDuplicate, guest.DocumentNumber)
			}
		}
		now := s.now()
		if guest.ID == 0 {
			guest.ID = d.id()
			guest.CreatedAt = now
		}
		guest.UpdatedAt = now
		d.guests[guest.ID] = *guest
		return nil
	})
}

func (s *MemoryStore) ListGuestsByIDs(_ context.Context, ids []uint) ([]models.Guest, error) {
	var out []models.Guest
	_ = s.do(func(d *memoryData) error {
		for _, id := range ids {
			if g, ok := d.guests[id]; ok {
				out = append(out, g)
			}
		}
		return nil
	})
	return out, nil
}

// ---------------- reservations ----------------

func (s *MemoryStore) SaveReservation(_ context.Context, r *models.Reservation) error {
	return s.do(func(d *memoryData) error {
		for _, existing := range d.reservations {
			if existing.ReservationNumber == r.ReservationNumber && existing.ID != r.ID {
				return fmt.Errorf("%w: reservation number %s", ErrDuplicate, r.ReservationNumber)
			}
		}
		now := s.now()
		if r.ID == 0 {
			r.ID = d.id()
			r.CreatedAt = now
		}
		r.UpdatedAt = now
		d.reservations[r.ID] = *r
		return nil
	})
}

func (s *MemoryStore) FindReservation(_ context.Context, id uint) (*models.Reservation, error) {
	var out *models.Reservation
	err := s.do(func(d *memoryData) error {
		r, ok := d.reservations[id]
		if !ok {
			return fmt.Errorf("%w: reservation %d", ErrNotFound, id)
		}
		out = &r
		return nil
	})
	return out, err
}

func (s *MemoryStore) LockReservation(ctx context.Context, id uint) (*models.Reservation, error) {
	return s.FindReservation(ctx, id)
}

func (s *MemoryStore) FindReservationByNumber(_ context.Context, number string) (*models.Reservation, error) {
	var out *models.Reservation
	err := s.do(func(d *memoryData) error {
		for _, r := range d.reservations {
			if r.ReservationNumber == number {
				r := r
				out = &r
				return nil
			}
		}
		return fmt.Errorf("%w: reservation %s", ErrNotFound, number)
	})
	return out, err
}

func overlaps(r models.Reservation, from, to time.Time) bool {
	return r.CheckInDay().Before(models.CivilDate(to)) && r.CheckOutDay().After(models.CivilDate(from))
}

func holdsRoom(r models.Reservation) bool {
	return !r.Status.IsTerminal()
}

func (s *MemoryStore) filter(keep func(models.Reservation) bool, less func(a, b models.Reservation) bool) []models.Reservation {
	var out []models.Reservation
	_ = s.do(func(d *memoryData) error {
		for _, r := range d.reservations {
			if keep(r) {
				out = append(out, r)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if less(out[i], out[j]) {
			return true
		}
		if less(out[j], out[i]) {
			return false
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func byCheckIn(a, b models.Reservation) bool  { return a.CheckInDay().Before(b.CheckInDay()) }
func byCheckOut(a, b models.Reservation) bool { return a.CheckOutDay().Before(b.CheckOutDay()) }
func byID(a, b models.Reservation) bool       { return a.ID < b.ID }

func (s *MemoryStore) FindOverlapping(_ context.Context, roomID uint, from, to time.Time, excludeID uint) ([]models.Reservation, error) {
	return s.filter(func(r models.Reservation) bool {
		return r.RoomID == roomID && holdsRoom(r) && r.ID != excludeID && overlaps(r, from, to)
	}, byCheckIn), nil
}

func (s *MemoryStore) BookedRoomIDs(_ context.Context, from, to time.Time) ([]uint, error) {
	seen := map[uint]bool{}
	var ids []uint
	for _, r := range s.filter(func(r models.Reservation) bool {
		return holdsRoom(r) && overlaps(r, from, to)
	}, byID) {
		if !seen[r.RoomID] {
			seen[r.RoomID] = true
			ids = append(ids, r.RoomID)
		}
	}
	return ids, nil
}

func (s *MemoryStore) RoomHasReservations(_ context.Context, roomID uint) (bool, error) {
	return len(s.filter(func(r models.Reservation) bool { return r.RoomID == roomID }, byID)) > 0, nil
}

func (s *MemoryStore) FindByGuestName(_ context.Context, pattern string) ([]models.Reservation, error) {
	needle := strings.ToLower(strings.TrimSpace(pattern))
	matching := map[uint]bool{}
	_ = s.do(func(d *memoryData) error {
		for _, g := range d.guests {
			if strings.Contains(strings.ToLower(g.FirstName), needle) ||
				strings.Contains(strings.ToLower(g.LastName), needle) ||
				strings.Contains(strings.ToLower(g.FirstName+" "+g.LastName), needle) {
				matching[g.ID] = true
			}
		}
		return nil
	})
	return s.filter(func(r models.Reservation) bool { return matching[r.GuestID] }, byCheckIn), nil
}

func (s *MemoryStore) FindByCheckInDateAndStatusIn(_ context.Context, date time.Time, statuses ...models.ReservationStatus) ([]models.Reservation, error) {
	want := models.CivilDate(date)
	return s.filter(func(r models.Reservation) bool {
		return r.CheckInDay().Equal(want) && statusIn(r.Status, statuses)
	}, byCheckIn), nil
}

func (s *MemoryStore) FindByCheckOutDateAndStatus(_ context.Context, date time.Time, status models.ReservationStatus) ([]models.Reservation, error) {
	want := models.CivilDate(date)
	return s.filter(func(r models.Reservation) bool {
		return r.CheckOutDay().Equal(want) && r.Status == status
	}, byCheckOut), nil
}

func (s *MemoryStore) FindPendingBefore(_ context.Context, date time.Time) ([]models.Reservation, error) {
	limit := models.CivilDate(date)
	return s.filter(func(r models.Reservation) bool {
		return r.Status == models.StatusPending && r.CheckInDay().Before(limit)
	}, byID), nil
}

func statusIn(s models.ReservationStatus, set []models.ReservationStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// ---------------- payments ----------------

func (s *MemoryStore) SavePayment(_ context.Context, p *models.Payment) error {
	return s.do(func(d *memoryData) error {
		if _, ok := d.payments[p.ID]; ok {
			return fmt.Errorf("%w: payment %s", ErrDuplicate, p.ID)
		}
		p.CreatedAt = s.now()
		d.payments[p.ID] = *p
		return nil
	})
}

func (s *MemoryStore) ListPayments(_ context.Context, reservationID uint) ([]models.Payment, error) {
	var out []models.Payment
	_ = s.do(func(d *memoryData) error {
		for _, p := range d.payments {
			if p.ReservationID == reservationID {
				out = append(out, p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.Before(out[j].PaidAt) })
	return out, nil
}
