package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Karoll-esc/hotel-booking-system/models"
	"github.com/Karoll-esc/hotel-booking-system/repositories"

	"github.com/shopspring/decimal"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []ReservationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	t         *testing.T
	ctx       context.Context
	store     *repositories.MemoryStore
	publisher *recordingPublisher
	rooms     *RoomService
	svc       *ReservationService
}

// 2026-03-10 10:00 in the hotel's zone.
var fixtureNow = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	clock := FixedClock(fixtureNow)
	checker := NewAvailabilityChecker(DefaultMaxStayNights)
	publisher := &recordingPublisher{}
	return &fixture{
		t:         t,
		ctx:       context.Background(),
		store:     store,
		publisher: publisher,
		rooms:     NewRoomService(store, checker, clock),
		svc:       NewReservationService(store, checker, NewGuestService(store), clock, publisher),
	}
}

// day returns the fixture's today shifted by offset days.
func day(offset int) time.Time {
	return models.CivilDate(fixtureNow).AddDate(0, 0, offset)
}

func (f *fixture) setToday(offset int) {
	f.svc.Clock = FixedClock(fixtureNow.AddDate(0, 0, offset))
	f.rooms.Clock = f.svc.Clock
}

func (f *fixture) room(number string, capacity int, price string) *models.Room {
	f.t.Helper()
	room, err := f.rooms.Register(f.ctx, RoomInput{
		RoomNumber:    number,
		RoomType:      "STANDARD",
		Capacity:      capacity,
		PricePerNight: decimal.RequireFromString(price),
	})
	if err != nil {
		f.t.Fatalf("register room %s: %v", number, err)
	}
	return room
}

func guestInput(doc string) GuestInput {
	return GuestInput{
		FirstName:      "Ana",
		LastName:       "Torres",
		DocumentNumber: doc,
		Email:          "ana@example.com",
		Phone:          "+57 300 123 4567",
	}
}

func (f *fixture) book(roomID uint, in, out int) *ReservationDetails {
	f.t.Helper()
	d, err := f.svc.Create(f.ctx, CreateReservationInput{
		Guest:          guestInput("CC-1001"),
		RoomID:         roomID,
		CheckIn:        day(in),
		CheckOut:       day(out),
		NumberOfGuests: 1,
	})
	if err != nil {
		f.t.Fatalf("create reservation: %v", err)
	}
	return d
}

func (f *fixture) pay(d *ReservationDetails) {
	f.t.Helper()
	_, err := f.svc.ConfirmPayment(f.ctx, d.Reservation.ID, PaymentInput{
		Method: "CASH",
		Amount: d.Reservation.TotalAmount,
	})
	if err != nil {
		f.t.Fatalf("confirm payment: %v", err)
	}
}

func (f *fixture) reload(id uint) *ReservationDetails {
	f.t.Helper()
	d, err := f.svc.Get(f.ctx, id)
	if err != nil {
		f.t.Fatalf("get reservation %d: %v", id, err)
	}
	return d
}

func expectKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s (%v)", kind, got, err)
	}
}
