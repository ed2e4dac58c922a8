package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Karoll-esc/hotel-booking-system/models"
	"github.com/Karoll-esc/hotel-booking-system/repositories"
	"github.com/Karoll-esc/hotel-booking-system/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
)

const maxNumberAttempts = 5

type CreateReservationInput struct {
	Guest          GuestInput
	RoomID         uint
	CheckIn        time.Time
	CheckOut       time.Time
	NumberOfGuests int
}

type PaymentInput struct {
	Method    string
	Amount    decimal.Decimal
	Reference string
}

// ReservationDetails is a reservation with its guest and room resolved.
type ReservationDetails struct {
	Reservation models.Reservation
	Guest       models.Guest
	Room        models.Room
}

type CancellationSummary struct {
	ReservationNumber string
	CancelledAt       time.Time
	TotalAmount       decimal.Decimal
	RefundAmount      decimal.Decimal
	PenaltyAmount     decimal.Decimal
	RefundPercentage  int
}

type TodayReservations struct {
	CheckIns  []ReservationDetails
	CheckOuts []ReservationDetails
}

// ReservationService drives the reservation lifecycle. It keeps no state of
// its own between calls; every operation is one store transaction.
type ReservationService struct {
	Store     repositories.Store
	Checker   *AvailabilityChecker
	Guests    *GuestService
	Clock     Clock
	Publisher EventPublisher

	// NewNumber generates reservation numbers; replaced in tests.
	NewNumber func(year int) (string, error)
}

func NewReservationService(store repositories.Store, checker *AvailabilityChecker, guests *GuestService, clock Clock, publisher EventPublisher) *ReservationService {
	return &ReservationService{
		Store:     store,
		Checker:   checker,
		Guests:    guests,
		Clock:     clock,
		Publisher: publisher,
		NewNumber: utils.GenerateReservationNumber,
	}
}

func (s *ReservationService) today() time.Time { return Today(s.Clock) }

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, operation string, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(KindOf(err)))
		observeRejection(operation, err)
	}
	span.End()
}

// Create books a room for a guest. The room row stays locked from the
// overlap check until the new reservation is committed.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (_ *ReservationDetails, err error) {
	ctx, span := startSpan(ctx, "reservation.create", attribute.Int64("room.id", int64(in.RoomID)))
	defer func() { endSpan(span, "create", err) }()

	checkIn, checkOut := models.CivilDate(in.CheckIn), models.CivilDate(in.CheckOut)
	if err := s.Checker.ValidateDates(checkIn, checkOut, s.today()); err != nil {
		return nil, err
	}

	var out *ReservationDetails
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		number, err := s.NewNumber(s.Clock.Now().Year())
		if err != nil {
			return nil, fmt.Errorf("generate reservation number: %w", err)
		}

		err = s.Store.Transaction(ctx, func(tx repositories.Store) error {
			room, err := tx.LockRoom(ctx, in.RoomID)
			if errors.Is(err, repositories.ErrNotFound) {
				return NotFound("room %d not found", in.RoomID)
			}
			if err != nil {
				return fmt.Errorf("lock room: %w", err)
			}
			if err := s.Checker.ValidateCapacity(room, in.NumberOfGuests); err != nil {
				return err
			}

			blocking, err := s.Checker.Blocking(ctx, tx, room.ID, checkIn, checkOut, 0)
			if err != nil {
				return fmt.Errorf("check availability: %w", err)
			}
			if len(blocking) > 0 {
				return Conflict("room %s is not available for the selected dates", room.RoomNumber)
			}

			guest, err := s.Guests.Upsert(ctx, tx, in.Guest)
			if err != nil {
				return err
			}

			r := &models.Reservation{
				ReservationNumber: number,
				GuestID:           guest.ID,
				RoomID:            room.ID,
				CheckInDate:       datatypes.Date(checkIn),
				CheckOutDate:      datatypes.Date(checkOut),
				NumberOfGuests:    in.NumberOfGuests,
				Status:            models.StatusPending,
			}
			r.TotalAmount = room.PricePerNight.Mul(decimal.NewFromInt(int64(r.Nights())))
			if err := tx.SaveReservation(ctx, r); err != nil {
				return fmt.Errorf("save reservation: %w", err)
			}

			out = &ReservationDetails{Reservation: *r, Guest: *guest, Room: *room}
			return nil
		})
		if err == nil {
			break
		}
		if KindOf(err) == KindInternal && repositories.IsDuplicate(err) && attempt < maxNumberAttempts {
			log.Printf("reservation insert collided (attempt %d) - retrying", attempt)
			continue
		}
		return nil, err
	}

	ReservationTransitions.WithLabelValues("create").Inc()
	log.Printf("reservation %s created for room %s (%d nights, total %s)",
		out.Reservation.ReservationNumber, out.Room.RoomNumber, out.Reservation.Nights(), out.Reservation.TotalAmount.StringFixed(2))
	publish(ctx, s.Publisher, newEvent(EventReservationCreated, &out.Reservation, s.Clock.Now()))
	return out, nil
}

// lockForUpdate loads a reservation and locks its room and then the
// reservation itself. Every mutating operation takes locks in this order.
func lockForUpdate(ctx context.Context, tx repositories.Store, id uint) (*models.Reservation, *models.Room, error) {
	r, err := tx.FindReservation(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, NotFound("reservation %d not found", id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find reservation: %w", err)
	}
	room, err := tx.LockRoom(ctx, r.RoomID)
	if err != nil {
		return nil, nil, fmt.Errorf("lock room: %w", err)
	}
	r, err = tx.LockReservation(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("lock reservation: %w", err)
	}
	return r, room, nil
}

// apply runs the pure transition and copies its effects onto r and room.
func (s *ReservationService) apply(r *models.Reservation, room *models.Room, event models.LifecycleEvent) (models.Effects, error) {
	to, fx, err := models.Transition(r.Status, event)
	if err != nil {
		return fx, StateConflict("cannot %s a reservation in status %s", strings.ReplaceAll(string(event), "_", " "), r.Status)
	}
	r.Apply(to, fx, room, s.Clock.Now())
	return fx, nil
}

func persist(ctx context.Context, tx repositories.Store, r *models.Reservation, room *models.Room, fx models.Effects) error {
	if err := tx.SaveReservation(ctx, r); err != nil {
		return fmt.Errorf("save reservation: %w", err)
	}
	if fx.Room == models.RoomUnchanged {
		return nil
	}
	if err := tx.SaveRoom(ctx, room); err != nil {
		return fmt.Errorf("save room: %w", err)
	}
	return nil
}

// ConfirmPayment moves a PENDING reservation to CONFIRMED and records the
// payment in the ledger. Method and reference are checked before the store is touched.
func (s *ReservationService) ConfirmPayment(ctx context.Context, id uint, in PaymentInput) (_ *models.Payment, err error) {
	ctx, span := startSpan(ctx, "reservation.confirm_payment", attribute.Int64("reservation.id", int64(id)))
	defer func() { endSpan(span, "confirm_payment", err) }()

	method, perr := models.ParsePaymentMethod(in.Method)
	if perr != nil {
		return nil, Validation("invalid payment method %q, expected CASH, CARD or TRANSFER", in.Method)
	}
	reference := strings.TrimSpace(in.Reference)
	if method.RequiresReference() && reference == "" {
		return nil, Validation("payment reference is required for %s payments", method)
	}

	var (
		payment *models.Payment
		saved   *models.Reservation
	)
	err = s.Store.Transaction(ctx, func(tx repositories.Store) error {
		r, room, err := lockForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		switch r.Status {
		case models.StatusPending:
		case models.StatusExpired:
			return StateConflict("reservation %s has expired", r.ReservationNumber)
		case models.StatusConfirmed:
			return StateConflict("reservation %s is already confirmed", r.ReservationNumber)
		default:
			return StateConflict("cannot confirm payment for reservation in status %s", r.Status)
		}

		if !in.Amount.Equal(r.TotalAmount) {
			return Validation("payment amount %s does not match total amount %s",
				in.Amount.String(), r.TotalAmount.StringFixed(2))
		}

		fx, err := s.apply(r, room, models.EventConfirmPayment)
		if err != nil {
			return err
		}
		if err := persist(ctx, tx, r, room, fx); err != nil {
			return err
		}

		meta, err := json.Marshal(map[string]string{
			"reservationNumber": r.ReservationNumber,
			"totalAmount":       r.TotalAmount.StringFixed(2),
		})
		if err != nil {
			return fmt.Errorf("encode payment metadata: %w", err)
		}
		p := &models.Payment{
			ID:            uuid.NewString(),
			ReservationID: r.ID,
			Method:        method,
			Amount:        in.Amount,
			Reference:     reference,
			PaidAt:        s.Clock.Now(),
			Metadata:      datatypes.JSON(meta),
		}
		if err := tx.SavePayment(ctx, p); err != nil {
			return fmt.Errorf("save payment: %w", err)
		}
		payment, saved = p, r
		return nil
	})
	if err != nil {
		return nil, err
	}

	ReservationTransitions.WithLabelValues(string(models.EventConfirmPayment)).Inc()
	log.Printf("reservation %s confirmed (%s %s)", saved.ReservationNumber, method, in.Amount.StringFixed(2))
	publish(ctx, s.Publisher, newEvent(EventReservationConfirmed, saved, s.Clock.Now()))
	return payment, nil
}

// CheckIn occupies the room. Only allowed on the scheduled check-in date and
// only while no other guest is in the room.
func (s *ReservationService) CheckIn(ctx context.Context, id uint) (_ *ReservationDetails, err error) {
	ctx, span := startSpan(ctx, "reservation.check_in", attribute.Int64("reservation.id", int64(id)))
	defer func() { endSpan(span, "check_in", err) }()

	today := s.today()
	var saved *models.Reservation
	err = s.Store.Transaction(ctx, func(tx repositories.Store) error {
		r, room, err := lockForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !r.CheckInDay().Equal(today) {
			return StateConflict("check-in is only allowed on the scheduled date %s", models.FormatDate(r.CheckInDay()))
		}

		others, err := s.Checker.Blocking(ctx, tx, r.RoomID, r.CheckInDay(), r.CheckOutDay(), r.ID)
		if err != nil {
			return fmt.Errorf("check occupancy: %w", err)
		}
		for _, o := range others {
			if o.Status == models.StatusActive {
				return StateConflict("room %s is currently occupied", room.RoomNumber)
			}
		}

		fx, err := s.apply(r, room, models.EventCheckIn)
		if err != nil {
			return err
		}
		if err := persist(ctx, tx, r, room, fx); err != nil {
			return err
		}
		saved = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, saved, models.EventCheckIn, EventReservationCheckedIn)
}

// CheckOut completes an occupied stay. Early and late departures are both accepted.
func (s *ReservationService) CheckOut(ctx context.Context, id uint) (_ *ReservationDetails, err error) {
	ctx, span := startSpan(ctx, "reservation.check_out", attribute.Int64("reservation.id", int64(id)))
	defer func() { endSpan(span, "check_out", err) }()

	var saved *models.Reservation
	err = s.Store.Transaction(ctx, func(tx repositories.Store) error {
		r, room, err := lockForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if r.Status != models.StatusActive {
			return StateConflict("only checked-in reservations can be checked out, status is %s", r.Status)
		}
		fx, err := s.apply(r, room, models.EventCheckOut)
		if err != nil {
			return err
		}
		if err := persist(ctx, tx, r, room, fx); err != nil {
			return err
		}
		saved = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, saved, models.EventCheckOut, EventReservationCheckedOut)
}

// Cancel cancels a reservation and computes the refund from the days left
// until check-in.
func (s *ReservationService) Cancel(ctx context.Context, id uint, reason string) (_ *CancellationSummary, err error) {
	ctx, span := startSpan(ctx, "reservation.cancel", attribute.Int64("reservation.id", int64(id)))
	defer func() { endSpan(span, "cancel", err) }()

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, Validation("cancellation reason is required")
	}

	today := s.today()
	var (
		summary *CancellationSummary
		saved   *models.Reservation
	)
	err = s.Store.Transaction(ctx, func(tx repositories.Store) error {
		r, room, err := lockForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !r.Status.IsCancellable() {
			return StateConflict("reservation in status %s cannot be cancelled", r.Status)
		}

		pct := RefundPercentage(r.Status, models.DaysBetween(today, r.CheckInDay()))
		refund := ComputeRefund(r.TotalAmount, pct)

		fx, err := s.apply(r, room, models.EventCancel)
		if err != nil {
			return err
		}
		r.CancellationReason = reason
		if err := persist(ctx, tx, r, room, fx); err != nil {
			return err
		}

		summary = &CancellationSummary{
			ReservationNumber: r.ReservationNumber,
			CancelledAt:       *r.CancelledAt,
			TotalAmount:       r.TotalAmount,
			RefundAmount:      refund.Refund,
			PenaltyAmount:     refund.Penalty,
			RefundPercentage:  refund.Percentage,
		}
		saved = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	ReservationTransitions.WithLabelValues(string(models.EventCancel)).Inc()
	RefundPercentages.Observe(float64(summary.RefundPercentage))
	log.Printf("reservation %s cancelled, refund %d%% (%s)", summary.ReservationNumber, summary.RefundPercentage, summary.RefundAmount.StringFixed(2))

	event := newEvent(EventReservationCancelled, saved, summary.CancelledAt)
	event.RefundPercentage = &summary.RefundPercentage
	event.RefundAmount = &summary.RefundAmount
	event.PenaltyAmount = &summary.PenaltyAmount
	publish(ctx, s.Publisher, event)
	return summary, nil
}

// Expire marks a PENDING reservation as EXPIRED.
func (s *ReservationService) Expire(ctx context.Context, id uint) (_ *ReservationDetails, err error) {
	ctx, span := startSpan(ctx, "reservation.expire", attribute.Int64("reservation.id", int64(id)))
	defer func() { endSpan(span, "expire", err) }()

	saved, err := s.expire(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, saved, models.EventExpire, EventReservationExpired)
}

func (s *ReservationService) expire(ctx context.Context, id uint) (*models.Reservation, error) {
	var saved *models.Reservation
	err := s.Store.Transaction(ctx, func(tx repositories.Store) error {
		r, room, err := lockForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		fx, err := s.apply(r, room, models.EventExpire)
		if err != nil {
			return err
		}
		if err := persist(ctx, tx, r, room, fx); err != nil {
			return err
		}
		saved = r
		return nil
	})
	return saved, err
}

// ExpireStale expires every PENDING reservation whose check-in date has
// already passed. Each one is expired in its own transaction; a reservation
// that changed status in the meantime is skipped.
func (s *ReservationService) ExpireStale(ctx context.Context) (_ []ReservationDetails, err error) {
	ctx, span := startSpan(ctx, "reservation.expire_stale")
	defer func() { endSpan(span, "expire_stale", err) }()

	candidates, err := s.Store.FindPendingBefore(ctx, s.today())
	if err != nil {
		return nil, fmt.Errorf("find stale reservations: %w", err)
	}

	expired := make([]models.Reservation, 0, len(candidates))
	for _, c := range candidates {
		r, err := s.expire(ctx, c.ID)
		if errors.Is(err, ErrStateConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		ReservationTransitions.WithLabelValues(string(models.EventExpire)).Inc()
		publish(ctx, s.Publisher, newEvent(EventReservationExpired, r, s.Clock.Now()))
		expired = append(expired, *r)
	}
	span.SetAttributes(attribute.Int("reservations.expired", len(expired)))
	if len(expired) > 0 {
		log.Printf("expired %d stale pending reservations", len(expired))
	}
	return s.resolve(ctx, expired)
}

func (s *ReservationService) finish(ctx context.Context, r *models.Reservation, event models.LifecycleEvent, kind string) (*ReservationDetails, error) {
	ReservationTransitions.WithLabelValues(string(event)).Inc()
	log.Printf("reservation %s is now %s", r.ReservationNumber, r.Status)
	publish(ctx, s.Publisher, newEvent(kind, r, s.Clock.Now()))

	out, err := s.resolve(ctx, []models.Reservation{*r})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *ReservationService) Get(ctx context.Context, id uint) (*ReservationDetails, error) {
	r, err := s.Store.FindReservation(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, NotFound("reservation %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	out, err := s.resolve(ctx, []models.Reservation{*r})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *ReservationService) Payments(ctx context.Context, id uint) ([]models.Payment, error) {
	if _, err := s.Store.FindReservation(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NotFound("reservation %d not found", id)
		}
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	payments, err := s.Store.ListPayments(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// Search looks reservations up by exact number first and falls back to a
// case-insensitive partial match on the guest's name.
func (s *ReservationService) Search(ctx context.Context, number, guestName string) ([]ReservationDetails, error) {
	number, guestName = strings.TrimSpace(number), strings.TrimSpace(guestName)
	if number == "" && guestName == "" {
		return nil, Validation("provide a reservation number or a guest name to search")
	}

	// a number takes precedence; the name is only used without one
	if number != "" {
		number = strings.ToUpper(number)
		// a malformed number cannot match, so skip the lookup
		if !utils.IsReservationNumber(number) {
			return []ReservationDetails{}, nil
		}
		r, err := s.Store.FindReservationByNumber(ctx, number)
		switch {
		case err == nil:
			return s.resolve(ctx, []models.Reservation{*r})
		case errors.Is(err, repositories.ErrNotFound):
			return []ReservationDetails{}, nil
		default:
			return nil, fmt.Errorf("find reservation: %w", err)
		}
	}

	found, err := s.Store.FindByGuestName(ctx, guestName)
	if err != nil {
		return nil, fmt.Errorf("search reservations: %w", err)
	}
	return s.resolve(ctx, found)
}

// Today lists the arrivals and departures for the hotel's current date.
func (s *ReservationService) Today(ctx context.Context) (*TodayReservations, error) {
	today := s.today()

	arrivals, err := s.Store.FindByCheckInDateAndStatusIn(ctx, today, models.StatusConfirmed, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("find arrivals: %w", err)
	}
	departures, err := s.Store.FindByCheckOutDateAndStatus(ctx, today, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("find departures: %w", err)
	}

	checkIns, err := s.resolve(ctx, arrivals)
	if err != nil {
		return nil, err
	}
	checkOuts, err := s.resolve(ctx, departures)
	if err != nil {
		return nil, err
	}
	return &TodayReservations{CheckIns: checkIns, CheckOuts: checkOuts}, nil
}

// resolve loads the guests and rooms referenced by rs in two queries.
func (s *ReservationService) resolve(ctx context.Context, rs []models.Reservation) ([]ReservationDetails, error) {
	out := make([]ReservationDetails, 0, len(rs))
	if len(rs) == 0 {
		return out, nil
	}

	guestIDs := make([]uint, 0, len(rs))
	roomIDs := make([]uint, 0, len(rs))
	for _, r := range rs {
		guestIDs = append(guestIDs, r.GuestID)
		roomIDs = append(roomIDs, r.RoomID)
	}
	guests, err := s.Store.ListGuestsByIDs(ctx, guestIDs)
	if err != nil {
		return nil, fmt.Errorf("load guests: %w", err)
	}
	rooms, err := s.Store.ListRoomsByIDs(ctx, roomIDs)
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}

	guestByID := make(map[uint]models.Guest, len(guests))
	for _, g := range guests {
		guestByID[g.ID] = g
	}
	roomByID := make(map[uint]models.Room, len(rooms))
	for _, r := range rooms {
		roomByID[r.ID] = r
	}
	for _, r := range rs {
		out = append(out, ReservationDetails{
			Reservation: r,
			Guest:       guestByID[r.GuestID],
			Room:        roomByID[r.RoomID],
		})
	}
	return out, nil
}
