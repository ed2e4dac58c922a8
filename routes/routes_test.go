package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Karoll-esc/hotel-booking-system/controllers"
	"github.com/Karoll-esc/hotel-booking-system/gateways"
	"github.com/Karoll-esc/hotel-booking-system/middleware"
	"github.com/Karoll-esc/hotel-booking-system/repositories"
	"github.com/Karoll-esc/hotel-booking-system/services"
)

var now = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type api struct {
	t      *testing.T
	router *gin.Engine
}

func newAPI(t *testing.T, checks ...HealthCheck) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if err := controllers.RegisterValidators(); err != nil {
		t.Fatalf("register validators: %v", err)
	}

	store := repositories.NewMemoryStore()
	clock := services.FixedClock(now)
	checker := services.NewAvailabilityChecker(services.DefaultMaxStayNights)
	guests := services.NewGuestService(store)
	reservations := services.NewReservationService(store, checker, guests, clock, gateways.LogPublisher{})
	rooms := services.NewRoomService(store, checker, clock)

	if checks == nil {
		checks = []HealthCheck{{Name: "database", Ping: store.Ping}}
	}
	router := SetupRouter(
		controllers.NewReservationController(reservations),
		controllers.NewRoomController(rooms),
		controllers.NewGuestController(guests),
		gateways.NewIdempotencyGatewayMemory(time.Hour),
		checks...,
	)
	return &api{t: t, router: router}
}

func (a *api) do(method, path string, body any, headers ...string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" && w.Body.Bytes()[0] == '{' {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			a.t.Fatalf("decode %s %s response %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, env
}

func (a *api) expect(w *httptest.ResponseRecorder, env envelope, status int, code string) {
	a.t.Helper()
	if w.Code != status {
		a.t.Fatalf("expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
	if code != "" && env.Error.Code != code {
		a.t.Fatalf("expected error code %s, got %q: %s", code, env.Error.Code, w.Body.String())
	}
}

func (a *api) createRoom(number, price string, capacity int) uint {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/rooms", gin.H{
		"roomNumber":    number,
		"roomType":      "standard",
		"capacity":      capacity,
		"pricePerNight": price,
	})
	a.expect(w, env, http.StatusCreated, "")
	var room controllers.RoomResponse
	if err := json.Unmarshal(env.Data, &room); err != nil {
		a.t.Fatalf("decode room: %v", err)
	}
	return room.ID
}

func reservationBody(roomID uint, checkIn, checkOut string) gin.H {
	return gin.H{
		"guest": gin.H{
			"firstName":      "Ana",
			"lastName":       "Torres",
			"documentNumber": "CC-10020030",
			"email":          "ana@example.com",
			"phone":          "+57 300 123 4567",
		},
		"roomId":         roomID,
		"checkInDate":    checkIn,
		"checkOutDate":   checkOut,
		"numberOfGuests": 2,
	}
}

func (a *api) createReservation(roomID uint, checkIn, checkOut string) controllers.ReservationResponse {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/api/reservations", reservationBody(roomID, checkIn, checkOut))
	a.expect(w, env, http.StatusCreated, "")
	var r controllers.ReservationResponse
	if err := json.Unmarshal(env.Data, &r); err != nil {
		a.t.Fatalf("decode reservation: %v", err)
	}
	return r
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return out
}

func TestHealthReportsChecks(t *testing.T) {
	a := newAPI(t,
		HealthCheck{Name: "database", Ping: func(context.Context) error { return nil }},
		HealthCheck{Name: "redis"},
	)
	w, _ := a.do(http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if body.Status != "ok" || body.Checks["database"] != "up" || body.Checks["redis"] != "n/a" {
		t.Fatalf("unexpected health body: %+v", body)
	}
}

func TestHealthDegradedWhenDependencyDown(t *testing.T) {
	a := newAPI(t, HealthCheck{Name: "database", Ping: func(context.Context) error { return errors.New("connection refused") }})
	w, _ := a.do(http.MethodGet, "/health", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	a := newAPI(t)
	a.do(http.MethodGet, "/health", nil)
	w, _ := a.do(http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("http_requests_total")) {
		t.Fatalf("expected prometheus output, got %d", w.Code)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	a := newAPI(t)
	w, _ := a.do(http.MethodGet, "/health", nil, middleware.RequestIDHeader, "0123456789abcdef0123456789abcdef")
	if got := w.Header().Get(middleware.RequestIDHeader); got != "0123456789abcdef0123456789abcdef" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
}

func TestRoomRegistration(t *testing.T) {
	a := newAPI(t)
	a.createRoom("101", "80.00", 2)

	w, env := a.do(http.MethodPost, "/api/rooms", gin.H{
		"roomNumber": "101", "roomType": "SUITE", "capacity": 2, "pricePerNight": "90",
	})
	a.expect(w, env, http.StatusConflict, "CONFLICT")

	w, env = a.do(http.MethodPost, "/api/rooms", gin.H{
		"roomNumber": "102", "roomType": "PENTHOUSE", "capacity": 2, "pricePerNight": "90",
	})
	a.expect(w, env, http.StatusBadRequest, "VALIDATION_ERROR")

	w, env = a.do(http.MethodPost, "/api/rooms", gin.H{
		"roomNumber": "103", "roomType": "SUITE", "capacity": 11, "pricePerNight": "90",
	})
	a.expect(w, env, http.StatusBadRequest, "VALIDATION_ERROR")

	w, env = a.do(http.MethodGet, "/api/rooms?roomType=STANDARD", nil)
	a.expect(w, env, http.StatusOK, "")
	if rooms := decode[[]controllers.RoomResponse](t, env); len(rooms) != 1 || rooms[0].PricePerNight != "80.00" || rooms[0].RoomTypeName != "Standard" {
		t.Fatalf("unexpected rooms: %+v", rooms)
	}
}

func TestRoomNotFoundAndBadID(t *testing.T) {
	a := newAPI(t)
	w, env := a.do(http.MethodGet, "/api/rooms/999", nil)
	a.expect(w, env, http.StatusNotFound, "NOT_FOUND")

	w, env = a.do(http.MethodGet, "/api/rooms/abc", nil)
	a.expect(w, env, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestDeleteRoomWithReservationsIsRefused(t *testing.T) {
	a := newAPI(t)
	roomID := a.createRoom("101", "80.00", 2)
	a.createReservation(roomID, "2026-03-12", "2026-03-14")

	w, env := a.do(http.MethodDelete, fmt.Sprintf("/api/rooms/%d", roomID), nil)
	a.expect(w, env, http.StatusConflict, "CONFLICT")

	free := a.createRoom("102", "80.00", 2)
	w, _ = a.do(http.MethodDelete, fmt.Sprintf("/api/rooms/%d", free), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}

func TestAvailableRoomsExcludesBookedRooms(t *testing.T) {
	a := newAPI(t)
	booked := a.createRoom("101", "80.00", 2)
	free := a.createRoom("102", "80.00", 2)
	a.createReservation(booked, "2026-03-12", "2026-03-15")

	w, env := a.do(http.MethodGet, "/api/rooms/available?checkIn=2026-03-14&checkOut=2026-03-16", nil)
	a.expect(w, env, http.StatusOK, "")
	rooms := decode[[]controllers.RoomResponse](t, env)
	if len(rooms) != 1 || rooms[0].ID != free {
		t.Fatalf("expected only room %d, got %+v", free, rooms)
	}

	// back-to-back stays share the boundary day
	w, env = a.do(http.MethodGet, "/api/rooms/available?checkIn=2026-03-15&checkOut=2026-03-16", nil)
	a.expect(w, env, http.StatusOK, "")
	if rooms := decode[[]controllers.RoomResponse](t, env); len(rooms) != 2 {
		t.Fatalf("expected both rooms, got %+v", rooms)
	}

	w, env = a.do(http.MethodGet, "/api/rooms/available?checkIn=2026-03-16&checkOut=2026-03-14", nil)
	a.expect(w, env, http.StatusBadRequest, "INVALID_DATE_RANGE")

	w, env = a.do(http.MethodGet, "/api/rooms/available?checkIn=tomorrow&checkOut=2026-03-14", nil)
	a.expect(w, env, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestCreateReservation(t *testing.T) {
	a := newAPI(t)
	roomID := a.createRoom("101", "250.00", 2)

	r := a.createReservation(roomID, "2026-03-12", "2026-03-17")
	if r.Status != "PENDING" || r.TotalAmount != "1250.00" || r.NumberOfNights != 5 {
		t.Fatalf("unexpected reservation: %+v", r)
	}
	if r.CheckInDate != "2026-03-12" || r.Guest.FullName != "Ana Torres" || r.Room.RoomNumber != "101" {
		t.Fatalf("unexpected reservation details: %+v", r)
	}

	w, env := a.do(http.MethodPost, "/api/reservations", reservationBody(roomID, "2026-03-16", "2026-03-18"))
	a.expect(w, env, http.StatusConflict, "CONFLICT")

	w, env = a.do(http.MethodGet, fmt.Sprintf("/api/reservations/%d", r.ID), nil)
	a.expect(w, env, http.StatusOK, "")

	w, env = a.do(http.MethodGet, "/api/guests/CC-10020030", nil)
	a.expect(w, env, http.StatusOK, "")
	if g := decode[controllers.GuestResponse](t, env); g.Email != "ana@example.com" {
		t.Fatalf("unexpected guest: %+v", g)
	}
}

func TestCreateReservationValidation(t *testing.T) {
	a := newAPI(t)
	roomID := a.createRoom("101", "80.00", 2)

	tests := []struct {
		name   string
		body   gin.H
		status int
		code   string
	}{
		{"past check-in", reservationBody(roomID, "2026-03-09", "2026-03-11"), http.StatusBadRequest, "INVALID_DATE_RANGE"},
		{"reversed dates", reservationBody(roomID, "2026-03-15", "2026-03-12"), http.StatusBadRequest, "INVALID_DATE_RANGE"},
		{"stay too long", reservationBody(roomID, "2026-03-11", "2026-04-20"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad date format", reservationBody(roomID, "12/03/2026", "2026-03-14"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown room", reservationBody(999, "2026-03-12", "2026-03-14"), http.StatusNotFound, "NOT_FOUND"},
		{"missing guest", gin.H{"roomId": roomID, "checkInDate": "2026-03-12", "checkOutDate": "2026-03-14", "numberOfGuests": 1}, http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := a.do(http.MethodPost, "/api/reservations", tt.body)
			a.expect(w, env, tt.status, tt.code)
			if env.Success || env.Error.Message == "" {
				t.Fatalf("expected an error envelope, got %s", w.Body.String())
			}
		})
	}

	body := reservationBody(roomID, "2026-03-12", "2026-03-14")
	body["numberOfGuests"] = 3
	w, env := a.do(http.MethodPost, "/api/reservations", body)
	a.expect(w, env, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestStayLifecycle(t *testing.T) {
	a := newAPI(t)
	roomID := a.createRoom("101", "100.00", 2)
	r := a.createReservation(roomID, "2026-03-10", "2026-03-12")
	base := fmt.Sprintf("/api/reservations/%d", r.ID)

	w, env := a.do(http.MethodPost, base+"/check-in", nil)
	a.expect(w, env, http.StatusConflict, "STATE_CONFLICT")

	w, env = a.do(http.MethodPost, base+"/confirm-payment", gin.H{"paymentMethod": "CARD", "amount": "200.00"})
	a.expect(w, env, http.StatusBadRequest, "VALIDATION_ERROR")

	w, env = a.do(http.MethodPost, base+"/confirm-payment", gin.H{"paymentMethod": "CASH", "amount": "150.00"})
	a.expect(w, env, http.StatusBadRequest, "VALIDATION_ERROR")

	w, env = a.do(http.MethodPost, base+"/confirm-payment", gin.H{"paymentMethod": "CASH", "amount": 0})
	a.expect(w, env, http.StatusBadRequest, "VALIDATION_ERROR")

	w, env = a.do(http.MethodPost, base+"/confirm-payment", gin.H{"paymentMethod": "CASH", "amount": 200})
	a.expect(w, env, http.StatusOK, "")
	if p := decode[controllers.PaymentResponse](t, env); p.Amount != "200.00" || p.Method != "CASH" {
		t.Fatalf("unexpected payment: %+v", p)
	}

	w, env = a.do(http.MethodPost, base+"/confirm-payment", gin.H{"paymentMethod": "CASH", "amount": 200})
	a.expect(w, env, http.StatusConflict, "STATE_CONFLICT")

	w, env = a.do(http.MethodGet, base+"/payments", nil)
	a.expect(w, env, http.StatusOK, "")
	if ps := decode[[]controllers.PaymentResponse](t, env); len(ps) != 1 {
		t.Fatalf("expected one payment, got %+v", ps)
	}

	w, env = a.do(http.MethodGet, "/api/reservations/today", nil)
	a.expect(w, env, http.StatusOK, "")
	if today := decode[controllers.TodayReservationsResponse](t, env); len(today.CheckIns) != 1 || len(today.CheckOuts) != 0 {
		t.Fatalf("unexpected today lists: %+v", today)
	}

	w, env = a.do(http.MethodPost, base+"/check-in", nil)
	a.expect(w, env, http.StatusOK, "")
	checkedIn := decode[controllers.ReservationResponse](t, env)
	if checkedIn.Status != "ACTIVE" || checkedIn.CheckInTime == nil || checkedIn.Room.IsAvailable {
		t.Fatalf("unexpected state after check-in: %+v", checkedIn)
	}

	w, env = a.do(http.MethodPost, base+"/check-out", nil)
	a.expect(w, env, http.StatusOK, "")
	done := decode[controllers.ReservationResponse](t, env)
	if done.Status != "COMPLETED" || done.CheckOutTime == nil || !done.Room.IsAvailable {
		t.Fatalf("unexpected state after check-out: %+v", done)
	}
}

func TestCancelOccupiedStayRefundsNothing(t *testing.T) {
	a := newAPI(t)
	roomID := a.createRoom("101", "100.00", 2)
	r := a.createReservation(roomID, "2026-03-10", "2026-03-12")
	base := fmt.Sprintf("/api/reservations/%d", r.ID)

	w, env := a.do(http.MethodPost, base+"/confirm-payment", gin.H{"paymentMethod": "CASH", "amount": "200.00"})
	a.expect(w, env, http.StatusOK, "")
	w, env = a.do(http.MethodPost, base+"/check-in", nil)
	a.expect(w, env, http.StatusOK, "")

	w, env = a.do(http.MethodPost, base+"/cancel", gin.H{"reason": "left early"})
	a.expect(w, env, http.StatusOK, "")
	s := decode[controllers.CancelReservationResponse](t, env)
	if s.RefundPercentage != 0 || s.RefundAmount != "0.00" || s.PenaltyAmount != s.TotalAmount || s.TotalAmount != "200.00" {
		t.Fatalf("occupied stay must not be refunded: %+v", s)
	}

	w, env = a.do(http.MethodGet, base, nil)
	a.expect(w, env, http.StatusOK, "")
	if got := decode[controllers.ReservationResponse](t, env); got.Status != "CANCELLED" || !got.Room.IsAvailable {
		t.Fatalf("expected cancelled reservation and a free room, got %+v", got)
	}
}

func TestCancelReturnsRefundSummary(t *testing.T) {
	a := newAPI(t)
	roomID := a.createRoom("101", "100.00", 2)
	early := a.createReservation(roomID, "2026-03-20", "2026-03-22")
	late := a.createReservation(roomID, "2026-03-13", "2026-03-15")

	w, env := a.do(http.MethodPost, fmt.Sprintf("/api/reservations/%d/cancel", early.ID), gin.H{})
	a.expect(w, env, http.StatusBadRequest, "VALIDATION_ERROR")

	w, env = a.do(http.MethodPost, fmt.Sprintf("/api/reservations/%d/cancel", early.ID), gin.H{"reason": "flight moved"})
	a.expect(w, env, http.StatusOK, "")
	s := decode[controllers.CancelReservationResponse](t, env)
	if s.RefundPercentage != 100 || s.RefundAmount != "200.00" || s.PenaltyAmount != "0.00" {
		t.Fatalf("unexpected summary for 10 days ahead: %+v", s)
	}

	w, env = a.do(http.MethodPost, fmt.Sprintf("/api/reservations/%d/cancel", late.ID), gin.H{"reason": "sick"})
	a.expect(w, env, http.StatusOK, "")
	s = decode[controllers.CancelReservationResponse](t, env)
	if s.RefundPercentage != 50 || s.RefundAmount != "100.00" || s.PenaltyAmount != "100.00" {
		t.Fatalf("unexpected summary for 3 days ahead: %+v", s)
	}

	w, env = a.do(http.MethodPost, fmt.Sprintf("/api/reservations/%d/cancel", late.ID), gin.H{"reason": "again"})
	a.expect(w, env, http.StatusConflict, "STATE_CONFLICT")
}

func TestExpireEndpoints(t *testing.T) {
	a := newAPI(t)
	roomID := a.createRoom("101", "100.00", 2)
	r := a.createReservation(roomID, "2026-03-12", "2026-03-14")

	w, env := a.do(http.MethodPost, fmt.Sprintf("/api/reservations/%d/expire", r.ID), nil)
	a.expect(w, env, http.StatusOK, "")
	if got := decode[controllers.ReservationResponse](t, env); got.Status != "EXPIRED" {
		t.Fatalf("expected EXPIRED, got %s", got.Status)
	}

	w, env = a.do(http.MethodPost, fmt.Sprintf("/api/reservations/%d/expire", r.ID), nil)
	a.expect(w, env, http.StatusConflict, "STATE_CONFLICT")

	w, env = a.do(http.MethodPost, "/api/reservations/expire-stale", nil)
	a.expect(w, env, http.StatusOK, "")
	var stale struct {
		Expired int `json:"expired"`
	}
	if err := json.Unmarshal(env.Data, &stale); err != nil || stale.Expired != 0 {
		t.Fatalf("expected nothing stale, got %s (%v)", env.Data, err)
	}
}

func TestSearchReservations(t *testing.T) {
	a := newAPI(t)
	roomID := a.createRoom("101", "100.00", 2)
	r := a.createReservation(roomID, "2026-03-12", "2026-03-14")

	w, env := a.do(http.MethodGet, "/api/reservations/search?reservationNumber="+r.ReservationNumber, nil)
	a.expect(w, env, http.StatusOK, "")
	if found := decode[[]controllers.ReservationResponse](t, env); len(found) != 1 || found[0].ID != r.ID {
		t.Fatalf("unexpected search by number: %+v", found)
	}

	w, env = a.do(http.MethodGet, "/api/reservations/search?guestName=torres", nil)
	a.expect(w, env, http.StatusOK, "")
	if found := decode[[]controllers.ReservationResponse](t, env); len(found) != 1 {
		t.Fatalf("unexpected search by name: %+v", found)
	}

	w, env = a.do(http.MethodGet, "/api/reservations/search?reservationNumber=RES-2026-ZZZZZZ&guestName=torres", nil)
	a.expect(w, env, http.StatusOK, "")
	if found := decode[[]controllers.ReservationResponse](t, env); len(found) != 0 {
		t.Fatalf("expected no matches, got %+v", found)
	}
}

func TestIdempotentCreateReplaysResponse(t *testing.T) {
	a := newAPI(t)
	roomID := a.createRoom("101", "100.00", 2)
	body := reservationBody(roomID, "2026-03-12", "2026-03-14")

	first, firstEnv := a.do(http.MethodPost, "/api/reservations", body, middleware.IdempotencyHeader, "booking-42")
	a.expect(first, firstEnv, http.StatusCreated, "")

	second, secondEnv := a.do(http.MethodPost, "/api/reservations", body, middleware.IdempotencyHeader, "booking-42")
	a.expect(second, secondEnv, http.StatusCreated, "")
	if second.Header().Get(middleware.ReplayHeader) != "true" {
		t.Fatal("expected replay header on repeated key")
	}
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Fatalf("replayed body differs:\n%s\n%s", first.Body.String(), second.Body.String())
	}

	// without the key the same payload hits the overlap check
	third, thirdEnv := a.do(http.MethodPost, "/api/reservations", body)
	a.expect(third, thirdEnv, http.StatusConflict, "CONFLICT")
}

func TestIdempotencyReleasesKeyOnFailure(t *testing.T) {
	a := newAPI(t)
	roomID := a.createRoom("101", "100.00", 2)

	bad := reservationBody(roomID, "2026-03-09", "2026-03-11")
	w, env := a.do(http.MethodPost, "/api/reservations", bad, middleware.IdempotencyHeader, "retry-me")
	a.expect(w, env, http.StatusBadRequest, "INVALID_DATE_RANGE")

	good := reservationBody(roomID, "2026-03-12", "2026-03-14")
	w, env = a.do(http.MethodPost, "/api/reservations", good, middleware.IdempotencyHeader, "retry-me")
	a.expect(w, env, http.StatusCreated, "")
	if w.Header().Get(middleware.ReplayHeader) != "" {
		t.Fatal("a failed attempt must not be replayed")
	}
}
