package controllers

import (
	"time"

	"github.com/Karoll-esc/hotel-booking-system/models"
	"github.com/Karoll-esc/hotel-booking-system/services"

	"github.com/shopspring/decimal"
)

// ---------------------------
// Requests
// ---------------------------

type GuestRequest struct {
	FirstName      string `json:"firstName" binding:"required,min=2,max=100"`
	LastName       string `json:"lastName" binding:"required,min=2,max=100"`
	DocumentNumber string `json:"documentNumber" binding:"required,min=5,max=50"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone" binding:"omitempty,phone"`
}

type CreateReservationRequest struct {
	Guest          *GuestRequest `json:"guest" binding:"required"`
	RoomID         uint          `json:"roomId" binding:"required,gte=1"`
	CheckInDate    string        `json:"checkInDate" binding:"required,isodate"`
	CheckOutDate   string        `json:"checkOutDate" binding:"required,isodate"`
	NumberOfGuests int           `json:"numberOfGuests" binding:"required,min=1,max=10"`
}

// ConfirmPaymentRequest leaves method and reference rules to the service so
// they are checked in one place.
type ConfirmPaymentRequest struct {
	PaymentMethod string           `json:"paymentMethod" binding:"required"`
	Amount        *decimal.Decimal `json:"amount" binding:"required"`
	Reference     string           `json:"reference" binding:"max=100"`
}

type CancelReservationRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type RoomRequest struct {
	RoomNumber    string           `json:"roomNumber" binding:"required,max=50"`
	RoomType      string           `json:"roomType" binding:"required,roomtype"`
	Capacity      int              `json:"capacity" binding:"required,min=1,max=10"`
	PricePerNight *decimal.Decimal `json:"pricePerNight" binding:"required"`
	IsAvailable   *bool            `json:"isAvailable"`
}

func (r RoomRequest) input() services.RoomInput {
	return services.RoomInput{
		RoomNumber:    r.RoomNumber,
		RoomType:      r.RoomType,
		Capacity:      r.Capacity,
		PricePerNight: *r.PricePerNight,
		IsAvailable:   r.IsAvailable,
	}
}

// ---------------------------
// Responses
// ---------------------------

// money renders amounts with two decimals, e.g. "1250.00".
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type RoomResponse struct {
	ID            uint            `json:"id"`
	RoomNumber    string          `json:"roomNumber"`
	RoomType      models.RoomType `json:"roomType"`
	RoomTypeName  string          `json:"roomTypeName"`
	Capacity      int             `json:"capacity"`
	PricePerNight string          `json:"pricePerNight"`
	IsAvailable   bool            `json:"isAvailable"`
}

func newRoomResponse(r models.Room) RoomResponse {
	return RoomResponse{
		ID:            r.ID,
		RoomNumber:    r.RoomNumber,
		RoomType:      r.RoomType,
		RoomTypeName:  r.RoomType.DisplayName(),
		Capacity:      r.Capacity,
		PricePerNight: money(r.PricePerNight),
		IsAvailable:   r.IsAvailable,
	}
}

func newRoomResponses(rooms []models.Room) []RoomResponse {
	out := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, newRoomResponse(r))
	}
	return out
}

type GuestResponse struct {
	ID             uint      `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	FullName       string    `json:"fullName"`
	DocumentNumber string    `json:"documentNumber"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	CreatedAt      time.Time `json:"createdAt"`
}

func newGuestResponse(g models.Guest) GuestResponse {
	return GuestResponse{
		ID:             g.ID,
		FirstName:      g.FirstName,
		LastName:       g.LastName,
		FullName:       g.FullName(),
		DocumentNumber: g.DocumentNumber,
		Email:          g.Email,
		Phone:          g.Phone,
		CreatedAt:      g.CreatedAt,
	}
}

type ReservationResponse struct {
	ID                 uint                     `json:"id"`
	ReservationNumber  string                   `json:"reservationNumber"`
	Guest              GuestResponse            `json:"guest"`
	Room               RoomResponse             `json:"room"`
	CheckInDate        string                   `json:"checkInDate"`
	CheckOutDate       string                   `json:"checkOutDate"`
	NumberOfGuests     int                      `json:"numberOfGuests"`
	NumberOfNights     int                      `json:"numberOfNights"`
	TotalAmount        string                   `json:"totalAmount"`
	Status             models.ReservationStatus `json:"status"`
	CreatedAt          time.Time                `json:"createdAt"`
	CheckInTime        *time.Time               `json:"checkInTime,omitempty"`
	CheckOutTime       *time.Time               `json:"checkOutTime,omitempty"`
	CancelledAt        *time.Time               `json:"cancelledAt,omitempty"`
	CancellationReason string                   `json:"cancellationReason,omitempty"`
}

func newReservationResponse(d services.ReservationDetails) ReservationResponse {
	r := d.Reservation
	return ReservationResponse{
		ID:                 r.ID,
		ReservationNumber:  r.ReservationNumber,
		Guest:              newGuestResponse(d.Guest),
		Room:               newRoomResponse(d.Room),
		CheckInDate:        models.FormatDate(r.CheckInDay()),
		CheckOutDate:       models.FormatDate(r.CheckOutDay()),
		NumberOfGuests:     r.NumberOfGuests,
		NumberOfNights:     r.Nights(),
		TotalAmount:        money(r.TotalAmount),
		Status:             r.Status,
		CreatedAt:          r.CreatedAt,
		CheckInTime:        r.CheckInTime,
		CheckOutTime:       r.CheckOutTime,
		CancelledAt:        r.CancelledAt,
		CancellationReason: r.CancellationReason,
	}
}

func newReservationResponses(ds []services.ReservationDetails) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, newReservationResponse(d))
	}
	return out
}

type CancelReservationResponse struct {
	ReservationNumber string    `json:"reservationNumber"`
	CancellationDate  time.Time `json:"cancellationDate"`
	TotalAmount       string    `json:"totalAmount"`
	RefundAmount      string    `json:"refundAmount"`
	PenaltyAmount     string    `json:"penaltyAmount"`
	RefundPercentage  int       `json:"refundPercentage"`
}

type TodayReservationsResponse struct {
	CheckIns  []ReservationResponse `json:"checkIns"`
	CheckOuts []ReservationResponse `json:"checkOuts"`
}

type PaymentResponse struct {
	ID            string               `json:"id"`
	ReservationID uint                 `json:"reservationId"`
	Method        models.PaymentMethod `json:"method"`
	Amount        string               `json:"amount"`
	Reference     string               `json:"reference,omitempty"`
	PaidAt        time.Time            `json:"paidAt"`
}

func newPaymentResponse(p models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		ReservationID: p.ReservationID,
		Method:        p.Method,
		Amount:        money(p.Amount),
		Reference:     p.Reference,
		PaidAt:        p.PaidAt,
	}
}
