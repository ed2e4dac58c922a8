package controllers

import (
	"net/http"

	"github.com/Karoll-esc/hotel-booking-system/models"
	"github.com/Karoll-esc/hotel-booking-system/services"
	"github.com/Karoll-esc/hotel-booking-system/utils"

	"github.com/gin-gonic/gin"
)

type ReservationController struct {
	Svc *services.ReservationService
}

func NewReservationController(svc *services.ReservationService) *ReservationController {
	return &ReservationController{Svc: svc}
}

// CreateReservation handles POST /api/reservations
func (ctrl *ReservationController) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	// formats were checked by the isodate tag
	checkIn, _ := models.ParseDate(req.CheckInDate)
	checkOut, _ := models.ParseDate(req.CheckOutDate)

	d, err := ctrl.Svc.Create(c.Request.Context(), services.CreateReservationInput{
		Guest: services.GuestInput{
			FirstName:      req.Guest.FirstName,
			LastName:       req.Guest.LastName,
			DocumentNumber: req.Guest.DocumentNumber,
			Email:          req.Guest.Email,
			Phone:          req.Guest.Phone,
		},
		RoomID:         req.RoomID,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		NumberOfGuests: req.NumberOfGuests,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, newReservationResponse(*d))
}

// GetReservation handles GET /api/reservations/:id
func (ctrl *ReservationController) GetReservation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	d, err := ctrl.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, newReservationResponse(*d))
}

// ConfirmPayment handles POST /api/reservations/:id/confirm-payment
func (ctrl *ReservationController) ConfirmPayment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if !req.Amount.IsPositive() {
		respondError(c, services.Validation("amount must be greater than zero"))
		return
	}

	p, err := ctrl.Svc.ConfirmPayment(c.Request.Context(), id, services.PaymentInput{
		Method:    req.PaymentMethod,
		Amount:    *req.Amount,
		Reference: req.Reference,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, newPaymentResponse(*p))
}

// GetPayments handles GET /api/reservations/:id/payments
func (ctrl *ReservationController) GetPayments(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	payments, err := ctrl.Svc.Payments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, newPaymentResponse(p))
	}
	utils.JSONSuccess(c, http.StatusOK, out)
}

func (ctrl *ReservationController) transition(c *gin.Context, op func(*gin.Context, uint) (*services.ReservationDetails, error)) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	d, err := op(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, newReservationResponse(*d))
}

// CheckIn handles POST /api/reservations/:id/check-in
func (ctrl *ReservationController) CheckIn(c *gin.Context) {
	ctrl.transition(c, func(c *gin.Context, id uint) (*services.ReservationDetails, error) {
		return ctrl.Svc.CheckIn(c.Request.Context(), id)
	})
}

// CheckOut handles POST /api/reservations/:id/check-out
func (ctrl *ReservationController) CheckOut(c *gin.Context) {
	ctrl.transition(c, func(c *gin.Context, id uint) (*services.ReservationDetails, error) {
		return ctrl.Svc.CheckOut(c.Request.Context(), id)
	})
}

// Expire handles POST /api/reservations/:id/expire
func (ctrl *ReservationController) Expire(c *gin.Context) {
	ctrl.transition(c, func(c *gin.Context, id uint) (*services.ReservationDetails, error) {
		return ctrl.Svc.Expire(c.Request.Context(), id)
	})
}

// Cancel handles POST /api/reservations/:id/cancel
func (ctrl *ReservationController) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CancelReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	s, err := ctrl.Svc.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, CancelReservationResponse{
		ReservationNumber: s.ReservationNumber,
		CancellationDate:  s.CancelledAt,
		TotalAmount:       money(s.TotalAmount),
		RefundAmount:      money(s.RefundAmount),
		PenaltyAmount:     money(s.PenaltyAmount),
		RefundPercentage:  s.RefundPercentage,
	})
}

// ExpireStale handles POST /api/reservations/expire-stale
func (ctrl *ReservationController) ExpireStale(c *gin.Context) {
	expired, err := ctrl.Svc.ExpireStale(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"expired":      len(expired),
		"reservations": newReservationResponses(expired),
	})
}

// Search handles GET /api/reservations/search?reservationNumber=&guestName=
func (ctrl *ReservationController) Search(c *gin.Context) {
	found, err := ctrl.Svc.Search(c.Request.Context(), c.Query("reservationNumber"), c.Query("guestName"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, newReservationResponses(found))
}

// Today handles GET /api/reservations/today
func (ctrl *ReservationController) Today(c *gin.Context) {
	today, err := ctrl.Svc.Today(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, TodayReservationsResponse{
		CheckIns:  newReservationResponses(today.CheckIns),
		CheckOuts: newReservationResponses(today.CheckOuts),
	})
}
