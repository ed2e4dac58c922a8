package services

import (
	"github.com/Karoll-esc/hotel-booking-system/models"

	"github.com/shopspring/decimal"
)

const (
	fullRefundDays    = 7
	partialRefundDays = 2
)

// RefundPercentage applies the cancellation schedule. Occupied stays are
// never refunded.
func RefundPercentage(status models.ReservationStatus, daysUntilCheckIn int) int {
	switch {
	case status == models.StatusActive:
		return 0
	case daysUntilCheckIn >= fullRefundDays:
		return 100
	case daysUntilCheckIn >= partialRefundDays:
		return 50
	default:
		return 0
	}
}

type Refund struct {
	Percentage int
	Refund     decimal.Decimal
	Penalty    decimal.Decimal
}

// ComputeRefund splits total into refund and penalty. The refund is rounded
// to cents and the penalty takes the remainder, so both always sum to total.
func ComputeRefund(total decimal.Decimal, percentage int) Refund {
	refund := total.Mul(decimal.NewFromInt(int64(percentage))).
		Div(decimal.NewFromInt(100)).
		Round(2)
	return Refund{
		Percentage: percentage,
		Refund:     refund,
		Penalty:    total.Sub(refund),
	}
}
