package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

func (m PaymentMethod) IsValid() bool {
	return m == PaymentCash || m == PaymentCard || m == PaymentTransfer
}

// RequiresReference reports whether the method needs a processor or bank reference.
func (m PaymentMethod) RequiresReference() bool {
	return m == PaymentCard || m == PaymentTransfer
}

// ParsePaymentMethod accepts only the exact names CASH, CARD and TRANSFER.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if !m.IsValid() {
		return "", fmt.Errorf("invalid payment method: %s", s)
	}
	return m, nil
}

// Payment is one row of the payment ledger. A reservation gets a row when its
// payment is confirmed.
type Payment struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	ReservationID uint            `gorm:"column:reservation_id;not null;index" json:"reservationId"`
	Method        PaymentMethod   `gorm:"column:method;size:20;not null" json:"method"`
	Amount        decimal.Decimal `gorm:"column:amount;type:decimal(10,2);not null" json:"amount"`
	Reference     string          `gorm:"column:reference;size:100" json:"reference,omitempty"`
	PaidAt        time.Time       `gorm:"column:paid_at;not null" json:"paidAt"`
	Metadata      datatypes.JSON  `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}
