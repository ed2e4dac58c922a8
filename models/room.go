package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinRoomCapacity = 1
	MaxRoomCapacity = 10
)

type Room struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	RoomNumber    string          `json:"roomNumber" gorm:"column:room_number;uniqueIndex;type:varchar(50);not null"`
	RoomType      RoomType        `json:"roomType" gorm:"column:room_type;type:varchar(20);not null"`
	Capacity      int             `json:"capacity" gorm:"column:capacity;not null"`
	PricePerNight decimal.Decimal `json:"pricePerNight" gorm:"column:price_per_night;type:decimal(10,2);not null"`

	// IsAvailable tracks physical occupancy: false between check-in and check-out.
	IsAvailable bool `json:"isAvailable" gorm:"column:is_available;not null"`
}

func NewRoom(number string, roomType RoomType, capacity int, price decimal.Decimal) *Room {
	return &Room{
		RoomNumber:    number,
		RoomType:      roomType,
		Capacity:      capacity,
		PricePerNight: price,
		IsAvailable:   true,
	}
}
