package models

import (
	"fmt"
	"strings"
)

// RoomType is the category a room is sold under.
type RoomType string

const (
	RoomTypeStandard RoomType = "STANDARD"
	RoomTypeSuperior RoomType = "SUPERIOR"
	RoomTypeSuite    RoomType = "SUITE"
)

var roomTypeNames = map[RoomType]string{
	RoomTypeStandard: "Standard",
	RoomTypeSuperior: "Superior",
	RoomTypeSuite:    "Suite",
}

func (t RoomType) IsValid() bool {
	_, ok := roomTypeNames[t]
	return ok
}

// DisplayName returns the label shown to front desk staff.
func (t RoomType) DisplayName() string {
	return roomTypeNames[t]
}

func ParseRoomType(s string) (RoomType, error) {
	t := RoomType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid room type: %s", s)
	}
	return t, nil
}
