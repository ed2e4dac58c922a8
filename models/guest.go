package models

import (
	"strings"
	"time"
)

// Guest is keyed by DocumentNumber; the document number never changes once stored.
type Guest struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	FirstName      string `gorm:"size:100;not null" json:"firstName"`
	LastName       string `gorm:"size:100;not null" json:"lastName"`
	DocumentNumber string `gorm:"column:document_number;size:50;uniqueIndex;not null" json:"documentNumber"`
	Email          string `gorm:"size:150" json:"email"`
	Phone          string `gorm:"size:30" json:"phone"`
}

func (g Guest) FullName() string {
	return strings.TrimSpace(g.FirstName + " " + g.LastName)
}
