package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Karoll-esc/hotel-booking-system/models"
	"github.com/Karoll-esc/hotel-booking-system/repositories"
)

type GuestInput struct {
	FirstName      string
	LastName       string
	DocumentNumber string
	Email          string
	Phone          string
}

type GuestService struct {
	Store repositories.Store
}

func NewGuestService(store repositories.Store) *GuestService {
	return &GuestService{Store: store}
}

// Upsert finds the guest by document number and refreshes their contact
// details, or creates them. It runs on dir so it can join the caller's
// transaction.
func (s *GuestService) Upsert(ctx context.Context, dir repositories.GuestDirectory, in GuestInput) (*models.Guest, error) {
	doc := strings.TrimSpace(in.DocumentNumber)
	if doc == "" {
		return nil, Validation("guest document number is required")
	}

	guest, err := dir.FindGuestByDocument(ctx, doc)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		guest = &models.Guest{DocumentNumber: doc}
	case err != nil:
		return nil, fmt.Errorf("find guest: %w", err)
	}

	guest.FirstName = strings.TrimSpace(in.FirstName)
	guest.LastName = strings.TrimSpace(in.LastName)
	guest.Email = strings.TrimSpace(in.Email)
	guest.Phone = strings.TrimSpace(in.Phone)

	if err := dir.SaveGuest(ctx, guest); err != nil {
		return nil, fmt.Errorf("save guest: %w", err)
	}
	return guest, nil
}

func (s *GuestService) GetByDocument(ctx context.Context, documentNumber string) (*models.Guest, error) {
	guest, err := s.Store.FindGuestByDocument(ctx, strings.TrimSpace(documentNumber))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, NotFound("guest with document %s not found", documentNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("find guest: %w", err)
	}
	return guest, nil
}
