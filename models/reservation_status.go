package models

import (
	"errors"
	"fmt"
)

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusActive    ReservationStatus = "ACTIVE"
	StatusCompleted ReservationStatus = "COMPLETED"
	StatusCancelled ReservationStatus = "CANCELLED"
	StatusExpired   ReservationStatus = "EXPIRED"
)

// NonTerminalStatuses are the statuses that hold a room for their nights.
var NonTerminalStatuses = []ReservationStatus{StatusPending, StatusConfirmed, StatusActive}

func (s ReservationStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

func (s ReservationStatus) IsCancellable() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusActive
}

func (s ReservationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusActive, StatusCompleted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// LifecycleEvent is something that happens to a reservation after it is created.
type LifecycleEvent string

const (
	EventConfirmPayment LifecycleEvent = "confirm_payment"
	EventCheckIn        LifecycleEvent = "check_in"
	EventCheckOut       LifecycleEvent = "check_out"
	EventCancel         LifecycleEvent = "cancel"
	EventExpire         LifecycleEvent = "expire"
)

// RoomEffect says what a transition does to the room's occupancy flag.
type RoomEffect int

const (
	RoomUnchanged RoomEffect = iota
	RoomOccupy
	RoomRelease
)

// Effects are applied by the caller once Transition has accepted an event.
type Effects struct {
	Room           RoomEffect
	StampCheckIn   bool
	StampCheckOut  bool
	StampCancelled bool
}

var ErrTransitionNotAllowed = errors.New("transition not allowed")

type transitionKey struct {
	from  ReservationStatus
	event LifecycleEvent
}

type transitionResult struct {
	to      ReservationStatus
	effects Effects
}

var transitions = map[transitionKey]transitionResult{
	{StatusPending, EventConfirmPayment}: {to: StatusConfirmed},
	{StatusConfirmed, EventCheckIn}: {
		to:      StatusActive,
		effects: Effects{Room: RoomOccupy, StampCheckIn: true},
	},
	{StatusActive, EventCheckOut}: {
		to:      StatusCompleted,
		effects: Effects{Room: RoomRelease, StampCheckOut: true},
	},
	{StatusPending, EventCancel}:   {to: StatusCancelled, effects: Effects{StampCancelled: true}},
	{StatusConfirmed, EventCancel}: {to: StatusCancelled, effects: Effects{StampCancelled: true}},
	{StatusActive, EventCancel}: {
		to:      StatusCancelled,
		effects: Effects{Room: RoomRelease, StampCancelled: true},
	},
	{StatusPending, EventExpire}: {to: StatusExpired},
}

// Transition decides the next status for an event. It performs no I/O and
// never mutates anything; callers apply the returned Effects themselves.
func Transition(current ReservationStatus, event LifecycleEvent) (ReservationStatus, Effects, error) {
	res, ok := transitions[transitionKey{current, event}]
	if !ok {
		return current, Effects{}, fmt.Errorf("%w: %s from %s", ErrTransitionNotAllowed, event, current)
	}
	return res.to, res.effects, nil
}

// CanTransition reports whether event is accepted from current.
func CanTransition(current ReservationStatus, event LifecycleEvent) bool {
	_, ok := transitions[transitionKey{current, event}]
	return ok
}
