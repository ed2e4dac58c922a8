package controllers

import (
	"net/http"
	"strings"

	"github.com/Karoll-esc/hotel-booking-system/models"
	"github.com/Karoll-esc/hotel-booking-system/repositories"
	"github.com/Karoll-esc/hotel-booking-system/services"
	"github.com/Karoll-esc/hotel-booking-system/utils"

	"github.com/gin-gonic/gin"
)

type RoomController struct {
	Svc *services.RoomService
}

func NewRoomController(svc *services.RoomService) *RoomController {
	return &RoomController{Svc: svc}
}

// ----------------------------------------------------
// POST /api/rooms
// ----------------------------------------------------

func (ctrl *RoomController) CreateRoom(c *gin.Context) {
	var req RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	room, err := ctrl.Svc.Register(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, newRoomResponse(*room))
}

// ----------------------------------------------------
// GET /api/rooms?roomType=&available=true
// ----------------------------------------------------

func (ctrl *RoomController) GetRooms(c *gin.Context) {
	var filter repositories.RoomFilter
	if raw := strings.TrimSpace(c.Query("roomType")); raw != "" {
		t, err := models.ParseRoomType(raw)
		if err != nil {
			respondError(c, services.Validation("room type must be one of STANDARD, SUPERIOR, SUITE"))
			return
		}
		filter.Type = t
	}
	filter.OnlyAvailable = strings.EqualFold(c.Query("available"), "true")

	rooms, err := ctrl.Svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, newRoomResponses(rooms))
}

// ----------------------------------------------------
// GET /api/rooms/available?checkIn=&checkOut=&roomType=
// ----------------------------------------------------

func (ctrl *RoomController) GetAvailableRooms(c *gin.Context) {
	checkIn, err := models.ParseDate(c.Query("checkIn"))
	if err != nil {
		respondError(c, services.Validation("checkIn must be a date in YYYY-MM-DD format"))
		return
	}
	checkOut, err := models.ParseDate(c.Query("checkOut"))
	if err != nil {
		respondError(c, services.Validation("checkOut must be a date in YYYY-MM-DD format"))
		return
	}
	rooms, err := ctrl.Svc.Available(c.Request.Context(), checkIn, checkOut, c.Query("roomType"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, newRoomResponses(rooms))
}

// ----------------------------------------------------
// GET /api/rooms/:id
// ----------------------------------------------------

func (ctrl *RoomController) GetRoom(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	room, err := ctrl.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, newRoomResponse(*room))
}

// ----------------------------------------------------
// PUT /api/rooms/:id
// ----------------------------------------------------

func (ctrl *RoomController) UpdateRoom(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	room, err := ctrl.Svc.Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, newRoomResponse(*room))
}

// ----------------------------------------------------
// DELETE /api/rooms/:id
// ----------------------------------------------------

func (ctrl *RoomController) DeleteRoom(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := ctrl.Svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
