package controllers

import (
	"net/http"

	"github.com/Karoll-esc/hotel-booking-system/services"
	"github.com/Karoll-esc/hotel-booking-system/utils"

	"github.com/gin-gonic/gin"
)

type GuestController struct {
	Svc *services.GuestService
}

func NewGuestController(svc *services.GuestService) *GuestController {
	return &GuestController{Svc: svc}
}

// GetGuestByDocument handles GET /api/guests/:documentNumber
func (gc *GuestController) GetGuestByDocument(c *gin.Context) {
	g, err := gc.Svc.GetByDocument(c.Request.Context(), c.Param("documentNumber"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, newGuestResponse(*g))
}
