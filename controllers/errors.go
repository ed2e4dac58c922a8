package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/Karoll-esc/hotel-booking-system/services"
	"github.com/Karoll-esc/hotel-booking-system/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func statusForKind(kind services.Kind) int {
	switch kind {
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindInvalidDateRange, services.KindValidation:
		return http.StatusBadRequest
	case services.KindConflict, services.KindStateConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	status := statusForKind(kind)
	if status == http.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	utils.JSONError(c, status, string(kind), services.MessageOf(err))
}

func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describeFieldError(fe))
		}
		utils.JSONError(c, http.StatusBadRequest, string(services.KindValidation), strings.Join(msgs, "; "))
		return
	}
	utils.JSONError(c, http.StatusBadRequest, string(services.KindValidation), "invalid request payload: "+err.Error())
}

// parseID reads the :id path param; it writes the 400 itself when invalid.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, string(services.KindValidation), "invalid id: "+c.Param("id"))
		return 0, false
	}
	return uint(id), true
}
