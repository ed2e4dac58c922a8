package controllers

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/Karoll-esc/hotel-booking-system/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-()]{7,20}$`)
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the custom binding tags (phone, roomtype, isodate)
// to gin's validator and reports fields by their JSON names.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		validations := map[string]validator.Func{
			"phone": func(fl validator.FieldLevel) bool {
				return phonePattern.MatchString(fl.Field().String())
			},
			"roomtype": func(fl validator.FieldLevel) bool {
				_, err := models.ParseRoomType(fl.Field().String())
				return err == nil
			},
			"isodate": func(fl validator.FieldLevel) bool {
				_, err := models.ParseDate(fl.Field().String())
				return err == nil
			},
		}
		for tag, fn := range validations {
			if err := v.RegisterValidation(tag, fn); err != nil {
				registerErr = err
				return
			}
		}
	})
	return registerErr
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "email":
		return field + " must be a valid email address"
	case "phone":
		return field + " must be a valid phone number"
	case "roomtype":
		return field + " must be one of STANDARD, SUPERIOR, SUITE"
	case "isodate":
		return field + " must be a date in YYYY-MM-DD format"
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}
