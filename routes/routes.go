package routes

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Karoll-esc/hotel-booking-system/controllers"
	"github.com/Karoll-esc/hotel-booking-system/gateways"
	"github.com/Karoll-esc/hotel-booking-system/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// HealthCheck reports one dependency for /health. A nil Ping means the
// dependency is not configured.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

func healthHandler(checks []HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := gin.H{}
		for _, check := range checks {
			switch {
			case check.Ping == nil:
				results[check.Name] = "n/a"
			case check.Ping(ctx) != nil:
				results[check.Name] = "down"
				status = http.StatusServiceUnavailable
			default:
				results[check.Name] = "up"
			}
		}
		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		c.JSON(status, gin.H{"status": overall, "checks": results})
	}
}

// SetupRouter รับ Controller Instances เข้ามาเพื่อกำหนด Route
func SetupRouter(
	rc *controllers.ReservationController,
	roc *controllers.RoomController,
	gc *controllers.GuestController,
	idem gateways.IdempotencyGateway,
	checks ...HealthCheck,
) *gin.Engine {
	r := gin.New()

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.Metrics(),
		middleware.Logger(),
		gin.Recovery(),
	)
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader, middleware.IdempotencyHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, middleware.ReplayHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", healthHandler(checks))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	idempotent := middleware.Idempotency(idem)

	api := r.Group("/api")
	{
		rooms := api.Group("/rooms")
		{
			rooms.POST("", roc.CreateRoom)
			rooms.GET("", roc.GetRooms)

			// ? ต้องอยู่ก่อน /:id
			rooms.GET("/available", roc.GetAvailableRooms)

			rooms.GET("/:id", roc.GetRoom)
			rooms.PUT("/:id", roc.UpdateRoom)
			rooms.DELETE("/:id", roc.DeleteRoom)
		}

		guests := api.Group("/guests")
		{
			guests.GET("/:documentNumber", gc.GetGuestByDocument)
		}

		reservations := api.Group("/reservations")
		{
			reservations.POST("", idempotent, rc.CreateReservation)
			reservations.GET("/search", rc.Search)
			reservations.GET("/today", rc.Today)
			reservations.POST("/expire-stale", rc.ExpireStale)

			reservations.GET("/:id", rc.GetReservation)
			reservations.GET("/:id/payments", rc.GetPayments)
			reservations.POST("/:id/confirm-payment", idempotent, rc.ConfirmPayment)
			reservations.POST("/:id/check-in", rc.CheckIn)
			reservations.POST("/:id/check-out", rc.CheckOut)
			reservations.POST("/:id/cancel", rc.Cancel)
			reservations.POST("/:id/expire", rc.Expire)
		}
	}

	return r
}
