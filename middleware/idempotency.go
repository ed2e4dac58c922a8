package middleware

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Karoll-esc/hotel-booking-system/gateways"
	"github.com/Karoll-esc/hotel-booking-system/utils"

	"github.com/gin-gonic/gin"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	ReplayHeader      = "Idempotent-Replayed"
)

type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response for a repeated Idempotency-Key.
// Only successful responses are kept; a failed request releases its key.
// Requests without the header pass straight through.
func Idempotency(gw gateways.IdempotencyGateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
		if key == "" || gw == nil {
			c.Next()
			return
		}
		// scope keys per endpoint and target so one key cannot replay another route
		scoped := c.Request.Method + ":" + c.Request.URL.Path + ":" + key
		ctx := c.Request.Context()

		stored, err := gw.Reserve(ctx, scoped)
		switch {
		case errors.Is(err, gateways.ErrKeyInProgress):
			utils.JSONError(c, http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "a request with this Idempotency-Key is still being processed")
			c.Abort()
			return
		case err != nil:
			log.Printf("warning: idempotency store unavailable, processing without it: %v", err)
			c.Next()
			return
		case stored != nil:
			c.Header(ReplayHeader, "true")
			c.Data(stored.Status, "application/json; charset=utf-8", stored.Body)
			c.Abort()
			return
		}

		rw := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = rw
		c.Next()

		// the outcome must be recorded even if the client has gone away
		markCtx := context.WithoutCancel(ctx)
		status := rw.Status()
		if status >= 200 && status < 300 {
			err = gw.MarkSuccess(markCtx, scoped, gateways.StoredResponse{Status: status, Body: rw.body.Bytes()})
		} else {
			err = gw.MarkFailure(markCtx, scoped)
		}
		if err != nil {
			log.Printf("warning: failed to update idempotency key %s: %v", key, err)
		}
	}
}
