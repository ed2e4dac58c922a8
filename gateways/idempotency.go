package gateways

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

const (
	idempotencyKeyPrefix  = "idempotency:hotel:"
	DefaultIdempotencyTTL = 24 * time.Hour

	stateProcessing = "processing"
	stateSuccess    = "success"
)

var ErrKeyInProgress = errors.New("idempotency key is already being processed")

// StoredResponse is replayed to clients that repeat a completed request.
type StoredResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// IdempotencyGateway remembers requests made under an Idempotency-Key.
// Reserve returns (nil, nil) when the caller now owns the key, the stored
// response when the key already completed, and ErrKeyInProgress while
// another request holds it.
type IdempotencyGateway interface {
	Reserve(ctx context.Context, key string) (*StoredResponse, error)
	MarkFailure(ctx context.Context, key string) error
	MarkSuccess(ctx context.Context, key string, resp StoredResponse) error
}

type idempotencyState struct {
	Status string          `json:"status"`
	Result *StoredResponse `json:"result,omitempty"`
}

var (
	_ IdempotencyGateway = (*IdempotencyGatewayMemory)(nil)
	_ IdempotencyGateway = (*IdempotencyGatewayRedis)(nil)
)
