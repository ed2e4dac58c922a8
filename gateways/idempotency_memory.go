package gateways

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	state     idempotencyState
	expiresAt time.Time
}

type IdempotencyGatewayMemory struct {
	mutex sync.RWMutex
	keys  map[string]*memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewIdempotencyGatewayMemory(ttl time.Duration) *IdempotencyGatewayMemory {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyGatewayMemory{
		keys: make(map[string]*memoryEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (g *IdempotencyGatewayMemory) Reserve(ctx context.Context, key string) (*StoredResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mutex.Lock()
	defer g.mutex.Unlock()

	now := g.now()
	if entry, ok := g.keys[key]; ok && now.Before(entry.expiresAt) {
		switch entry.state.Status {
		case stateSuccess:
			return entry.state.Result, nil
		case stateProcessing:
			return nil, ErrKeyInProgress
		}
	}

	g.keys[key] = &memoryEntry{
		state:     idempotencyState{Status: stateProcessing},
		expiresAt: now.Add(g.ttl),
	}
	return nil, nil
}

func (g *IdempotencyGatewayMemory) MarkFailure(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mutex.Lock()
	defer g.mutex.Unlock()
	delete(g.keys, key)
	return nil
}

func (g *IdempotencyGatewayMemory) MarkSuccess(ctx context.Context, key string, resp StoredResponse) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.keys[key] = &memoryEntry{
		state:     idempotencyState{Status: stateSuccess, Result: &resp},
		expiresAt: g.now().Add(g.ttl),
	}
	return nil
}
