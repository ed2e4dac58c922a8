package gateways

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type IdempotencyGatewayRedis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyGatewayRedis(client *redis.Client, ttl time.Duration) *IdempotencyGatewayRedis {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyGatewayRedis{client: client, ttl: ttl}
}

func redisKey(key string) string {
	return idempotencyKeyPrefix + key
}

func (g *IdempotencyGatewayRedis) Reserve(ctx context.Context, key string) (*StoredResponse, error) {
	k := redisKey(key)

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		data, err := g.client.Get(ctx, k).Bytes()
		if err == redis.Nil {
			raw, _ := json.Marshal(idempotencyState{Status: stateProcessing})
			_, err := g.client.SetArgs(ctx, k, raw, redis.SetArgs{Mode: "NX", TTL: g.ttl}).Result()
			if err == redis.Nil {
				// lost the race to another request; read its state
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("redis set: %w", err)
			}
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("redis get: %w", err)
		}

		var state idempotencyState
		if err := json.Unmarshal(data, &state); err != nil {
			return nil, fmt.Errorf("redis unmarshal: %w", err)
		}

		switch state.Status {
		case stateSuccess:
			return state.Result, nil
		case stateProcessing:
			return nil, ErrKeyInProgress
		default:
			raw, _ := json.Marshal(idempotencyState{Status: stateProcessing})
			if err := g.client.Set(ctx, k, raw, g.ttl).Err(); err != nil {
				return nil, fmt.Errorf("redis set: %w", err)
			}
			return nil, nil
		}
	}
}

func (g *IdempotencyGatewayRedis) MarkFailure(ctx context.Context, key string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return g.client.Del(ctx, redisKey(key)).Err()
}

func (g *IdempotencyGatewayRedis) MarkSuccess(ctx context.Context, key string, resp StoredResponse) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	raw, err := json.Marshal(idempotencyState{Status: stateSuccess, Result: &resp})
	if err != nil {
		return err
	}
	return g.client.Set(ctx, redisKey(key), raw, g.ttl).Err()
}
