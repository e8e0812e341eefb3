package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coastalhub/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Carts are abandoned silently; the TTL reaps them.
const cartTTL = 24 * time.Hour

// updateRetries bounds optimistic-lock retries when concurrent writes
// to the same session keep invalidating the transaction.
const updateRetries = 5

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis builds a Store backed by a Redis client.
func NewRedis(client *redis.Client) Store {
	return &redisStore{client: client, ttl: cartTTL}
}

func (s *redisStore) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &cart, nil
}

// Update runs fn under WATCH so the save aborts if another request
// wrote the session's cart in between, then retries against the fresh
// state. Two browser tabs mutating one session cannot lose each
// other's lines.
func (s *redisStore) Update(ctx context.Context, sessionID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	key := cartKey(sessionID)
	var updated *domain.Cart

	apply := func(tx *redis.Tx) error {
		cart := &domain.Cart{SessionID: sessionID}
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("redis get cart: %w", err)
		default:
			if err := json.Unmarshal(data, cart); err != nil {
				return fmt.Errorf("unmarshal cart: %w", err)
			}
		}

		if err := fn(cart); err != nil {
			return err
		}

		payload, err := json.Marshal(cart)
		if err != nil {
			return fmt.Errorf("marshal cart: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = cart
		return nil
	}

	for i := 0; i < updateRetries; i++ {
		err := s.client.Watch(ctx, apply, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("update cart %s: concurrent writes exhausted retries", sessionID)
}

func (s *redisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}
