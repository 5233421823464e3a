package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const orderOwnerPrefix = "orders:owner:"

var ErrOrderNotIndexed = errors.New("order not indexed")

// OrderRepo maps pending gateway orders to their owners so a payment
// callback can be routed without scanning profiles.
type OrderRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewOrderRepo(client *goredis.Client, ttl time.Duration) *OrderRepo {
	return &OrderRepo{client: client, ttl: ttl}
}

func (r *OrderRepo) Save(ctx context.Context, orderID string, userID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(orderID) == "" || userID <= 0 {
		return fmt.Errorf("invalid order index payload")
	}

	if err := r.client.Set(ctx, orderOwnerKey(orderID), userID, r.ttl).Err(); err != nil {
		return fmt.Errorf("index order owner: %w", err)
	}
	return nil
}

func (r *OrderRepo) Owner(ctx context.Context, orderID string) (int64, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}

	raw, err := r.client.Get(ctx, orderOwnerKey(orderID)).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, ErrOrderNotIndexed
	}
	if err != nil {
		return 0, fmt.Errorf("get order owner: %w", err)
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse order owner: %w", err)
	}
	return userID, nil
}

func (r *OrderRepo) Delete(ctx context.Context, orderID string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, orderOwnerKey(orderID)).Err(); err != nil {
		return fmt.Errorf("delete order owner: %w", err)
	}
	return nil
}

func orderOwnerKey(orderID string) string {
	return orderOwnerPrefix + strings.TrimSpace(orderID)
}
