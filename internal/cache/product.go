// Package cache keeps read-through copies of product detail.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"storefront-api/internal/model"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type ProductCache interface {
	Get(ctx context.Context, key string) (*model.Product, bool)
	Set(ctx context.Context, product *model.Product)
	Invalidate(ctx context.Context, product *model.Product)
}

// Products are cached under both their id and their slug.
func IDKey(id uint) string { return fmt.Sprintf("product:id:%d", id) }

func SlugKey(slug string) string { return "product:slug:" + slug }

type redisProductCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewProductCache returns a no-op cache when client is nil.
func NewProductCache(client *redis.Client, ttl time.Duration, log *zap.Logger) ProductCache {
	if client == nil {
		return noopProductCache{}
	}
	return &redisProductCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Get treats every redis failure as a miss; the database stays authoritative.
func (c *redisProductCache) Get(ctx context.Context, key string) (*model.Product, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("product cache get", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var product model.Product
	if err := json.Unmarshal(data, &product); err != nil {
		c.log.Warn("product cache decode", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &product, true
}

func (c *redisProductCache) Set(ctx context.Context, product *model.Product) {
	data, err := json.Marshal(product)
	if err != nil {
		return
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, IDKey(product.ID), data, c.ttl)
	pipe.Set(ctx, SlugKey(product.Slug), data, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("product cache set", zap.Uint("product_id", product.ID), zap.Error(err))
	}
}

func (c *redisProductCache) Invalidate(ctx context.Context, product *model.Product) {
	if err := c.client.Del(ctx, IDKey(product.ID), SlugKey(product.Slug)).Err(); err != nil {
		c.log.Warn("product cache invalidate", zap.Uint("product_id", product.ID), zap.Error(err))
	}
}

type noopProductCache struct{}

func (noopProductCache) Get(context.Context, string) (*model.Product, bool) { return nil, false }

func (noopProductCache) Set(context.Context, *model.Product) {}

func (noopProductCache) Invalidate(context.Context, *model.Product) {}
