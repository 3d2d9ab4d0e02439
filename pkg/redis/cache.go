package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cuong200111/baitap-sub001/pkg/models"
)

const defaultProductCacheTTL = 24 * time.Hour

type Catalog interface {
	ProductByID(ctx context.Context, productID int64) (*models.Product, error)
}

// ProductCache is a read-through cache in front of a catalog. Cache failures
// fall back to the catalog.
type ProductCache struct {
	client *redis.Client
	next   Catalog
	ttl    time.Duration
}

// NewProductCache keeps entries for ttl, or a day when ttl is zero. Stock
// checks read through this cache, so a short ttl keeps them honest.
func NewProductCache(client *redis.Client, next Catalog, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = defaultProductCacheTTL
	}
	return &ProductCache{client: client, next: next, ttl: ttl}
}

func productKey(productID int64) string {
	return fmt.Sprintf("product:%d", productID)
}

func (c *ProductCache) ProductByID(ctx context.Context, productID int64) (*models.Product, error) {
	data, err := c.client.Get(ctx, productKey(productID)).Bytes()
	if err == nil {
		var product models.Product
		if err := json.Unmarshal(data, &product); err == nil {
			return &product, nil
		}
		log.Printf("Warning: discarding corrupt cache entry for product %d", productID)
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("Warning: product cache read failed: %v", err)
	}

	product, err := c.next.ProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := c.CacheProduct(ctx, product); err != nil {
		log.Printf("Warning: Failed to cache product %d in Redis: %v", productID, err)
	}
	return product, nil
}

func (c *ProductCache) CacheProduct(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product %d: %w", product.ProductID, err)
	}
	return c.client.Set(ctx, productKey(product.ProductID), data, c.ttl).Err()
}

// Invalidate drops a cached product so the next read sees fresh stock.
func (c *ProductCache) Invalidate(ctx context.Context, productID int64) error {
	return c.client.Del(ctx, productKey(productID)).Err()
}
