// Package ristrettoad is the in-process cache used when no redis address is
// configured.
package ristrettoad

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dgraph-io/ristretto"

	"hotel_listings/internal/adapters/observability"
)

type Cache struct{ c *ristretto.Cache }

// New sizes the cache by stored bytes.
func New(maxBytes int64) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

func (r *Cache) Get(_ context.Context, key string, dst any) (bool, error) {
	v, ok := r.c.Get(key)
	if !ok {
		observability.ObserveCache("ristretto", "miss")
		return false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		observability.ObserveCache("ristretto", "miss")
		return false, nil
	}
	observability.ObserveCache("ristretto", "hit")
	return true, json.Unmarshal(b, dst)
}

func (r *Cache) Set(_ context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if r.c.SetWithTTL(key, b, int64(len(b)), time.Duration(ttlSec)*time.Second) {
		// make the value visible to the next Get
		r.c.Wait()
	}
	observability.ObserveCache("ristretto", "set")
	return nil
}

func (r *Cache) Del(_ context.Context, key string) error {
	r.c.Del(key)
	observability.ObserveCache("ristretto", "del")
	return nil
}

func (r *Cache) Close() { r.c.Close() }
