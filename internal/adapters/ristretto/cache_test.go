package ristrettoad_test

import (
	"context"
	"testing"

	ristrettoad "hotel_listings/internal/adapters/ristretto"
	"hotel_listings/internal/domain"
)

func TestCache_SetGetDel(t *testing.T) {
	c, err := ristrettoad.New(1 << 20)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "hotel:3", domain.Hotel{ID: 3, Name: "Hotel Z"}, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var out domain.Hotel
	ok, err := c.Get(ctx, "hotel:3", &out)
	if err != nil || !ok || out.Name != "Hotel Z" {
		t.Fatalf("Get: ok=%v err=%v out=%+v", ok, err, out)
	}

	_ = c.Del(ctx, "hotel:3")
	if ok, _ := c.Get(ctx, "hotel:3", &out); ok {
		t.Fatalf("expected miss after Del")
	}
}
