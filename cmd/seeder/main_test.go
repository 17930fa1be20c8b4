package main

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"hotel_listings/internal/app"
	"hotel_listings/internal/domain"
	"hotel_listings/internal/storage/local"
	"hotel_listings/internal/storage/memory"
)

const manifestJSON = `[
  {"name": "Seaside Inn", "address1": "3 Beach Avenue", "zipcode": "06400", "city": "Cannes",
   "country": "France", "lat": 43.55, "lng": 7.01, "description": "Ten rooms facing the sea.",
   "max_capacity": 3, "price_per_night": 140, "pictures": ["img/a.png", "img/b.png"]},
  {"name": "Mountain Lodge", "address1": "Route du Col 8", "address2": "Chalet 2", "zipcode": "74400",
   "city": "Chamonix", "country": "France", "lat": 45.92, "lng": 6.87,
   "description": "Wooden lodge below the glacier.", "max_capacity": 8, "price_per_night": 210.5,
   "pictures": ["img/b.png"]},
  {"name": "Ghost", "address1": "Nowhere street", "zipcode": "00000", "city": "Void",
   "country": "Nowhere", "lat": 0, "lng": 0, "description": "Its picture does not exist.",
   "max_capacity": 1, "price_per_night": 1, "pictures": ["img/missing.png"]}
]`

func writePNG(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 128, 128))); err != nil {
		t.Fatal(err)
	}
}

func TestSeed_CreatesHotelsAndCountsFailures(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "img", "a.png"))
	writePNG(t, filepath.Join(dir, "img", "b.png"))
	manifest := filepath.Join(dir, "hotels.json")
	if err := os.WriteFile(manifest, []byte(manifestJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	hotels, err := loadManifest(manifest)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(hotels) != 3 || hotels[1].Address2 == nil {
		t.Fatalf("unexpected manifest: %+v", hotels)
	}

	files, err := local.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	repo := memory.New()
	svc := app.NewHotelService(repo, files, nil)

	if failed := seed(context.Background(), svc, hotels, dir, 2); failed != 1 {
		t.Fatalf("failed = %d, want 1", failed)
	}
	list, total, _ := repo.ListHotels(context.Background(), domain.HotelsQuery{Page: 1, PerPage: 10, Sort: domain.SortName})
	if total != 2 {
		t.Fatalf("total = %d", total)
	}
	if list[0].Name != "Mountain Lodge" || len(list[0].Pictures) != 1 || len(list[1].Pictures) != 2 {
		t.Fatalf("unexpected hotels: %+v", list)
	}
}

func TestLoadManifest_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	_ = os.WriteFile(path, []byte(`{"name":`), 0o644)
	if _, err := loadManifest(path); err == nil {
		t.Fatal("want decode error")
	}
}
