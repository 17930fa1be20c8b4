package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_listings/internal/adapters/observability"
	"hotel_listings/internal/app"
	"hotel_listings/internal/domain"
	"hotel_listings/internal/shared"
	"hotel_listings/internal/storage"
)

// seedHotel is one manifest entry. Picture paths are relative to the manifest.
type seedHotel struct {
	Name          string   `json:"name"`
	Address1      string   `json:"address1"`
	Address2      *string  `json:"address2"`
	Zipcode       string   `json:"zipcode"`
	City          string   `json:"city"`
	Country       string   `json:"country"`
	Lat           float64  `json:"lat"`
	Lng           float64  `json:"lng"`
	Description   string   `json:"description"`
	MaxCapacity   int      `json:"max_capacity"`
	PricePerNight float64  `json:"price_per_night"`
	Pictures      []string `json:"pictures"`
}

func (s seedHotel) input() domain.HotelInput {
	in := domain.HotelInput{
		Name:          domain.Some(s.Name),
		Address1:      domain.Some(s.Address1),
		Zipcode:       domain.Some(s.Zipcode),
		City:          domain.Some(s.City),
		Country:       domain.Some(s.Country),
		Lat:           domain.Some(s.Lat),
		Lng:           domain.Some(s.Lng),
		Description:   domain.Some(s.Description),
		MaxCapacity:   domain.Some(s.MaxCapacity),
		PricePerNight: domain.Some(s.PricePerNight),
	}
	if s.Address2 != nil {
		in.Address2 = domain.Some(*s.Address2)
	}
	return in
}

func (s seedHotel) uploads(baseDir string) ([]domain.Upload, error) {
	out := make([]domain.Upload, 0, len(s.Pictures))
	for _, rel := range s.Pictures {
		path := rel
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, rel)
		}
		st, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("picture %s: %w", rel, err)
		}
		out = append(out, domain.Upload{
			Filename: filepath.Base(path),
			Size:     st.Size(),
			Open: func() (io.ReadSeekCloser, error) {
				f, err := os.Open(path)
				if err != nil {
					return nil, err
				}
				return f, nil
			},
		})
	}
	return out, nil
}

func loadManifest(path string) ([]seedHotel, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var hs []seedHotel
	if err := json.Unmarshal(b, &hs); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return hs, nil
}

// seed creates every hotel with at most workers in flight and returns how many failed.
func seed(ctx context.Context, svc *app.HotelService, hotels []seedHotel, baseDir string, workers int) int {
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)

	for i, h := range hotels {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Error().Err(err).Msg("semaphore acquire failed")
			failed.Add(int64(len(hotels) - i))
			break
		}

		wg.Add(1)
		go func(idx int, h seedHotel) {
			defer wg.Done()
			defer sem.Release(1)

			ups, err := h.uploads(baseDir)
			if err == nil {
				var created domain.Hotel
				created, err = svc.Create(ctx, h.input(), ups)
				if err == nil {
					log.Info().Int("entry", idx).Int64("id", created.ID).Str("name", h.Name).
						Int("pictures", len(created.Pictures)).Msg("seed ok")
					return
				}
			}
			failed.Add(1)
			log.Warn().Int("entry", idx).Str("name", h.Name).Err(err).Msg("seed failed")
		}(i, h)
	}

	wg.Wait()
	return int(failed.Load())
}

func main() {
	manifest := flag.String("manifest", "hotels.json", "JSON list of hotels to create")
	flag.Parse()

	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	hotels, err := loadManifest(*manifest)
	if err != nil {
		log.Fatal().Err(err).Msg("manifest")
	}
	log.Info().Str("manifest", *manifest).Int("hotels", len(hotels)).Int("workers", cfg.SeedWorkers).Msg("seeder starting")

	repo, closeRepo, err := storage.OpenRepo(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open repository failed")
	}
	files, err := storage.OpenFiles(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open picture storage failed")
	}

	// no cache: nothing has been read yet
	svc := app.NewHotelService(repo, files.Store, nil)
	failed := seed(ctx, svc, hotels, filepath.Dir(*manifest), cfg.SeedWorkers)
	_ = closeRepo()

	if failed > 0 {
		log.Error().Int("failed", failed).Int("total", len(hotels)).Msg("seeding finished with failures")
		os.Exit(1)
	}
	log.Info().Int("total", len(hotels)).Msg("seeding completed")
}
