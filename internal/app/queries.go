package app

import (
	"context"
	"fmt"
	"time"

	"hotel_listings/internal/domain"
)

type QueryService struct {
	repo     domain.HotelRepository
	cache    domain.Cache
	cacheTTL time.Duration
	perPage  int
	maxPer   int
}

func NewQueryService(r domain.HotelRepository, c domain.Cache, ttl time.Duration, defaultPerPage, maxPerPage int) *QueryService {
	if defaultPerPage <= 0 {
		defaultPerPage = 10
	}
	if maxPerPage < defaultPerPage {
		maxPerPage = defaultPerPage
	}
	return &QueryService{repo: r, cache: c, cacheTTL: ttl, perPage: defaultPerPage, maxPer: maxPerPage}
}

func (s *QueryService) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	key := hotelKey(id)
	var h domain.Hotel
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &h); ok {
			return h, nil
		}
	}
	h, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	}
	return h, nil
}

// DefaultPerPage is the page size used when the caller gives none.
func (s *QueryService) DefaultPerPage() int { return s.perPage }

// ListHotels returns one page. A page past the last one is empty, not an error.
func (s *QueryService) ListHotels(ctx context.Context, q domain.HotelsQuery) (domain.HotelsPage, error) {
	v := &domain.ValidationError{}
	if q.PerPage <= 0 {
		v.Add("per_page", "The per page must be at least 1.")
	} else if q.PerPage > s.maxPer {
		v.Add("per_page", fmt.Sprintf("The per page may not be greater than %d.", s.maxPer))
	}
	if q.Page <= 0 {
		v.Add("page", "The page must be at least 1.")
	}
	if !q.Sort.Valid() {
		v.Add("sort", "The selected sort is invalid.")
	}
	if err := v.Err(); err != nil {
		return domain.HotelsPage{}, err
	}

	items, total, err := s.repo.ListHotels(ctx, q)
	if err != nil {
		return domain.HotelsPage{}, err
	}
	if items == nil {
		items = []domain.Hotel{}
	}
	return domain.HotelsPage{Items: items, Meta: domain.NewPageMeta(q.Page, q.PerPage, total)}, nil
}
