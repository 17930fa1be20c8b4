// Package memory keeps hotels and pictures in process memory. It follows the
// same contract as the MySQL repository and backs DB_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hotel_listings/internal/domain"
)

type Repo struct {
	mu       sync.RWMutex
	hotels   map[int64]domain.Hotel // Pictures unused here
	pictures map[int64]domain.Picture
	nextHID  int64
	nextPID  int64
	now      func() time.Time
}

func New() *Repo {
	return &Repo{
		hotels:   map[int64]domain.Hotel{},
		pictures: map[int64]domain.Picture{},
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

func (r *Repo) CreateHotel(ctx context.Context, f domain.HotelFields, pics []domain.NewPicture) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextHID++
	now := r.now()
	h := domain.Hotel{
		ID:            r.nextHID,
		Name:          f.Name,
		Address1:      f.Address1,
		Address2:      cloneStr(f.Address2),
		Zipcode:       f.Zipcode,
		City:          f.City,
		Country:       f.Country,
		Lat:           f.Lat,
		Lng:           f.Lng,
		Description:   f.Description,
		MaxCapacity:   f.MaxCapacity,
		PricePerNight: f.PricePerNight,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.hotels[h.ID] = h
	for _, p := range pics {
		r.insertPicture(h.ID, p, now)
	}
	return h.ID, nil
}

func (r *Repo) UpdateHotel(ctx context.Context, id int64, in domain.HotelInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hotels[id]
	if !ok {
		return domain.ErrNotFound
	}
	in.Apply(&h)
	h.UpdatedAt = r.now()
	r.hotels[id] = h
	return nil
}

func (r *Repo) DeleteHotel(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.hotels[id]; !ok {
		return domain.ErrNotFound
	}
	for pid, p := range r.pictures {
		if p.HotelID == id {
			delete(r.pictures, pid)
		}
	}
	delete(r.hotels, id)
	return nil
}

func (r *Repo) AddPicture(ctx context.Context, hotelID int64, p domain.NewPicture) (domain.Picture, error) {
	if err := ctx.Err(); err != nil {
		return domain.Picture{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.hotels[hotelID]; !ok {
		return domain.Picture{}, domain.ErrNotFound
	}
	return r.insertPicture(hotelID, p, r.now()), nil
}

func (r *Repo) DeletePicture(ctx context.Context, hotelID, pictureID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pictures[pictureID]
	if !ok || p.HotelID != hotelID {
		return domain.ErrNotFound
	}
	delete(r.pictures, pictureID)
	return nil
}

// SetPicturePosition ignores pictures the hotel does not own.
func (r *Repo) SetPicturePosition(ctx context.Context, hotelID, pictureID int64, position int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pictures[pictureID]
	if !ok || p.HotelID != hotelID {
		return nil
	}
	p.Position = position
	p.UpdatedAt = r.now()
	r.pictures[pictureID] = p
	return nil
}

func (r *Repo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	if err := ctx.Err(); err != nil {
		return domain.Hotel{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return r.withPictures(h), nil
}

func (r *Repo) ListHotels(ctx context.Context, q domain.HotelsQuery) ([]domain.Hotel, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var match []domain.Hotel
	for _, h := range r.hotels {
		if q.Name != nil && !strings.Contains(strings.ToLower(h.Name), strings.ToLower(*q.Name)) {
			continue
		}
		if q.City != nil && h.City != *q.City {
			continue
		}
		match = append(match, h)
	}
	sort.Slice(match, func(i, j int) bool {
		a, b := match[i], match[j]
		if c := compare(a, b, q.Sort); c != 0 {
			if q.Desc {
				return c > 0
			}
			return c < 0
		}
		return a.ID < b.ID
	})

	total := len(match)
	from := q.Offset()
	if from >= total {
		return []domain.Hotel{}, total, nil
	}
	to := from + q.PerPage
	if to > total {
		to = total
	}
	out := make([]domain.Hotel, 0, to-from)
	for _, h := range match[from:to] {
		out = append(out, r.withPictures(h))
	}
	return out, total, nil
}

func (r *Repo) ListPictures(ctx context.Context, hotelID int64) ([]domain.Picture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.picturesOf(hotelID), nil
}

// ---- internals (callers hold the lock) ----

func (r *Repo) insertPicture(hotelID int64, p domain.NewPicture, now time.Time) domain.Picture {
	r.nextPID++
	pic := domain.Picture{
		ID:        r.nextPID,
		HotelID:   hotelID,
		Filepath:  p.Filepath,
		Filesize:  p.Filesize,
		Position:  p.Position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.pictures[pic.ID] = pic
	return pic
}

func (r *Repo) withPictures(h domain.Hotel) domain.Hotel {
	h.Address2 = cloneStr(h.Address2)
	h.Pictures = r.picturesOf(h.ID)
	return h
}

func (r *Repo) picturesOf(hotelID int64) []domain.Picture {
	out := []domain.Picture{}
	for _, p := range r.pictures {
		if p.HotelID == hotelID {
			out = append(out, p)
		}
	}
	domain.SortPictures(out)
	return out
}

// compare orders names and cities case-insensitively, like the MySQL collation.
func compare(a, b domain.Hotel, by domain.SortField) int {
	switch by {
	case domain.SortName:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case domain.SortCity:
		return strings.Compare(strings.ToLower(a.City), strings.ToLower(b.City))
	case domain.SortPrice:
		switch {
		case a.PricePerNight < b.PricePerNight:
			return -1
		case a.PricePerNight > b.PricePerNight:
			return 1
		}
	}
	return 0
}

func cloneStr(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}
