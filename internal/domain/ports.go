package domain

import (
	"context"
	"io"
)

type HotelRepository interface {
	// Write paths
	CreateHotel(ctx context.Context, f HotelFields, pics []NewPicture) (int64, error)
	UpdateHotel(ctx context.Context, id int64, in HotelInput) error
	DeleteHotel(ctx context.Context, id int64) error
	AddPicture(ctx context.Context, hotelID int64, p NewPicture) (Picture, error)
	DeletePicture(ctx context.Context, hotelID, pictureID int64) error
	SetPicturePosition(ctx context.Context, hotelID, pictureID int64, position int) error

	// Read paths
	GetHotel(ctx context.Context, id int64) (Hotel, error)
	ListHotels(ctx context.Context, q HotelsQuery) ([]Hotel, int, error)
	ListPictures(ctx context.Context, hotelID int64) ([]Picture, error)
}

// FileStore persists picture files under relative paths.
type FileStore interface {
	// Put never overwrites: an existing path yields ErrFileExists.
	Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
	// Delete treats an already absent file as success.
	Delete(ctx context.Context, path string) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models & queries

type SortField string

const (
	SortNone  SortField = ""
	SortName  SortField = "name"
	SortCity  SortField = "city"
	SortPrice SortField = "price_per_night"
)

func (s SortField) Valid() bool {
	switch s {
	case SortNone, SortName, SortCity, SortPrice:
		return true
	}
	return false
}

type HotelsQuery struct {
	Name    *string // case-insensitive substring
	City    *string // exact, case-sensitive
	Sort    SortField
	Desc    bool
	Page    int // 1-based
	PerPage int
}

func (q HotelsQuery) Offset() int { return (q.Page - 1) * q.PerPage }

type PageMeta struct {
	CurrentPage int
	LastPage    int
	PerPage     int
	Total       int
}

func NewPageMeta(page, perPage, total int) PageMeta {
	last := 1
	if perPage > 0 && total > 0 {
		last = (total + perPage - 1) / perPage
	}
	return PageMeta{CurrentPage: page, LastPage: last, PerPage: perPage, Total: total}
}

type HotelsPage struct {
	Items []Hotel
	Meta  PageMeta
}
