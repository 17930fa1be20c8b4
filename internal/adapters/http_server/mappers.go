package httpserver

import (
	"time"

	"hotel_listings/internal/domain"
)

type pictureDTO struct {
	ID        int64     `json:"id"`
	HotelID   int64     `json:"hotel_id"`
	Filepath  string    `json:"filepath"`
	Filesize  int64     `json:"filesize"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type hotelDTO struct {
	ID            int64        `json:"id"`
	Name          string       `json:"name"`
	Address1      string       `json:"address1"`
	Address2      *string      `json:"address2"`
	Zipcode       string       `json:"zipcode"`
	City          string       `json:"city"`
	Country       string       `json:"country"`
	Lat           float64      `json:"lat"`
	Lng           float64      `json:"lng"`
	Description   string       `json:"description"`
	MaxCapacity   int          `json:"max_capacity"`
	PricePerNight float64      `json:"price_per_night"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	Pictures      []pictureDTO `json:"pictures"`
}

type metaDTO struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

type listDTO struct {
	Data []hotelDTO `json:"data"`
	Meta metaDTO    `json:"meta"`
}

type pictureErrorDTO struct {
	PictureID int64  `json:"picture_id"`
	Op        string `json:"op"`
	Error     string `json:"error"`
}

type mutationDTO struct {
	Message       string            `json:"message"`
	Hotel         *hotelDTO         `json:"hotel,omitempty"`
	PictureErrors []pictureErrorDTO `json:"picture_errors,omitempty"`
}

func toHotelDTO(h domain.Hotel) hotelDTO {
	pics := make([]pictureDTO, 0, len(h.Pictures))
	for _, p := range h.Pictures {
		pics = append(pics, pictureDTO{
			ID:        p.ID,
			HotelID:   p.HotelID,
			Filepath:  p.Filepath,
			Filesize:  p.Filesize,
			Position:  p.Position,
			CreatedAt: p.CreatedAt.UTC(),
			UpdatedAt: p.UpdatedAt.UTC(),
		})
	}
	return hotelDTO{
		ID:            h.ID,
		Name:          h.Name,
		Address1:      h.Address1,
		Address2:      h.Address2,
		Zipcode:       h.Zipcode,
		City:          h.City,
		Country:       h.Country,
		Lat:           h.Lat,
		Lng:           h.Lng,
		Description:   h.Description,
		MaxCapacity:   h.MaxCapacity,
		PricePerNight: h.PricePerNight,
		CreatedAt:     h.CreatedAt.UTC(),
		UpdatedAt:     h.UpdatedAt.UTC(),
		Pictures:      pics,
	}
}

func toListDTO(p domain.HotelsPage) listDTO {
	data := make([]hotelDTO, 0, len(p.Items))
	for _, h := range p.Items {
		data = append(data, toHotelDTO(h))
	}
	return listDTO{
		Data: data,
		Meta: metaDTO{
			CurrentPage: p.Meta.CurrentPage,
			LastPage:    p.Meta.LastPage,
			PerPage:     p.Meta.PerPage,
			Total:       p.Meta.Total,
		},
	}
}

func toPictureErrors(errs []domain.PictureError) []pictureErrorDTO {
	if len(errs) == 0 {
		return nil
	}
	out := make([]pictureErrorDTO, 0, len(errs))
	for _, e := range errs {
		out = append(out, pictureErrorDTO{PictureID: e.PictureID, Op: e.Op, Error: e.Err.Error()})
	}
	return out
}
