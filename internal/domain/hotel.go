package domain

import "time"

type Hotel struct {
	ID            int64
	Name          string
	Address1      string
	Address2      *string
	Zipcode       string
	City          string
	Country       string
	Lat, Lng      float64
	Description   string
	MaxCapacity   int
	PricePerNight float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Pictures      []Picture // ascending by position
}

// HotelFields is the full column set written on create.
type HotelFields struct {
	Name          string
	Address1      string
	Address2      *string
	Zipcode       string
	City          string
	Country       string
	Lat, Lng      float64
	Description   string
	MaxCapacity   int
	PricePerNight float64
}

// Optional distinguishes an absent field from an explicit null and from a value.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: v} }
func Null[T any]() Optional[T]    { return Optional[T]{Set: true, Null: true} }

// HotelInput is what a client submitted for create or partial update.
type HotelInput struct {
	Name          Optional[string]
	Address1      Optional[string]
	Address2      Optional[string]
	Zipcode       Optional[string]
	City          Optional[string]
	Country       Optional[string]
	Lat           Optional[float64]
	Lng           Optional[float64]
	Description   Optional[string]
	MaxCapacity   Optional[int]
	PricePerNight Optional[float64]
}

// Empty reports whether no field was submitted.
func (in HotelInput) Empty() bool {
	return !in.Name.Set && !in.Address1.Set && !in.Address2.Set && !in.Zipcode.Set &&
		!in.City.Set && !in.Country.Set && !in.Lat.Set && !in.Lng.Set &&
		!in.Description.Set && !in.MaxCapacity.Set && !in.PricePerNight.Set
}

// Fields copies the submitted values; absent or null fields stay zero.
func (in HotelInput) Fields() HotelFields {
	f := HotelFields{
		Name:          in.Name.Value,
		Address1:      in.Address1.Value,
		Zipcode:       in.Zipcode.Value,
		City:          in.City.Value,
		Country:       in.Country.Value,
		Lat:           in.Lat.Value,
		Lng:           in.Lng.Value,
		Description:   in.Description.Value,
		MaxCapacity:   in.MaxCapacity.Value,
		PricePerNight: in.PricePerNight.Value,
	}
	if in.Address2.Set && !in.Address2.Null {
		a := in.Address2.Value
		f.Address2 = &a
	}
	return f
}

// Apply writes the submitted fields onto h. Absent fields are left untouched.
func (in HotelInput) Apply(h *Hotel) {
	setStr := func(dst *string, o Optional[string]) {
		if o.Set && !o.Null {
			*dst = o.Value
		}
	}
	setStr(&h.Name, in.Name)
	setStr(&h.Address1, in.Address1)
	setStr(&h.Zipcode, in.Zipcode)
	setStr(&h.City, in.City)
	setStr(&h.Country, in.Country)
	setStr(&h.Description, in.Description)
	if in.Address2.Set {
		if in.Address2.Null {
			h.Address2 = nil
		} else {
			a := in.Address2.Value
			h.Address2 = &a
		}
	}
	if in.Lat.Set && !in.Lat.Null {
		h.Lat = in.Lat.Value
	}
	if in.Lng.Set && !in.Lng.Null {
		h.Lng = in.Lng.Value
	}
	if in.MaxCapacity.Set && !in.MaxCapacity.Null {
		h.MaxCapacity = in.MaxCapacity.Value
	}
	if in.PricePerNight.Set && !in.PricePerNight.Null {
		h.PricePerNight = in.PricePerNight.Value
	}
}
