package app

import (
	"fmt"
	"math"
	"unicode/utf8"

	"hotel_listings/internal/domain"
)

const (
	MaxCapacity         = 1000
	MaxPrice            = 999999.99
	MaxPictures         = 20
	MinPicturesOnCreate = 1
	// fits hotels_pictures.position and leaves room to append after it
	MaxPosition = math.MaxInt32 - MaxPictures
)

type strRule struct {
	field    string
	min, max int
	nullable bool
}

var (
	ruleName        = strRule{field: "name", min: 3, max: 255}
	ruleAddress1    = strRule{field: "address1", min: 5, max: 500}
	ruleAddress2    = strRule{field: "address2", min: 0, max: 500, nullable: true}
	ruleZipcode     = strRule{field: "zipcode", min: 2, max: 20}
	ruleCity        = strRule{field: "city", min: 2, max: 100}
	ruleCountry     = strRule{field: "country", min: 2, max: 100}
	ruleDescription = strRule{field: "description", min: 10, max: 5000}
)

// ValidateInput checks field constraints. With requireAll every non-nullable
// field must be present (create); otherwise absent fields are skipped (update).
func ValidateInput(in domain.HotelInput, requireAll bool) *domain.ValidationError {
	v := &domain.ValidationError{}

	checkStr(v, ruleName, in.Name, requireAll)
	checkStr(v, ruleAddress1, in.Address1, requireAll)
	checkStr(v, ruleAddress2, in.Address2, false)
	checkStr(v, ruleZipcode, in.Zipcode, requireAll)
	checkStr(v, ruleCity, in.City, requireAll)
	checkStr(v, ruleCountry, in.Country, requireAll)
	checkStr(v, ruleDescription, in.Description, requireAll)

	checkFloat(v, "lat", in.Lat, -90, 90, requireAll, "The lat must be between -90 and 90.")
	checkFloat(v, "lng", in.Lng, -180, 180, requireAll, "The lng must be between -180 and 180.")
	checkFloat(v, "price_per_night", in.PricePerNight, 0, MaxPrice, requireAll,
		fmt.Sprintf("The price per night must be between 0 and %.2f.", MaxPrice))

	switch {
	case !in.MaxCapacity.Set:
		if requireAll {
			v.Add("max_capacity", "The max capacity field is required.")
		}
	case in.MaxCapacity.Null:
		v.Add("max_capacity", "The max capacity field may not be null.")
	case in.MaxCapacity.Value < 1 || in.MaxCapacity.Value > MaxCapacity:
		v.Add("max_capacity", fmt.Sprintf("The max capacity must be between 1 and %d.", MaxCapacity))
	}
	return v
}

// ValidatePictureRequest checks the shape of an update's gallery instructions.
// Ownership of the referenced ids is not checked here.
func ValidatePictureRequest(req domain.PictureRequest) *domain.ValidationError {
	v := &domain.ValidationError{}
	if len(req.Keep) > MaxPictures {
		v.Add("existing_pictures", fmt.Sprintf("No more than %d pictures are allowed.", MaxPictures))
	}
	for i, k := range req.Keep {
		if k.ID <= 0 {
			v.Add(fmt.Sprintf("existing_pictures.%d.id", i), "The picture id must be a positive integer.")
		}
		if k.Position < 0 || k.Position > MaxPosition {
			v.Add(fmt.Sprintf("existing_pictures.%d.position", i), fmt.Sprintf("The position must be between 0 and %d.", MaxPosition))
		}
	}
	for i, id := range req.Remove {
		if id <= 0 {
			v.Add(fmt.Sprintf("deleted_pictures.%d", i), "The picture id must be a positive integer.")
		}
	}
	if len(req.NewFiles) > MaxPictures {
		v.Add("pictures", fmt.Sprintf("No more than %d pictures may be uploaded.", MaxPictures))
	}
	return v
}

func checkStr(v *domain.ValidationError, r strRule, o domain.Optional[string], required bool) {
	label := humanize(r.field)
	switch {
	case !o.Set:
		if required {
			v.Add(r.field, fmt.Sprintf("The %s field is required.", label))
		}
		return
	case o.Null:
		if !r.nullable {
			v.Add(r.field, fmt.Sprintf("The %s field may not be null.", label))
		}
		return
	}
	n := utf8.RuneCountInString(o.Value)
	if n < r.min {
		v.Add(r.field, fmt.Sprintf("The %s must be at least %d characters.", label, r.min))
	}
	if n > r.max {
		v.Add(r.field, fmt.Sprintf("The %s may not be greater than %d characters.", label, r.max))
	}
}

func checkFloat(v *domain.ValidationError, field string, o domain.Optional[float64], lo, hi float64, required bool, rangeMsg string) {
	label := humanize(field)
	switch {
	case !o.Set:
		if required {
			v.Add(field, fmt.Sprintf("The %s field is required.", label))
		}
	case o.Null:
		v.Add(field, fmt.Sprintf("The %s field may not be null.", label))
	case math.IsNaN(o.Value) || math.IsInf(o.Value, 0):
		v.Add(field, fmt.Sprintf("The %s must be a number.", label))
	case o.Value < lo || o.Value > hi:
		v.Add(field, rangeMsg)
	}
}

func humanize(field string) string {
	b := []byte(field)
	for i := range b {
		if b[i] == '_' {
			b[i] = ' '
		}
	}
	return string(b)
}

// normalizeInput rounds the price to cents.
func normalizeInput(in domain.HotelInput) domain.HotelInput {
	if in.PricePerNight.Set && !in.PricePerNight.Null {
		in.PricePerNight.Value = math.Round(in.PricePerNight.Value*100) / 100
	}
	return in
}
