package httpserver

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"hotel_listings/internal/domain"
)

// in-memory part of a multipart body; the rest spills to temp files
const formMemory = 8 << 20

var existingKey = regexp.MustCompile(`^existing_pictures\[(\d+)\]\[(id|position)\]$`)

type hotelForm struct {
	Input    domain.HotelInput
	Pictures domain.PictureRequest
	Method   string
}

// parseForm accepts multipart and urlencoded bodies. An oversized body is
// reported as a validation error on "pictures".
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(formMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		v := &domain.ValidationError{}
		v.Add("pictures", fmt.Sprintf("The request body may not exceed %d bytes.", tooBig.Limit))
		return v
	}
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

var errBadRequest = errors.New("malformed request body")

// decodeHotelForm reads scalar fields and picture instructions from a parsed
// request. Absent keys stay absent; a present empty value becomes null.
func decodeHotelForm(r *http.Request) (hotelForm, *domain.ValidationError) {
	var (
		out hotelForm
		v   = &domain.ValidationError{}
		fv  = r.PostForm
	)

	str := func(key string) domain.Optional[string] {
		vals, ok := fv[key]
		if !ok || len(vals) == 0 {
			return domain.Optional[string]{}
		}
		s := strings.TrimSpace(vals[0])
		if s == "" {
			return domain.Null[string]()
		}
		return domain.Some(s)
	}
	num := func(key string) domain.Optional[float64] {
		o := str(key)
		if !o.Set || o.Null {
			return domain.Optional[float64]{Set: o.Set, Null: o.Null}
		}
		f, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			v.Add(key, fmt.Sprintf("The %s field must be a number.", label(key)))
			return domain.Optional[float64]{}
		}
		return domain.Some(f)
	}
	integer := func(key string) domain.Optional[int] {
		o := str(key)
		if !o.Set || o.Null {
			return domain.Optional[int]{Set: o.Set, Null: o.Null}
		}
		n, err := strconv.Atoi(o.Value)
		if err != nil {
			v.Add(key, fmt.Sprintf("The %s field must be an integer.", label(key)))
			return domain.Optional[int]{}
		}
		return domain.Some(n)
	}

	out.Input = domain.HotelInput{
		Name:          str("name"),
		Address1:      str("address1"),
		Address2:      str("address2"),
		Zipcode:       str("zipcode"),
		City:          str("city"),
		Country:       str("country"),
		Lat:           num("lat"),
		Lng:           num("lng"),
		Description:   str("description"),
		MaxCapacity:   integer("max_capacity"),
		PricePerNight: num("price_per_night"),
	}
	out.Method = strings.ToUpper(strings.TrimSpace(fv.Get("_method")))

	out.Pictures.NewFiles = uploads(r.MultipartForm)
	out.Pictures.Keep = decodeKeep(fv, v)
	for _, key := range []string{"deleted_pictures[]", "deleted_pictures"} {
		for i, raw := range fv[key] {
			id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				v.Add(fmt.Sprintf("deleted_pictures.%d", i), "The picture id to delete must be an integer.")
				continue
			}
			out.Pictures.Remove = append(out.Pictures.Remove, id)
		}
	}
	return out, v
}

func decodeKeep(fv map[string][]string, v *domain.ValidationError) []domain.PictureKeep {
	type entry struct{ id, pos *string }
	entries := map[int]*entry{}
	for key, vals := range fv {
		m := existingKey.FindStringSubmatch(key)
		if m == nil || len(vals) == 0 {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			v.Add(fmt.Sprintf("existing_pictures.%s.%s", m[1], m[2]), "The picture index is out of range.")
			continue
		}
		e := entries[idx]
		if e == nil {
			e = &entry{}
			entries[idx] = e
		}
		val := strings.TrimSpace(vals[0])
		if m[2] == "id" {
			e.id = &val
		} else {
			e.pos = &val
		}
	}

	idxs := make([]int, 0, len(entries))
	for i := range entries {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)

	keep := make([]domain.PictureKeep, 0, len(idxs))
	for _, i := range idxs {
		e := entries[i]
		var k domain.PictureKeep
		ok := true
		switch {
		case e.id == nil || *e.id == "":
			v.Add(fmt.Sprintf("existing_pictures.%d.id", i), "The picture id is required.")
			ok = false
		default:
			id, err := strconv.ParseInt(*e.id, 10, 64)
			if err != nil {
				v.Add(fmt.Sprintf("existing_pictures.%d.id", i), "The picture id must be an integer.")
				ok = false
			}
			k.ID = id
		}
		switch {
		case e.pos == nil || *e.pos == "":
			v.Add(fmt.Sprintf("existing_pictures.%d.position", i), "The position is required.")
			ok = false
		default:
			p, err := strconv.Atoi(*e.pos)
			if err != nil {
				v.Add(fmt.Sprintf("existing_pictures.%d.position", i), "The position must be an integer.")
				ok = false
			}
			k.Position = p
		}
		if ok {
			keep = append(keep, k)
		}
	}
	return keep
}

func uploads(mf *multipart.Form) []domain.Upload {
	if mf == nil {
		return nil
	}
	var out []domain.Upload
	for _, key := range []string{"pictures[]", "pictures"} {
		for _, fh := range mf.File[key] {
			fh := fh
			out = append(out, domain.Upload{
				Filename: fh.Filename,
				Size:     fh.Size,
				Open: func() (io.ReadSeekCloser, error) {
					f, err := fh.Open()
					if err != nil {
						return nil, err
					}
					return f, nil
				},
			})
		}
	}
	return out
}

func label(key string) string { return strings.ReplaceAll(key, "_", " ") }
