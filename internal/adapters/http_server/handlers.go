// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_listings/internal/app"
	"hotel_listings/internal/domain"
)

type Handlers struct {
	Hotels    *app.HotelService
	Q         *app.QueryService
	MaxUpload int64 // bytes, 0 = unbounded
	WriteRPS  int
}

const (
	kindNotFound       = "not_found"
	kindValidation     = "validation_failed"
	kindStorageFailure = "storage_failure"
	kindBadRequest     = "bad_request"
	kindRateLimited    = "rate_limited"
)

type problem struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Kind   string              `json:"kind"`
	Errors map[string][]string `json:"errors,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/api/hotels", func(r chi.Router) {
		r.Get("/", h.listHotels)
		r.Get("/{id}", h.getHotel)
		r.Group(func(r chi.Router) {
			r.Use(RateLimit(h.WriteRPS), MaxBody(h.MaxUpload))
			r.Post("/", h.createHotel)
			r.Post("/{id}", h.updateHotel) // _method=PATCH
			r.Patch("/{id}", h.updateHotel)
			r.Delete("/{id}", h.deleteHotel)
		})
	})
}

func writeProblem(w http.ResponseWriter, status int, kind, title, detail string, fields map[string][]string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	p := problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Kind: kind, Errors: fields}
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// fail maps service errors onto problem responses.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeProblem(w, http.StatusUnprocessableEntity, kindValidation, "Unprocessable Entity", "The given data was invalid.", ve.Fields)
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, kindNotFound, "Not Found", "Hotel not found", nil)
	case errors.Is(err, errBadRequest):
		writeProblem(w, http.StatusBadRequest, kindBadRequest, "Bad Request", err.Error(), nil)
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, kindStorageFailure, "Internal Server Error", "An internal error occurred.", nil)
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func hotelID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := hotelID(r)
	if !ok {
		fail(w, r, domain.ErrNotFound)
		return
	}
	hotel, err := h.Q.GetHotel(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}

	etag, body := calcETagAndBody(toHotelDTO(hotel))
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getHotel body")
	}
}

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	qv := r.URL.Query()
	v := &domain.ValidationError{}
	q := domain.HotelsQuery{Page: 1, PerPage: h.Q.DefaultPerPage()}

	intParam := func(key string, dst *int) {
		s := strings.TrimSpace(qv.Get(key))
		if s == "" {
			return
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			v.Add(key, "The "+label(key)+" must be an integer.")
			return
		}
		*dst = n
	}
	intParam("per_page", &q.PerPage)
	intParam("page", &q.Page)

	if s := strings.TrimSpace(qv.Get("name")); s != "" {
		q.Name = &s
	}
	if s := strings.TrimSpace(qv.Get("city")); s != "" {
		q.City = &s
	}
	q.Sort = domain.SortField(strings.TrimSpace(qv.Get("sort")))
	switch strings.ToLower(strings.TrimSpace(qv.Get("order"))) {
	case "", "asc":
	case "desc":
		q.Desc = true
	default:
		v.Add("order", "The selected order is invalid.")
	}
	if err := v.Err(); err != nil {
		fail(w, r, err)
		return
	}

	page, err := h.Q.ListHotels(r.Context(), q)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toListDTO(page))
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		fail(w, r, err)
		return
	}
	defer cleanupForm(r)

	form, v := decodeHotelForm(r)
	if err := v.Err(); err != nil {
		fail(w, r, err)
		return
	}
	hotel, err := h.Hotels.Create(r.Context(), form.Input, form.Pictures.NewFiles)
	if err != nil {
		fail(w, r, err)
		return
	}
	dto := toHotelDTO(hotel)
	writeJSON(w, http.StatusCreated, mutationDTO{Message: "Hotel created successfully", Hotel: &dto})
}

func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := hotelID(r)
	if !ok {
		fail(w, r, domain.ErrNotFound)
		return
	}
	if err := parseForm(r); err != nil {
		fail(w, r, err)
		return
	}
	defer cleanupForm(r)

	form, v := decodeHotelForm(r)
	if r.Method == http.MethodPost && form.Method != http.MethodPatch && form.Method != http.MethodPut {
		writeProblem(w, http.StatusMethodNotAllowed, kindBadRequest, "Method Not Allowed", "POST on a hotel requires _method=PATCH", nil)
		return
	}
	if err := v.Err(); err != nil {
		// an unknown hotel is reported before malformed input
		if _, gerr := h.Q.GetHotel(r.Context(), id); errors.Is(gerr, domain.ErrNotFound) {
			fail(w, r, gerr)
			return
		}
		fail(w, r, err)
		return
	}

	res, err := h.Hotels.Update(r.Context(), id, form.Input, form.Pictures)
	if err != nil {
		fail(w, r, err)
		return
	}
	dto := toHotelDTO(res.Hotel)
	writeJSON(w, http.StatusOK, mutationDTO{
		Message:       "Hotel updated successfully",
		Hotel:         &dto,
		PictureErrors: toPictureErrors(res.PictureErrors),
	})
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := hotelID(r)
	if !ok {
		fail(w, r, domain.ErrNotFound)
		return
	}
	if err := h.Hotels.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mutationDTO{Message: "Hotel deleted successfully"})
}

func cleanupForm(r *http.Request) {
	if r.MultipartForm == nil {
		return
	}
	if err := r.MultipartForm.RemoveAll(); err != nil {
		log.Warn().Err(err).Msg("remove multipart temp files failed")
	}
}
