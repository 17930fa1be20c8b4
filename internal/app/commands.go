package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"hotel_listings/internal/adapters/observability"
	"hotel_listings/internal/domain"
)

type HotelService struct {
	repo  domain.HotelRepository
	files domain.FileStore
	cache domain.Cache
	up    *Uploader
	rec   *Reconciler
}

func NewHotelService(r domain.HotelRepository, f domain.FileStore, cache domain.Cache) *HotelService {
	up := NewUploader(f)
	return &HotelService{repo: r, files: f, cache: cache, up: up, rec: NewReconciler(r, f, up)}
}

// UpdateResult is the re-read hotel plus any picture removals that failed.
type UpdateResult struct {
	Hotel         domain.Hotel
	PictureErrors []domain.PictureError
}

// Create validates everything up front, stores the files, then inserts the
// hotel and its gallery in one repository call. When that call fails the
// stored files are deleted again, so a failed create leaves nothing behind.
func (s *HotelService) Create(ctx context.Context, in domain.HotelInput, files []domain.Upload) (domain.Hotel, error) {
	in = normalizeInput(in)
	v := ValidateInput(in, true)
	switch {
	case len(files) < MinPicturesOnCreate:
		v.Add("pictures", "At least one picture is required.")
	case len(files) > MaxPictures:
		v.Add("pictures", fmt.Sprintf("No more than %d pictures may be uploaded.", MaxPictures))
	}
	if err := v.Err(); err != nil {
		return domain.Hotel{}, err
	}
	cands, err := s.up.CheckAll(ctx, files)
	if err != nil {
		return domain.Hotel{}, err
	}

	refs := make([]domain.FileRef, 0, len(cands))
	for _, c := range cands {
		ref, err := s.up.Store(ctx, c)
		if err != nil {
			s.up.Discard(ctx, refs...)
			return domain.Hotel{}, err
		}
		refs = append(refs, ref)
	}

	id, err := s.repo.CreateHotel(ctx, in.Fields(), InitialPositions(refs))
	if err != nil {
		s.up.Discard(ctx, refs...)
		return domain.Hotel{}, fmt.Errorf("%w: create hotel: %v", domain.ErrStorage, err)
	}
	log.Info().Int64("hotel_id", id).Int("pictures", len(refs)).Msg("hotel created")

	return s.repo.GetHotel(ctx, id)
}

// Update applies the submitted fields, then reconciles the gallery.
func (s *HotelService) Update(ctx context.Context, id int64, in domain.HotelInput, req domain.PictureRequest) (UpdateResult, error) {
	h, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		return UpdateResult{}, err
	}

	in = normalizeInput(in)
	v := ValidateInput(in, false)
	v.Merge(ValidatePictureRequest(req))
	if err := v.Err(); err != nil {
		return UpdateResult{}, err
	}
	cands, err := s.up.CheckAll(ctx, req.NewFiles)
	if err != nil {
		return UpdateResult{}, err
	}

	defer s.invalidateHotel(ctx, id)

	if !in.Empty() {
		if err := s.repo.UpdateHotel(ctx, id, in); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return UpdateResult{}, err
			}
			return UpdateResult{}, fmt.Errorf("%w: update hotel %d: %v", domain.ErrStorage, id, err)
		}
	}

	var picErrs []domain.PictureError
	if !req.Empty() {
		res, err := s.rec.Reconcile(ctx, id, h.Pictures, Reconciliation{Keep: req.Keep, Remove: req.Remove, New: cands})
		if err != nil {
			return UpdateResult{PictureErrors: res.Errors}, err
		}
		picErrs = res.Errors
	}

	fresh, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		return UpdateResult{PictureErrors: picErrs}, err
	}
	return UpdateResult{Hotel: fresh, PictureErrors: picErrs}, nil
}

// Delete removes every picture file, then the picture rows and the hotel row.
// A file that is already gone counts as deleted. If a file cannot be deleted
// no row is touched, so the call can simply be retried.
func (s *HotelService) Delete(ctx context.Context, id int64) error {
	h, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		return err
	}
	defer s.invalidateHotel(ctx, id)

	for _, p := range h.Pictures {
		err := s.files.Delete(ctx, p.Filepath)
		observability.ObservePicture("delete", err)
		if err != nil {
			return fmt.Errorf("%w: delete picture file %s: %v", domain.ErrStorage, p.Filepath, err)
		}
	}
	if err := s.repo.DeleteHotel(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: delete hotel %d: %v", domain.ErrStorage, id, err)
	}
	log.Info().Int64("hotel_id", id).Int("pictures", len(h.Pictures)).Msg("hotel deleted")
	return nil
}

func (s *HotelService) invalidateHotel(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, hotelKey(id)); err != nil {
		log.Warn().Err(err).Int64("hotel_id", id).Msg("cache eviction failed")
	}
}

func hotelKey(id int64) string { return fmt.Sprintf("hotel:%d", id) }
