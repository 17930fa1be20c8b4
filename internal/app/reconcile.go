package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"hotel_listings/internal/adapters/observability"
	"hotel_listings/internal/domain"
)

// Reconciliation is a validated gallery change: files in New already passed
// every upload rule.
type Reconciliation struct {
	Keep   []domain.PictureKeep
	Remove []int64
	New    []Candidate
}

type ReconcileResult struct {
	Pictures []domain.Picture // re-read, ascending by position
	Errors   []domain.PictureError
}

// Reconciler applies a gallery change to one hotel in a fixed order:
// remove, reposition, insert, renumber.
//
// New files are numbered after the highest position that survives the first
// two steps. The closing renumber pass rewrites the gallery to 0..N-1 ordered
// by (position, id), so positions are unique and contiguous after every call.
//
// Ids in Keep or Remove that the hotel does not own are ignored.
type Reconciler struct {
	repo  domain.HotelRepository
	files domain.FileStore
	up    *Uploader
}

func NewReconciler(r domain.HotelRepository, f domain.FileStore, up *Uploader) *Reconciler {
	return &Reconciler{repo: r, files: f, up: up}
}

func (r *Reconciler) Reconcile(ctx context.Context, hotelID int64, current []domain.Picture, req Reconciliation) (ReconcileResult, error) {
	owned := make(map[int64]*domain.Picture, len(current))
	for i := range current {
		p := current[i]
		owned[p.ID] = &p
	}

	// 1) removals are best-effort; one failure does not stop the others
	errs := r.remove(ctx, hotelID, owned, req.Remove)

	// 2) repositions, last write wins for duplicate ids
	for _, k := range req.Keep {
		p, ok := owned[k.ID]
		if !ok || p.Position == k.Position {
			continue
		}
		err := r.repo.SetPicturePosition(ctx, hotelID, k.ID, k.Position)
		observability.ObservePicture("reposition", err)
		if err != nil {
			return ReconcileResult{Errors: errs}, fmt.Errorf("%w: reposition picture %d: %v", domain.ErrStorage, k.ID, err)
		}
		p.Position = k.Position
	}

	// 3) inserts, in submission order
	next := nextPosition(owned)
	for _, c := range req.New {
		ref, err := r.up.Store(ctx, c)
		if err != nil {
			return ReconcileResult{Errors: errs}, err
		}
		pic, err := r.repo.AddPicture(ctx, hotelID, domain.NewPicture{Filepath: ref.Path, Filesize: ref.Size, Position: next})
		if err != nil {
			r.up.Discard(ctx, ref)
			return ReconcileResult{Errors: errs}, fmt.Errorf("%w: add picture %d: %v", domain.ErrStorage, c.Index, err)
		}
		owned[pic.ID] = &pic
		next++
	}

	// 4) contiguous renumbering
	if err := r.renumber(ctx, hotelID, owned); err != nil {
		return ReconcileResult{Errors: errs}, err
	}

	pics, err := r.repo.ListPictures(ctx, hotelID)
	if err != nil {
		return ReconcileResult{Errors: errs}, err
	}
	return ReconcileResult{Pictures: pics, Errors: errs}, nil
}

func (r *Reconciler) remove(ctx context.Context, hotelID int64, owned map[int64]*domain.Picture, ids []int64) []domain.PictureError {
	var errs []domain.PictureError
	for _, id := range ids {
		p, ok := owned[id]
		if !ok {
			continue
		}
		err := r.files.Delete(ctx, p.Filepath)
		observability.ObservePicture("delete", err)
		if err != nil {
			log.Warn().Err(err).Int64("hotel_id", hotelID).Int64("picture_id", id).Msg("picture file delete failed")
			errs = append(errs, domain.PictureError{PictureID: id, Op: "delete_file", Err: err})
			continue
		}
		if err := r.repo.DeletePicture(ctx, hotelID, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			log.Warn().Err(err).Int64("hotel_id", hotelID).Int64("picture_id", id).Msg("picture record delete failed")
			errs = append(errs, domain.PictureError{PictureID: id, Op: "delete_record", Err: err})
			continue
		}
		delete(owned, id)
	}
	return errs
}

func (r *Reconciler) renumber(ctx context.Context, hotelID int64, owned map[int64]*domain.Picture) error {
	for i, p := range ordered(owned) {
		if p.Position == i {
			continue
		}
		err := r.repo.SetPicturePosition(ctx, hotelID, p.ID, i)
		observability.ObservePicture("renumber", err)
		if err != nil {
			return fmt.Errorf("%w: renumber picture %d: %v", domain.ErrStorage, p.ID, err)
		}
		p.Position = i
	}
	return nil
}

// InitialPositions numbers a fresh gallery by submission index, 0-based.
func InitialPositions(refs []domain.FileRef) []domain.NewPicture {
	out := make([]domain.NewPicture, len(refs))
	for i, ref := range refs {
		out[i] = domain.NewPicture{Filepath: ref.Path, Filesize: ref.Size, Position: i}
	}
	return out
}

func nextPosition(owned map[int64]*domain.Picture) int {
	if len(owned) == 0 {
		return 0
	}
	max := -1
	for _, p := range owned {
		if p.Position > max {
			max = p.Position
		}
	}
	return max + 1
}

func ordered(owned map[int64]*domain.Picture) []*domain.Picture {
	out := make([]*domain.Picture, 0, len(owned))
	for _, p := range owned {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}
