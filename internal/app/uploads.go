package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"hotel_listings/internal/adapters/observability"
	"hotel_listings/internal/domain"
)

const (
	MaxPictureBytes = 5 << 20 // 5 MiB
	MinPictureSide  = 100
	PicturesDir     = "hotels"

	storeAttempts = 3
)

// sniffed content type -> stored extension
var pictureTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Candidate is an upload that passed every rule and is ready to be stored.
type Candidate struct {
	Index       int
	Upload      domain.Upload
	ContentType string
	Ext         string
	Width       int
	Height      int
}

type Uploader struct {
	files    domain.FileStore
	dir      string
	maxBytes int64
	minSide  int
	newName  func() string
}

func NewUploader(files domain.FileStore) *Uploader {
	return &Uploader{
		files:    files,
		dir:      PicturesDir,
		maxBytes: MaxPictureBytes,
		minSide:  MinPictureSide,
		newName:  uuid.NewString,
	}
}

// Check validates one upload: size ceiling, sniffed type allow-list, then decodable
// with minimum dimensions.
func (u *Uploader) Check(index int, up domain.Upload) (Candidate, *domain.UploadError) {
	reject := func(rule domain.UploadRule, msg string) (Candidate, *domain.UploadError) {
		observability.ObserveRejection(string(rule))
		return Candidate{}, &domain.UploadError{Index: index, Rule: rule, Message: msg}
	}

	if up.Size > u.maxBytes {
		return reject(domain.RuleSize, fmt.Sprintf("Each picture may not be greater than %d kilobytes.", u.maxBytes>>10))
	}
	if up.Open == nil {
		return reject(domain.RuleImage, "A valid picture is required.")
	}
	f, err := up.Open()
	if err != nil {
		return reject(domain.RuleImage, "The picture could not be read.")
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return reject(domain.RuleImage, "The picture could not be read.")
	}
	ct := strings.TrimSpace(strings.Split(http.DetectContentType(head[:n]), ";")[0])
	ext, ok := pictureTypes[ct]
	if !ok {
		return reject(domain.RuleType, "The picture must be a file of type: jpeg, png, webp.")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return reject(domain.RuleImage, "The picture could not be read.")
	}

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return reject(domain.RuleImage, "The picture must be a valid image.")
	}
	if cfg.Width < u.minSide || cfg.Height < u.minSide {
		return reject(domain.RuleDimensions,
			fmt.Sprintf("Each picture must be at least %dx%d pixels.", u.minSide, u.minSide))
	}

	return Candidate{Index: index, Upload: up, ContentType: ct, Ext: ext, Width: cfg.Width, Height: cfg.Height}, nil
}

// CheckAll validates a batch concurrently. Any failing file makes the whole
// batch invalid; the returned *domain.ValidationError names every failing index.
func (u *Uploader) CheckAll(ctx context.Context, ups []domain.Upload) ([]Candidate, error) {
	out := make([]Candidate, len(ups))
	fails := make([]*domain.UploadError, len(ups))

	var g errgroup.Group
	g.SetLimit(4)
	for i, up := range ups {
		i, up := i, up
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i], fails[i] = u.Check(i, up)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	v := &domain.ValidationError{}
	for _, f := range fails {
		if f != nil {
			v.Add(f.Field(), f.Message)
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Store writes a checked upload under a fresh random name. A name collision is
// retried with a new name, existing files are never overwritten.
func (u *Uploader) Store(ctx context.Context, c Candidate) (domain.FileRef, error) {
	var err error
	for attempt := 0; attempt < storeAttempts; attempt++ {
		path := u.dir + "/" + u.newName() + c.Ext
		err = u.put(ctx, path, c)
		observability.ObservePicture("store", err)
		if errors.Is(err, domain.ErrFileExists) {
			log.Warn().Str("path", path).Msg("picture name collision, retrying")
			continue
		}
		if err != nil {
			return domain.FileRef{}, fmt.Errorf("%w: store picture %d: %v", domain.ErrStorage, c.Index, err)
		}
		return domain.FileRef{Path: path, Size: c.Upload.Size}, nil
	}
	return domain.FileRef{}, fmt.Errorf("%w: store picture %d: %v", domain.ErrStorage, c.Index, err)
}

// Discard removes files that never got a record. Failures only leave orphans
// behind, so they are logged and not returned.
func (u *Uploader) Discard(ctx context.Context, refs ...domain.FileRef) {
	for _, r := range refs {
		err := u.files.Delete(ctx, r.Path)
		observability.ObservePicture("cleanup", err)
		if err != nil {
			log.Warn().Err(err).Str("path", r.Path).Msg("orphan picture cleanup failed")
		}
	}
}

func (u *Uploader) put(ctx context.Context, path string, c Candidate) error {
	f, err := c.Upload.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	return u.files.Put(ctx, path, f, c.Upload.Size, c.ContentType)
}
