package app_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"sync"
	"testing"

	"hotel_listings/internal/domain"
	"hotel_listings/internal/storage/memory"
)

// ---- fakes ----

type memFiles struct {
	mu      sync.Mutex
	files   map[string][]byte
	failDel map[string]bool
	failPut bool
}

func newMemFiles() *memFiles {
	return &memFiles{files: map[string][]byte{}, failDel: map[string]bool{}}
}

func (m *memFiles) Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut {
		return errors.New("disk full")
	}
	if _, ok := m.files[path]; ok {
		return domain.ErrFileExists
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.files[path] = b
	return nil
}

func (m *memFiles) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDel[path] {
		return errors.New("permission denied")
	}
	delete(m.files, path)
	return nil
}

func (m *memFiles) has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok
}

func (m *memFiles) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

// failingRepo wraps the in-memory repo and fails selected write paths.
type failingRepo struct {
	*memory.Repo
	failCreate bool
	failAdd    bool
	gets       int
}

func (f *failingRepo) CreateHotel(ctx context.Context, h domain.HotelFields, pics []domain.NewPicture) (int64, error) {
	if f.failCreate {
		return 0, errors.New("connection reset")
	}
	return f.Repo.CreateHotel(ctx, h, pics)
}

func (f *failingRepo) AddPicture(ctx context.Context, hotelID int64, p domain.NewPicture) (domain.Picture, error) {
	if f.failAdd {
		return domain.Picture{}, errors.New("connection reset")
	}
	return f.Repo.AddPicture(ctx, hotelID, p)
}

func (f *failingRepo) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	f.gets++
	return f.Repo.GetHotel(ctx, id)
}

type fakeCache struct {
	store map[string]domain.Hotel
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	*dst.(*domain.Hotel) = v
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]domain.Hotel{}
	}
	c.store[key] = v.(domain.Hotel)
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

// ---- helpers ----

type readSeekNopCloser struct{ *bytes.Reader }

func (readSeekNopCloser) Close() error { return nil }

func uploadOf(name string, b []byte) domain.Upload {
	return domain.Upload{
		Filename: name,
		Size:     int64(len(b)),
		Open: func() (io.ReadSeekCloser, error) {
			return readSeekNopCloser{bytes.NewReader(b)}, nil
		},
	}
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png: %v", err)
	}
	return buf.Bytes()
}

func jpegImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("jpeg: %v", err)
	}
	return buf.Bytes()
}

func validInput(name, city string) domain.HotelInput {
	return domain.HotelInput{
		Name:          domain.Some(name),
		Address1:      domain.Some("12 Harbour Road"),
		Zipcode:       domain.Some("1000"),
		City:          domain.Some(city),
		Country:       domain.Some("Belgium"),
		Lat:           domain.Some(50.85),
		Lng:           domain.Some(4.35),
		Description:   domain.Some("Rooms with a view on the old harbour."),
		MaxCapacity:   domain.Some(2),
		PricePerNight: domain.Some(89.999),
	}
}

func validationFields(t *testing.T, err error) map[string][]string {
	t.Helper()
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want *domain.ValidationError, got %T: %v", err, err)
	}
	return ve.Fields
}
