// Package local stores picture files on the public disk served under the
// storage URL prefix.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"hotel_listings/internal/domain"
)

type Store struct {
	root string // absolute, with trailing separator
}

// New prepares root and checks that it is writable.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root %q: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root %q: %w", abs, err)
	}
	probe := filepath.Join(abs, ".write_test_"+strconv.FormatInt(time.Now().UnixNano(), 10))
	f, err := os.Create(probe)
	if err != nil {
		return nil, fmt.Errorf("storage root %q is not writable: %w", abs, err)
	}
	_ = f.Close()
	_ = os.Remove(probe)

	return &Store{root: abs + string(os.PathSeparator)}, nil
}

// Put creates the file exclusively; an existing file is never replaced.
func (s *Store) Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create directory for %q: %w", path, err)
	}
	dst, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return domain.ErrFileExists
		}
		return fmt.Errorf("create %q: %w", path, err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		_ = os.Remove(full)
		return fmt.Errorf("write %q: %w", path, err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(full)
		return fmt.Errorf("close %q: %w", path, err)
	}
	return nil
}

// Delete removes the file; a missing file is not an error.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %q: %w", path, err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	full, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) Root() string { return s.root }

// Handler serves stored files read-only.
func (s *Store) Handler() http.Handler {
	return http.FileServer(http.Dir(s.root))
}

func (s *Store) resolve(path string) (string, error) {
	if !ValidPath(path) {
		return "", fmt.Errorf("invalid storage path: %q", path)
	}
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if !strings.HasPrefix(full, s.root) {
		return "", fmt.Errorf("invalid storage path, escapes root: %q", path)
	}
	return full, nil
}

// ValidPath accepts relative slash paths made of [A-Za-z0-9._/-] without "..".
func ValidPath(path string) bool {
	if path == "" || filepath.IsAbs(path) || strings.HasPrefix(path, "/") || strings.Contains(path, "..") {
		return false
	}
	for _, r := range path {
		if (r < 'a' || r > 'z') &&
			(r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') &&
			r != '-' && r != '_' && r != '.' && r != '/' {
			return false
		}
	}
	return true
}
