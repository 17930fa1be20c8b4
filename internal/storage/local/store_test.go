package local_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hotel_listings/internal/domain"
	"hotel_listings/internal/storage/local"
)

func TestStore_PutNeverOverwrites(t *testing.T) {
	st, err := local.New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if err := st.Put(ctx, "hotels/a.png", strings.NewReader("first"), 5, "image/png"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	err = st.Put(ctx, "hotels/a.png", strings.NewReader("second"), 6, "image/png")
	if !errors.Is(err, domain.ErrFileExists) {
		t.Fatalf("want ErrFileExists, got %v", err)
	}
	b, err := os.ReadFile(filepath.Join(st.Root(), "hotels", "a.png"))
	if err != nil || string(b) != "first" {
		t.Fatalf("file was replaced: %q %v", b, err)
	}
}

func TestStore_DeleteToleratesMissing(t *testing.T) {
	st, err := local.New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if err := st.Put(ctx, "hotels/b.webp", strings.NewReader("x"), 1, "image/webp"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := st.Delete(ctx, "hotels/b.webp"); err != nil {
			t.Fatalf("Delete #%d: %v", i+1, err)
		}
	}
	ok, err := st.Exists(ctx, "hotels/b.webp")
	if err != nil || ok {
		t.Fatalf("Exists after delete: %v %v", ok, err)
	}
}

func TestValidPath(t *testing.T) {
	cases := map[string]bool{
		"hotels/0b7c.jpg":  true,
		"":                 false,
		"/etc/passwd":      false,
		"hotels/../x.png":  false,
		"hotels/a b.png":   false,
		"hotels/ünï.png":   false,
		"hotels/a-b_c.png": true,
	}
	for in, want := range cases {
		if got := local.ValidPath(in); got != want {
			t.Errorf("ValidPath(%q) = %v, want %v", in, got, want)
		}
	}
}
