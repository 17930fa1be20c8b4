package app_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"hotel_listings/internal/app"
	"hotel_listings/internal/domain"
)

func TestUploader_Check(t *testing.T) {
	u := app.NewUploader(newMemFiles())
	tests := []struct {
		name string
		data []byte
		rule domain.UploadRule
		ct   string
	}{
		{"png ok", pngImage(t, 100, 100), "", "image/png"},
		{"jpeg ok", jpegImage(t, 320, 200), "", "image/jpeg"},
		{"text", []byte("hello, this is not an image"), domain.RuleType, ""},
		{"gif", []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00"), domain.RuleType, ""},
		{"too small", pngImage(t, 99, 300), domain.RuleDimensions, ""},
		{"too large", bytes.Repeat([]byte{0xff}, app.MaxPictureBytes+1), domain.RuleSize, ""},
		{"corrupt webp", []byte("RIFF\x10\x00\x00\x00WEBPVP8 garbage-garbage"), domain.RuleImage, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, uerr := u.Check(3, uploadOf("f", tc.data))
			if tc.rule == "" {
				if uerr != nil {
					t.Fatalf("unexpected rejection: %v", uerr)
				}
				if c.ContentType != tc.ct || c.Index != 3 {
					t.Fatalf("unexpected candidate: %+v", c)
				}
				return
			}
			if uerr == nil || uerr.Rule != tc.rule {
				t.Fatalf("want rule %q, got %v", tc.rule, uerr)
			}
			if uerr.Field() != "pictures.3" {
				t.Fatalf("field = %q", uerr.Field())
			}
		})
	}
}

func TestUploader_CheckAllRejectsBatch(t *testing.T) {
	u := app.NewUploader(newMemFiles())
	_, err := u.CheckAll(context.Background(), []domain.Upload{
		uploadOf("a.png", pngImage(t, 120, 120)),
		uploadOf("b.txt", []byte("nope")),
		uploadOf("c.png", pngImage(t, 120, 120)),
		uploadOf("d.png", pngImage(t, 10, 10)),
	})
	fields := validationFields(t, err)
	if len(fields) != 2 || fields["pictures.1"] == nil || fields["pictures.3"] == nil {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestUploader_StoreUsesFreshNames(t *testing.T) {
	files := newMemFiles()
	u := app.NewUploader(files)
	cands, err := u.CheckAll(context.Background(), []domain.Upload{
		uploadOf("same.png", pngImage(t, 120, 120)),
		uploadOf("same.png", pngImage(t, 120, 120)),
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	seen := map[string]bool{}
	for _, c := range cands {
		ref, err := u.Store(context.Background(), c)
		if err != nil {
			t.Fatalf("store: %v", err)
		}
		if !strings.HasPrefix(ref.Path, app.PicturesDir+"/") || !strings.HasSuffix(ref.Path, ".png") {
			t.Fatalf("unexpected path %q", ref.Path)
		}
		if seen[ref.Path] {
			t.Fatalf("duplicate path %q", ref.Path)
		}
		seen[ref.Path] = true
		if !files.has(ref.Path) || ref.Size != c.Upload.Size {
			t.Fatalf("file not stored: %+v", ref)
		}
	}
}

func TestUploader_StoreFailureIsStorageError(t *testing.T) {
	files := newMemFiles()
	files.failPut = true
	u := app.NewUploader(files)
	c, uerr := u.Check(0, uploadOf("a.png", pngImage(t, 120, 120)))
	if uerr != nil {
		t.Fatalf("check: %v", uerr.Message)
	}
	_, err := u.Store(context.Background(), c)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("want storage error, got %v", err)
	}
}
