package domain

import (
	"io"
	"sort"
	"time"
)

type Picture struct {
	ID        int64
	HotelID   int64
	Filepath  string // relative to the public storage root
	Filesize  int64
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPicture is a row about to be inserted for an already stored file.
type NewPicture struct {
	Filepath string
	Filesize int64
	Position int
}

// FileRef points at a stored file.
type FileRef struct {
	Path string
	Size int64
}

// Upload is one submitted file. Open may be called more than once.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadSeekCloser, error)
}

// PictureKeep repositions a picture that stays in the gallery.
type PictureKeep struct {
	ID       int64
	Position int
}

// PictureRequest describes the desired end state of a gallery on update.
type PictureRequest struct {
	Keep     []PictureKeep
	Remove   []int64
	NewFiles []Upload
}

func (r PictureRequest) Empty() bool {
	return len(r.Keep) == 0 && len(r.Remove) == 0 && len(r.NewFiles) == 0
}

// SortPictures orders a gallery ascending by position, ties by id.
func SortPictures(pics []Picture) {
	sort.SliceStable(pics, func(i, j int) bool {
		if pics[i].Position != pics[j].Position {
			return pics[i].Position < pics[j].Position
		}
		return pics[i].ID < pics[j].ID
	})
}
