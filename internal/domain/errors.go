package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrFileExists = errors.New("file already exists")
	ErrStorage    = errors.New("storage failure")
)

// ValidationError maps a field name to the messages it failed with.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Merge(o *ValidationError) {
	if o == nil {
		return
	}
	for f, msgs := range o.Fields {
		for _, m := range msgs {
			e.Add(f, m)
		}
	}
}

func (e *ValidationError) Empty() bool { return e == nil || len(e.Fields) == 0 }

// Err returns nil when nothing was recorded, so callers can `return v.Err()`.
func (e *ValidationError) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

type UploadRule string

const (
	RuleType       UploadRule = "type"
	RuleSize       UploadRule = "size"
	RuleDimensions UploadRule = "dimensions"
	RuleImage      UploadRule = "image"
)

// UploadError names the rule a submitted file broke and its index in the batch.
type UploadError struct {
	Index   int
	Rule    UploadRule
	Message string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("pictures.%d: %s", e.Index, e.Message)
}

// Field is the validation key for this file.
func (e *UploadError) Field() string { return fmt.Sprintf("pictures.%d", e.Index) }

// PictureError is one failed item of a best-effort gallery reconciliation.
type PictureError struct {
	PictureID int64
	Op        string
	Err       error
}

func (e PictureError) Error() string {
	return fmt.Sprintf("picture %d: %s: %v", e.PictureID, e.Op, e.Err)
}

func (e PictureError) Unwrap() error { return e.Err }
