package edit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var ErrInvalidRaw = errors.New("invalid raw text")

// RawText is the free-form JSON editing mode for one collection. Text is what
// the operator typed; Valid reports whether it last parsed.
type RawText[T any] struct {
	Text  string
	Valid bool
}

// NewRawText starts the editor from the committed value.
func NewRawText[T any](v T) (RawText[T], error) {
	text, err := FormatRaw(v)
	if err != nil {
		return RawText[T]{}, err
	}
	return RawText[T]{Text: text, Valid: true}, nil
}

// Change records text and parses it. The parsed value is only meaningful when
// the returned error is nil; on error the caller keeps its committed value.
func (r *RawText[T]) Change(text string) (T, error) {
	r.Text = text
	v, err := ParseRaw[T](text)
	r.Valid = err == nil
	return v, err
}

// ParseRaw decodes exactly one JSON value of shape T, rejecting unknown fields.
func ParseRaw[T any](text string) (T, error) {
	var v T
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrInvalidRaw, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var zero T
		return zero, fmt.Errorf("%w: trailing data", ErrInvalidRaw)
	}
	return v, nil
}

func FormatRaw[T any](v T) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
