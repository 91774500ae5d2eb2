package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tracklayout/pkg/core/layout"
	errs "github.com/matzehuels/tracklayout/pkg/errors"
)

// Track is the content of a track file.
type Track struct {
	CanvasWidth float64       `json:"canvas_width" toml:"canvas_width"`
	Items       []layout.Item `json:"items" toml:"items"`
}

// Canvas returns the track's canvas.
func (t *Track) Canvas() layout.Canvas { return layout.Canvas{Width: t.CanvasWidth} }

// Format is a track file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) (Format, error) {
	if path == "-" {
		return FormatJSON, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "unsupported track file %q (want .json or .toml)", path)
}

// ReadJSON decodes a JSON track from r. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Track, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var t Track
	if err := dec.Decode(&t); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode json track")
	}
	return &t, nil
}

// ReadTOML decodes a TOML track from r. ReadTOML does not close r.
func ReadTOML(r io.Reader) (*Track, error) {
	var t Track
	md, err := toml.NewDecoder(r).Decode(&t)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode toml track")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unknown keys in toml track: %v", undecoded)
	}
	return &t, nil
}

// Read decodes a track in format f.
func Read(r io.Reader, f Format) (*Track, error) {
	switch f {
	case FormatJSON:
		return ReadJSON(r)
	case FormatTOML:
		return ReadTOML(r)
	}
	return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported format %q", f)
}

// ImportFile reads the track file at path; "-" reads JSON from stdin.
func ImportFile(path string) (*Track, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if path == "-" {
		return Read(os.Stdin, f)
	}
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	t, err := Read(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteJSON encodes t as indented JSON.
func WriteJSON(t *Track, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteTOML encodes t as TOML.
func WriteTOML(t *Track, w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(t); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportFile writes t to path in the format implied by its extension.
func ExportFile(t *Track, path string) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch f {
	case FormatTOML:
		err = WriteTOML(t, &buf)
	default:
		err = WriteJSON(t, &buf)
	}
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = os.Stdout.Write(buf.Bytes())
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
