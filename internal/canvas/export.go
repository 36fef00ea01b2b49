package canvas

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

var (
	// ErrIOFailure wraps any failure to write an exported image to its destination.
	ErrIOFailure = errors.New("canvas: export failed")
	// ErrUnknownFormat is returned for an export format that is not supported.
	ErrUnknownFormat = errors.New("canvas: unknown image format")
)

// Format is a lossless raster encoding.
type Format string

const (
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// ParseFormat accepts a format name or extension, case-insensitively. Empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "", "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Extension returns the file extension written for f, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// NormalizePath appends the format's extension if path does not already carry it.
func NormalizePath(path string, f Format) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == f.Extension() || (f == TIFF && ext == ".tif") {
		return path
	}
	return path + f.Extension()
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Export encodes the surface and writes it to path, normalising the extension first.
// It returns the path actually written. The image is written to a temporary file
// beside the destination and renamed over it, so a failed export leaves whatever
// was at path untouched. The surface itself is only read.
func (s *Surface) Export(path string, f Format) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, s.img, f); err != nil {
		return "", err
	}

	path = NormalizePath(path, f)
	if err := writeReplace(path, buf.Bytes()); err != nil {
		return "", fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return path, nil
}

func writeReplace(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	// Only the temporary file is ever removed.
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
