// Package frame loads the decorative PNG overlays composited over captured photos.
package frame

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrNotFound is returned when a frame file does not exist.
var ErrNotFound = errors.New("frame not found")

// Frame is an RGBA overlay. Its natural size is the size of every photo composed with it.
type Frame struct {
	Path  string
	Name  string
	Image *image.NRGBA
}

// Size returns the natural width and height of the frame.
func (f *Frame) Size() (int, int) {
	b := f.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Load decodes the frame at path into NRGBA.
func Load(path string) (*Frame, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat frame %s: %w", path, err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decoding frame %s: %w", path, err)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("frame %s is empty", path)
	}

	return &Frame{
		Path:  path,
		Name:  NameOf(path),
		Image: imaging.Clone(img),
	}, nil
}

// NameOf returns the display name of a frame file: its base name without extension.
func NameOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
