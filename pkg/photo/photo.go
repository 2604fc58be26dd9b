// Package photo holds the captured image passed between camera, compositor and gallery.
package photo

import (
	"image"
	"time"
)

// TimestampLayout is the time layout used in saved photo filenames.
const TimestampLayout = "20060102_150405"

// Photo is one captured image. The compositor replaces Image in place when it bakes a
// frame in; after that the image has the frame's dimensions, not the camera's.
type Photo struct {
	ID           string
	Image        image.Image
	Timestamp    time.Time
	FramePath    string // frame requested for this photo, empty for none
	FrameApplied bool
	SessionID    string
}

// New wraps img taken now, with the frame that should be applied to it.
func New(img image.Image, framePath string) *Photo {
	return &Photo{
		Image:     img,
		Timestamp: time.Now(),
		FramePath: framePath,
	}
}

// Width returns the pixel width of the image.
func (p *Photo) Width() int {
	if p.Image == nil {
		return 0
	}
	return p.Image.Bounds().Dx()
}

// Height returns the pixel height of the image.
func (p *Photo) Height() int {
	if p.Image == nil {
		return 0
	}
	return p.Image.Bounds().Dy()
}

// Filename returns the name the photo is saved under, e.g. photo_20261019_150405.jpg.
func (p *Photo) Filename() string {
	return "photo_" + p.Timestamp.Format(TimestampLayout) + ".jpg"
}

// ToRGB returns the pixels as packed 8-bit RGB samples, row-major, alpha dropped.
func (p *Photo) ToRGB() []byte {
	if p.Image == nil {
		return nil
	}
	b := p.Image.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := p.Image.At(x, y).RGBA()
			out = append(out, byte(r>>8), byte(g>>8), byte(bl>>8))
		}
	}
	return out
}
