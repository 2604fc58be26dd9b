package booth

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Overlay draws large text over the centre of a preview image.
// basicfont glyphs are tiny, so the text is rendered once at native size and scaled up
// with nearest neighbour, which keeps the pixel edges crisp.
type Overlay struct {
	Color  color.Color
	Shadow color.Color
	// Fraction of the image height the text should occupy.
	Fraction float64
}

// NewOverlay returns the overlay used for the countdown: white text with a dark shadow.
func NewOverlay() *Overlay {
	return &Overlay{
		Color:    color.White,
		Shadow:   color.NRGBA{A: 160},
		Fraction: 0.4,
	}
}

// Draw returns img with text centred on it. img itself is not modified.
func (o *Overlay) Draw(img image.Image, text string) image.Image {
	if text == "" || img == nil {
		return img
	}
	b := img.Bounds()

	face := basicfont.Face7x13
	bounds, _ := font.BoundString(face, text)
	tw := (bounds.Max.X - bounds.Min.X).Ceil()
	th := face.Height
	if tw <= 0 {
		return img
	}

	glyphs := imaging.New(tw+1, th+1, color.Transparent)
	shadow := imaging.New(tw+1, th+1, color.Transparent)
	dot := fixed.Point26_6{X: -bounds.Min.X, Y: fixed.I(face.Ascent)}
	(&font.Drawer{Dst: shadow, Src: image.NewUniform(o.Shadow), Face: face, Dot: dot.Add(fixed.P(1, 1))}).DrawString(text)
	(&font.Drawer{Dst: glyphs, Src: image.NewUniform(o.Color), Face: face, Dot: dot}).DrawString(text)

	scale := int(float64(b.Dy()) * o.Fraction / float64(th))
	if maxScale := b.Dx() * 9 / 10 / (tw + 1); scale > maxScale {
		scale = maxScale
	}
	if scale < 1 {
		scale = 1
	}
	w, h := (tw+1)*scale, (th+1)*scale
	big := imaging.Resize(imaging.Overlay(shadow, glyphs, image.Pt(0, 0), 1), w, h, imaging.NearestNeighbor)

	pos := image.Pt((b.Dx()-w)/2, (b.Dy()-h)/2)
	return imaging.Overlay(img, big, pos, 1)
}
