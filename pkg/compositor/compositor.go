// Package compositor fits photos under decorative frames.
//
// A photo is scaled to cover the frame (never letterboxed), cropped to exactly the frame's
// natural size and the frame is alpha-composited over it. The frame's artwork is never
// distorted; the camera content is what gets cropped.
package compositor

import (
	"fmt"
	"image"
	"math"
	"os"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"

	"github.com/dixieflatline76/Cheese/config"
	"github.com/dixieflatline76/Cheese/pkg/frame"
	"github.com/dixieflatline76/Cheese/pkg/photo"
)

// Compositor applies frames to images. It holds no per-call state and is safe for
// concurrent use by the preview loop and a capture.
type Compositor struct {
	Filter        imaging.ResampleFilter // full resolution captures
	PreviewFilter imaging.ResampleFilter // live preview, called ~30 times a second
	Mode          string
	Effect        string

	faces FaceDetector
	smart *smartCropper
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithMode selects the crop mode (config.CropCenter, CropSmart or CropFace).
func WithMode(mode string) Option {
	return func(c *Compositor) { c.Mode = mode }
}

// WithEffect selects the effect applied to the photo before the frame goes on.
func WithEffect(effect string) Option {
	return func(c *Compositor) { c.Effect = effect }
}

// WithFaceDetector sets the detector used by the face crop mode.
func WithFaceDetector(d FaceDetector) Option {
	return func(c *Compositor) { c.faces = d }
}

// WithFilters overrides the resampling filters.
func WithFilters(full, preview imaging.ResampleFilter) Option {
	return func(c *Compositor) {
		c.Filter = full
		c.PreviewFilter = preview
	}
}

// New creates a compositor using center crop and no effect unless overridden.
func New(opts ...Option) *Compositor {
	c := &Compositor{
		Filter:        imaging.Lanczos,
		PreviewFilter: imaging.Box,
		Mode:          config.CropCenter,
		Effect:        config.EffectNone,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.smart = &smartCropper{filter: c.Filter}
	return c
}

// FromConfig builds a compositor from the compositor section of the configuration.
// The face mode needs a pigo cascade file; without one it degrades to center crop.
func FromConfig(cfg config.CompositorConfig) (*Compositor, error) {
	opts := []Option{WithMode(cfg.CropMode), WithEffect(cfg.Effect)}
	if cfg.CropMode == config.CropFace {
		if cfg.FaceCascade == "" {
			return New(WithMode(config.CropCenter), WithEffect(cfg.Effect)), fmt.Errorf("face crop needs a cascade file")
		}
		data, err := os.ReadFile(cfg.FaceCascade)
		if err != nil {
			return New(WithMode(config.CropCenter), WithEffect(cfg.Effect)), fmt.Errorf("reading face cascade: %w", err)
		}
		det, err := NewFaceDetector(data)
		if err != nil {
			return New(WithMode(config.CropCenter), WithEffect(cfg.Effect)), err
		}
		opts = append(opts, WithFaceDetector(det))
	}
	return New(opts...), nil
}

// Compose returns img fitted under fr at full quality. With no frame it returns img unchanged.
func (c *Compositor) Compose(img image.Image, fr *frame.Frame) image.Image {
	if fr == nil || fr.Image == nil || img == nil {
		return img
	}
	w, h := fr.Size()
	fitted := c.fit(img, w, h)
	return Over(applyEffect(fitted, c.Effect), fr)
}

// Preview is Compose with a fast filter and plain center crop, for the live preview.
func (c *Compositor) Preview(img image.Image, fr *frame.Frame) image.Image {
	if fr == nil || fr.Image == nil || img == nil {
		return img
	}
	w, h := fr.Size()
	fitted := CoverCrop(img, w, h, c.PreviewFilter)
	return Over(applyEffect(fitted, c.Effect), fr)
}

// ApplyFrame composes p under fr in place. It reports whether the frame was applied;
// a nil frame leaves p untouched with FrameApplied false.
func (c *Compositor) ApplyFrame(p *photo.Photo, fr *frame.Frame) bool {
	if fr == nil || fr.Image == nil || p.Image == nil {
		p.FrameApplied = false
		return false
	}
	p.Image = c.Compose(p.Image, fr)
	p.FramePath = fr.Path
	p.FrameApplied = true
	return true
}

// fit crops img to w×h for a full resolution capture, honouring the crop mode.
func (c *Compositor) fit(img image.Image, w, h int) image.Image {
	switch c.Mode {
	case config.CropSmart:
		if out, err := c.smart.crop(img, w, h); err == nil {
			return out
		}
	case config.CropFace:
		if c.faces != nil {
			if faces := c.faces.Detect(img); len(faces) > 0 {
				return CoverCropAt(img, w, h, c.Filter, centerOf(faces))
			}
		}
	}
	return CoverCrop(img, w, h, c.Filter)
}

// CoverCrop scales img by max(w/Pw, h/Ph), then crops the center to exactly w×h.
// The crop origin is ((nw-w)/2, (nh-h)/2) of the scaled size, clamped to 0.
func CoverCrop(img image.Image, w, h int, filter imaging.ResampleFilter) *image.NRGBA {
	return coverCrop(img, w, h, filter, nil)
}

// CoverCropAt is CoverCrop with the crop window centered on focus (in img coordinates)
// as far as the scaled image allows.
func CoverCropAt(img image.Image, w, h int, filter imaging.ResampleFilter, focus image.Point) *image.NRGBA {
	return coverCrop(img, w, h, filter, &focus)
}

func coverCrop(img image.Image, w, h int, filter imaging.ResampleFilter, focus *image.Point) *image.NRGBA {
	b := img.Bounds()
	pw, ph := b.Dx(), b.Dy()
	if pw == 0 || ph == 0 || w <= 0 || h <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	}

	scale := math.Max(float64(w)/float64(pw), float64(h)/float64(ph))
	// The epsilon keeps float noise like 400.0000001 from adding a pixel.
	nw := int(math.Ceil(float64(pw)*scale - 1e-9))
	nh := int(math.Ceil(float64(ph)*scale - 1e-9))
	if nw < w {
		nw = w
	}
	if nh < h {
		nh = h
	}

	var resized *image.NRGBA
	if nw == pw && nh == ph {
		resized = imaging.Clone(img)
	} else {
		resized = imaging.Resize(img, nw, nh, filter)
	}

	x0, y0 := (nw-w)/2, (nh-h)/2
	if focus != nil {
		x0 = int(float64(focus.X-b.Min.X)*scale) - w/2
		y0 = int(float64(focus.Y-b.Min.Y)*scale) - h/2
	}
	x0 = clamp(x0, 0, nw-w)
	y0 = clamp(y0, 0, nh-h)

	return imaging.Crop(resized, image.Rect(x0, y0, x0+w, y0+h))
}

// Over composites fr over dst with the standard "over" operator. dst must already have the
// frame's size. Frame alpha 0 keeps dst, alpha 255 keeps the frame.
func Over(dst image.Image, fr *frame.Frame) *image.NRGBA {
	return imaging.Overlay(dst, fr.Image, image.Pt(0, 0), 1.0)
}

func applyEffect(img image.Image, name string) image.Image {
	switch name {
	case config.EffectGrayscale:
		return effect.Grayscale(img)
	case config.EffectSepia:
		return effect.Sepia(img)
	default:
		return img
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
