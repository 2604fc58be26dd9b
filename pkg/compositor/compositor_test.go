package compositor

import (
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/Cheese/config"
	"github.com/dixieflatline76/Cheese/pkg/frame"
	"github.com/dixieflatline76/Cheese/pkg/photo"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func newFrame(w, h int, c color.NRGBA) *frame.Frame {
	return &frame.Frame{Path: "test.png", Name: "test", Image: solid(w, h, c)}
}

// stripes returns an 800x600 photo: red left of x=175, green up to x=625, blue after.
func stripes() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 800, 600))
	for y := 0; y < 600; y++ {
		for x := 0; x < 800; x++ {
			c := color.NRGBA{G: 255, A: 255}
			if x < 175 {
				c = color.NRGBA{R: 255, A: 255}
			} else if x >= 625 {
				c = color.NRGBA{B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestComposeDimensions(t *testing.T) {
	frames := [][2]int{{300, 400}, {1200, 800}, {1, 1}, {7, 3}, {640, 640}}
	photos := [][2]int{{800, 600}, {640, 480}, {100, 100}, {3, 1000}, {1920, 1080}}

	c := New()
	transparent := color.NRGBA{}
	for _, f := range frames {
		for _, p := range photos {
			t.Run(fmt.Sprintf("%dx%d_over_%dx%d", f[0], f[1], p[0], p[1]), func(t *testing.T) {
				out := c.Compose(solid(p[0], p[1], color.NRGBA{R: 9, A: 255}), newFrame(f[0], f[1], transparent))
				assert.Equal(t, image.Rect(0, 0, f[0], f[1]), out.Bounds())

				prev := c.Preview(solid(p[0], p[1], color.NRGBA{R: 9, A: 255}), newFrame(f[0], f[1], transparent))
				assert.Equal(t, image.Rect(0, 0, f[0], f[1]), prev.Bounds())
			})
		}
	}
}

func TestCoverCropKeepsAspect(t *testing.T) {
	// 800x600 under 300x400: scale 2/3, the source window is x in [175, 625), full height.
	out := CoverCrop(stripes(), 300, 400, imaging.NearestNeighbor)
	require.Equal(t, image.Rect(0, 0, 300, 400), out.Bounds())

	for _, x := range []int{0, 1, 150, 298, 299} {
		for _, y := range []int{0, 200, 399} {
			assert.Equal(t, color.NRGBA{G: 255, A: 255}, out.NRGBAAt(x, y), "pixel %d,%d", x, y)
		}
	}
}

func TestCoverCropSmallerThanFrame(t *testing.T) {
	out := CoverCrop(solid(10, 10, color.NRGBA{B: 200, A: 255}), 300, 400, imaging.Lanczos)
	assert.Equal(t, image.Rect(0, 0, 300, 400), out.Bounds())
	assert.Equal(t, uint8(200), out.NRGBAAt(150, 200).B)

	same := CoverCrop(solid(300, 400, color.NRGBA{R: 1, A: 255}), 300, 400, imaging.Lanczos)
	assert.Equal(t, image.Rect(0, 0, 300, 400), same.Bounds())
}

func TestTransparentFrameKeepsPhoto(t *testing.T) {
	c := New()
	img := stripes()
	fr := newFrame(300, 400, color.NRGBA{})

	out := imaging.Clone(c.Compose(img, fr))
	want := CoverCrop(img, 300, 400, c.Filter)
	assert.Equal(t, want.Pix, out.Pix)
}

func TestOpaqueFrameReplacesPhoto(t *testing.T) {
	c := New()
	gold := color.NRGBA{R: 200, G: 160, B: 60, A: 255}
	fr := newFrame(300, 400, gold)

	out := imaging.Clone(c.Compose(stripes(), fr))
	assert.Equal(t, fr.Image.Pix, out.Pix)
}

func TestPartialAlphaBlends(t *testing.T) {
	fr := newFrame(4, 4, color.NRGBA{B: 255, A: 128})
	out := Over(solid(4, 4, color.NRGBA{R: 255, A: 255}), fr)

	px := out.NRGBAAt(1, 1)
	a := 128.0 / 255.0
	assert.InDelta(t, 255*(1-a), float64(px.R), 1)
	assert.InDelta(t, 255*a, float64(px.B), 1)
	assert.Equal(t, uint8(255), px.A)
}

func TestNoFrameReturnsInput(t *testing.T) {
	c := New()
	img := solid(8, 6, color.NRGBA{R: 1, A: 255})

	assert.Same(t, img, c.Compose(img, nil))
	assert.Same(t, img, c.Preview(img, nil))

	p := photo.New(img, "")
	assert.False(t, c.ApplyFrame(p, nil))
	assert.False(t, p.FrameApplied)
	assert.Same(t, img, p.Image)
}

func TestApplyFrame(t *testing.T) {
	c := New()
	p := photo.New(solid(800, 600, color.NRGBA{G: 100, A: 255}), "")
	fr := newFrame(300, 400, color.NRGBA{})
	fr.Path = "/frames/tall.png"

	require.True(t, c.ApplyFrame(p, fr))
	assert.True(t, p.FrameApplied)
	assert.Equal(t, "/frames/tall.png", p.FramePath)
	assert.Equal(t, 300, p.Width())
	assert.Equal(t, 400, p.Height())
}

func TestEffects(t *testing.T) {
	img := solid(20, 20, color.NRGBA{R: 220, G: 40, B: 10, A: 255})
	fr := newFrame(10, 10, color.NRGBA{})

	gray := imaging.Clone(New(WithEffect(config.EffectGrayscale)).Compose(img, fr))
	px := gray.NRGBAAt(5, 5)
	assert.Equal(t, px.R, px.G)
	assert.Equal(t, px.G, px.B)

	sepia := imaging.Clone(New(WithEffect(config.EffectSepia)).Compose(img, fr))
	px = sepia.NRGBAAt(5, 5)
	assert.GreaterOrEqual(t, px.R, px.G)
	assert.GreaterOrEqual(t, px.G, px.B)
}

type fakeFaces struct {
	faces []image.Rectangle
	calls int
}

func (f *fakeFaces) Detect(image.Image) []image.Rectangle {
	f.calls++
	return f.faces
}

func TestFaceModeShiftsWindow(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	fr := newFrame(300, 400, color.NRGBA{})

	faces := &fakeFaces{faces: []image.Rectangle{image.Rect(20, 280, 80, 340)}}
	c := New(WithMode(config.CropFace), WithFaceDetector(faces), WithFilters(imaging.NearestNeighbor, imaging.NearestNeighbor))

	out := imaging.Clone(c.Compose(stripes(), fr))
	assert.Equal(t, image.Rect(0, 0, 300, 400), out.Bounds())
	assert.Equal(t, red, out.NRGBAAt(0, 200), "window clamps to the left edge")
	assert.Equal(t, 1, faces.calls)

	// The preview never runs detection.
	c.Preview(stripes(), fr)
	assert.Equal(t, 1, faces.calls)

	// No faces falls back to the center.
	faces.faces = nil
	out = imaging.Clone(c.Compose(stripes(), fr))
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, out.NRGBAAt(0, 200))
}

func TestSmartModeDimensions(t *testing.T) {
	c := New(WithMode(config.CropSmart))
	out := c.Compose(stripes(), newFrame(120, 160, color.NRGBA{}))
	assert.Equal(t, image.Rect(0, 0, 120, 160), out.Bounds())
}

func TestFromConfig(t *testing.T) {
	c, err := FromConfig(config.CompositorConfig{CropMode: config.CropSmart, Effect: config.EffectSepia})
	require.NoError(t, err)
	assert.Equal(t, config.CropSmart, c.Mode)
	assert.Equal(t, config.EffectSepia, c.Effect)

	c, err = FromConfig(config.CompositorConfig{CropMode: config.CropFace, Effect: config.EffectNone, FaceCascade: "/nope/facefinder"})
	assert.Error(t, err)
	require.NotNil(t, c)
	assert.Equal(t, config.CropCenter, c.Mode)
}
