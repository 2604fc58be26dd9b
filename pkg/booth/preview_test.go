package booth

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/Cheese/pkg/camera"
	"github.com/dixieflatline76/Cheese/pkg/compositor"
	"github.com/dixieflatline76/Cheese/pkg/frame"
)

func TestPreviewSkipsMissingFrames(t *testing.T) {
	cam := &fakeCamera{}
	p := NewPreview(func() camera.Source { return cam }, nil, nil, nil, false)

	_, ok := p.Step()
	assert.False(t, ok)

	p = NewPreview(func() camera.Source { return nil }, nil, nil, nil, false)
	_, ok = p.Step()
	assert.False(t, ok)
}

func TestPreviewLiveComposite(t *testing.T) {
	f := newFixture(t)
	f.session.SelectFrame("portrait.png")
	frames := mapFrames{"portrait.png": {Path: "portrait.png", Image: imaging.New(300, 400, color.Transparent)}}

	p := NewPreview(func() camera.Source { return f.cam }, f.session, frames, compositor.New(), true)
	img, ok := p.Step()
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 300, 400), img.Bounds())

	p.SetLive(false)
	img, ok = p.Step()
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 800, 600), img.Bounds())
}

func TestPreviewDrawsCountdown(t *testing.T) {
	f := newFixture(t)
	p := NewPreview(func() camera.Source { return f.cam }, f.session, nil, nil, false)

	plain, ok := p.Step()
	require.True(t, ok)

	_, err := f.session.Trigger()
	require.NoError(t, err)
	counting, ok := p.Step()
	require.True(t, ok)

	assert.NotEqual(t, imaging.Clone(plain).Pix, imaging.Clone(counting).Pix)
}

func TestPreviewRun(t *testing.T) {
	cam := &fakeCamera{img: imaging.New(40, 30, color.White)}
	p := NewPreview(func() camera.Source { return cam }, nil, nil, nil, false)
	p.Interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan image.Image, 1)
	go p.Run(ctx, func(img image.Image) {
		select {
		case got <- img:
		default:
		}
	})
	defer cancel()

	select {
	case img := <-got:
		assert.Equal(t, 40, img.Bounds().Dx())
	case <-time.After(2 * time.Second):
		t.Fatal("preview never rendered")
	}
}

func TestOverlayDraw(t *testing.T) {
	base := imaging.New(400, 300, color.Black)
	out := NewOverlay().Draw(base, "3")

	assert.Equal(t, base.Bounds(), out.Bounds())
	assert.Equal(t, color.NRGBA{A: 255}, base.NRGBAAt(200, 150), "input untouched")

	white := 0
	o := imaging.Clone(out)
	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			if c := o.NRGBAAt(x, y); c.R == 255 && c.G == 255 && c.B == 255 {
				white++
			}
		}
	}
	assert.Greater(t, white, 500, "glyph is scaled up to a visible size")

	assert.Same(t, base, NewOverlay().Draw(base, "").(*image.NRGBA))
}

var _ FrameLoader = mapFrames{}
var _ FrameLoader = (*frame.Library)(nil)
