package camera

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"

	"github.com/dixieflatline76/Cheese/pkg/photo"
	"github.com/dixieflatline76/Cheese/util"
)

// bars are the classic colour bars of the test card.
var bars = []color.NRGBA{
	{R: 192, G: 192, B: 192, A: 255},
	{R: 192, G: 192, B: 0, A: 255},
	{R: 0, G: 192, B: 192, A: 255},
	{R: 0, G: 192, B: 0, A: 255},
	{R: 192, G: 0, B: 192, A: 255},
	{R: 192, G: 0, B: 0, A: 255},
	{R: 0, G: 0, B: 192, A: 255},
}

// Pattern is a synthetic camera drawing a test card with a moving marker. It lets the booth
// run headless and in demos without hardware.
type Pattern struct {
	width, height int
	now           func() time.Time

	mu     sync.Mutex
	canvas *image.NRGBA

	active util.SafeFlag
	frames util.SafeCounter
}

// NewPattern creates a test card source of the given size.
func NewPattern(width, height int) *Pattern {
	if width <= 0 || height <= 0 {
		width, height = 1280, 720
	}
	return &Pattern{width: width, height: height, now: time.Now}
}

// Start marks the source active.
func (p *Pattern) Start(context.Context) error {
	p.active.Set(true)
	return nil
}

// Stop marks the source inactive.
func (p *Pattern) Stop() {
	p.active.Set(false)
}

// GetFrame draws a fresh test card.
func (p *Pattern) GetFrame() (image.Image, bool) {
	if !p.active.Value() {
		return nil, false
	}
	return p.render(), true
}

// CapturePhoto returns a test card at full size.
func (p *Pattern) CapturePhoto(_ context.Context, framePath string) (*photo.Photo, error) {
	if !p.active.Value() {
		return nil, ErrInactive
	}
	return photo.New(p.render(), framePath), nil
}

// Active reports whether the source was started.
func (p *Pattern) Active() bool {
	return p.active.Value()
}

// LastError is always empty.
func (p *Pattern) LastError() string {
	return ""
}

// Stats returns the number of cards drawn.
func (p *Pattern) Stats() Stats {
	return Stats{Frames: p.frames.Value()}
}

func (p *Pattern) render() image.Image {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.canvas == nil {
		p.canvas = image.NewNRGBA(image.Rect(0, 0, p.width, p.height))
		barW := (p.width + len(bars) - 1) / len(bars)
		for i, c := range bars {
			r := image.Rect(i*barW, 0, (i+1)*barW, p.height)
			draw.Draw(p.canvas, r, image.NewUniform(c), image.Point{}, draw.Src)
		}
	}

	out := image.NewNRGBA(p.canvas.Bounds())
	copy(out.Pix, p.canvas.Pix)

	// A white marker sweeps across once every two seconds so a frozen feed is obvious.
	ms := p.now().UnixMilli() % 2000
	x := int(ms) * p.width / 2000
	size := max(p.height/20, 4)
	marker := image.Rect(x, p.height-2*size, x+size, p.height-size)
	draw.Draw(out, marker, image.NewUniform(color.White), image.Point{}, draw.Src)

	p.frames.Increment()
	return out
}
