package booth

import (
	"context"
	"image"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/dixieflatline76/Cheese/pkg/camera"
	"github.com/dixieflatline76/Cheese/pkg/frame"
)

// PreviewInterval is the live preview period, roughly 30 frames per second.
const PreviewInterval = 33 * time.Millisecond

// PreviewCompositor produces the cheap composite shown while guests pose.
type PreviewCompositor interface {
	Preview(img image.Image, fr *frame.Frame) image.Image
}

// Renderer receives each preview image. It is called from the preview goroutine.
type Renderer func(image.Image)

// Preview polls the camera and renders what the guests see: the live image, the selected
// frame on top when live compositing is on, and the countdown number.
type Preview struct {
	Camera     func() camera.Source
	Session    *Session
	Frames     FrameLoader
	Compositor PreviewCompositor
	Overlay    *Overlay
	Interval   time.Duration

	live atomic.Bool
}

// NewPreview returns a preview for session.
func NewPreview(cam func() camera.Source, session *Session, frames FrameLoader, comp PreviewCompositor, live bool) *Preview {
	p := &Preview{
		Camera:     cam,
		Session:    session,
		Frames:     frames,
		Compositor: comp,
		Overlay:    NewOverlay(),
		Interval:   PreviewInterval,
	}
	p.live.Store(live)
	return p
}

// SetLive toggles live frame compositing.
func (p *Preview) SetLive(on bool) {
	p.live.Store(on)
}

// Run renders until ctx is done.
func (p *Preview) Run(ctx context.Context, render Renderer) {
	interval := p.Interval
	if interval <= 0 {
		interval = PreviewInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if img, ok := p.Step(); ok {
				render(img)
			}
		}
	}
}

// Step produces one preview image. It reports false when the camera had nothing to show,
// which is normal while a stream warms up.
func (p *Preview) Step() (image.Image, bool) {
	if p.Camera == nil {
		return nil, false
	}
	cam := p.Camera()
	if cam == nil || !cam.Active() {
		return nil, false
	}
	img, ok := cam.GetFrame()
	if !ok || img == nil {
		return nil, false
	}

	var st State
	if p.Session != nil {
		st = p.Session.State()
		if p.live.Load() && p.Frames != nil && p.Compositor != nil {
			if path := p.Session.Frame(); path != "" {
				if fr, err := p.Frames.Get(path); err == nil {
					img = p.Compositor.Preview(img, fr)
				}
			}
		}
	}

	if st.Phase == CountingDown && st.Remaining > 0 && p.Overlay != nil {
		img = p.Overlay.Draw(img, strconv.Itoa(st.Remaining))
	}
	return img, true
}
