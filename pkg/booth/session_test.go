package booth

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/Cheese/pkg/camera"
	"github.com/dixieflatline76/Cheese/pkg/compositor"
	"github.com/dixieflatline76/Cheese/pkg/event"
	"github.com/dixieflatline76/Cheese/pkg/frame"
	"github.com/dixieflatline76/Cheese/pkg/gallery"
	"github.com/dixieflatline76/Cheese/pkg/photo"
)

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// fakeScheduler queues calls until the test fires them.
type fakeScheduler struct {
	mu      sync.Mutex
	pending []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	s.pending = append(s.pending, t)
	return t
}

// fire runs the next live timer and returns its delay.
func (s *fakeScheduler) fire(t *testing.T) time.Duration {
	t.Helper()
	s.mu.Lock()
	var next *fakeTimer
	for len(s.pending) > 0 && next == nil {
		cand := s.pending[0]
		s.pending = s.pending[1:]
		if !cand.stopped {
			next = cand
		}
	}
	s.mu.Unlock()
	require.NotNil(t, next, "nothing scheduled")
	next.f()
	return next.d
}

func (s *fakeScheduler) live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

type fakeCamera struct {
	img      image.Image
	err      error
	captures int
}

func (c *fakeCamera) Start(context.Context) error { return nil }
func (c *fakeCamera) Stop()                       {}
func (c *fakeCamera) Active() bool                { return true }
func (c *fakeCamera) LastError() string           { return "" }

func (c *fakeCamera) GetFrame() (image.Image, bool) {
	return c.img, c.img != nil
}

func (c *fakeCamera) CapturePhoto(_ context.Context, framePath string) (*photo.Photo, error) {
	c.captures++
	if c.err != nil {
		return nil, c.err
	}
	if c.img == nil {
		return nil, nil
	}
	return photo.New(c.img, framePath), nil
}

type countingCompositor struct {
	inner    *compositor.Compositor
	mu       sync.Mutex
	composes int
	previews int
}

func (c *countingCompositor) Compose(img image.Image, fr *frame.Frame) image.Image {
	c.mu.Lock()
	c.composes++
	c.mu.Unlock()
	return c.inner.Compose(img, fr)
}

func (c *countingCompositor) Preview(img image.Image, fr *frame.Frame) image.Image {
	c.mu.Lock()
	c.previews++
	c.mu.Unlock()
	return c.inner.Preview(img, fr)
}

type mapFrames map[string]*frame.Frame

func (m mapFrames) Get(path string) (*frame.Frame, error) {
	if fr, ok := m[path]; ok {
		return fr, nil
	}
	return nil, frame.ErrNotFound
}

type memSaver struct {
	saved []*photo.Photo
	err   error
}

func (s *memSaver) Save(_ context.Context, p *photo.Photo) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, p)
	return "/photos/" + p.Filename(), nil
}

type fixture struct {
	session *Session
	sched   *fakeScheduler
	cam     *fakeCamera
	comp    *countingCompositor
	saver   *memSaver
	events  <-chan event.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sched: &fakeScheduler{},
		cam:   &fakeCamera{img: imaging.New(800, 600, color.NRGBA{R: 200, A: 255})},
		comp:  &countingCompositor{inner: compositor.New()},
		saver: &memSaver{},
	}
	bus := event.NewBus()
	ch, cancel := bus.Subscribe(256)
	t.Cleanup(cancel)
	f.events = ch

	frames := mapFrames{
		"portrait.png": {Path: "portrait.png", Name: "portrait", Image: imaging.New(300, 400, color.Transparent)},
	}
	f.session = NewSession(Deps{
		Camera:     func() camera.Source { return f.cam },
		Frames:     frames,
		Compositor: f.comp,
		Saver:      f.saver,
		Bus:        bus,
		Scheduler:  f.sched,
	}, Options{})
	return f
}

// runToEnd fires the three ticks and the settle delay.
func (f *fixture) runToEnd(t *testing.T) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.Equal(t, time.Second, f.sched.fire(t))
	}
	assert.Equal(t, 500*time.Millisecond, f.sched.fire(t))
}

func (f *fixture) drain() []event.Event {
	var out []event.Event
	for {
		select {
		case e := <-f.events:
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestCountdownSequence(t *testing.T) {
	f := newFixture(t)

	_, err := f.session.Trigger()
	require.NoError(t, err)
	assert.Equal(t, State{Phase: CountingDown, Remaining: 3}, f.session.State())

	f.sched.fire(t)
	assert.Equal(t, State{Phase: CountingDown, Remaining: 2}, f.session.State())
	f.sched.fire(t)
	assert.Equal(t, State{Phase: CountingDown, Remaining: 1}, f.session.State())
	f.sched.fire(t)
	assert.Equal(t, CountingDown, f.session.State().Phase)
	assert.Equal(t, 0, f.session.State().Remaining)
	assert.Equal(t, 0, f.cam.captures, "shutter waits for the settle delay")

	f.sched.fire(t)
	assert.Equal(t, Idle, f.session.State().Phase)
	assert.Equal(t, 1, f.cam.captures)

	var ticks []int
	for _, e := range f.drain() {
		if tick, ok := e.(event.CountdownTick); ok {
			ticks = append(ticks, tick.Remaining)
		}
	}
	assert.Equal(t, []int{3, 2, 1, 0}, ticks)
}

func TestTriggerWhileBusyIsIgnored(t *testing.T) {
	f := newFixture(t)

	id, err := f.session.Trigger()
	require.NoError(t, err)
	f.sched.fire(t)
	before := f.session.State()

	_, err = f.session.Trigger()
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, before, f.session.State())
	assert.Equal(t, 1, f.sched.live(), "a rejected trigger schedules nothing")

	f.sched.fire(t)
	f.sched.fire(t)
	f.sched.fire(t)
	assert.Equal(t, Idle, f.session.State().Phase)
	assert.Equal(t, 1, f.cam.captures)

	id2, err := f.session.Trigger()
	require.NoError(t, err, "idle again, triggers are accepted")
	assert.NotEqual(t, id, id2)
}

func TestTriggerDuringCaptureIsIgnored(t *testing.T) {
	f := newFixture(t)
	var busyErr error
	f.cam = &fakeCamera{img: imaging.New(10, 10, color.Black)}
	f.session.cameraFn = func() camera.Source {
		_, busyErr = f.session.Trigger()
		return f.cam
	}

	_, err := f.session.Trigger()
	require.NoError(t, err)
	f.runToEnd(t)

	assert.ErrorIs(t, busyErr, ErrBusy)
	assert.Equal(t, Idle, f.session.State().Phase)
	assert.Equal(t, 0, f.sched.live())
}

func TestNoFrameFromCamera(t *testing.T) {
	f := newFixture(t)
	f.cam.img = nil

	id, err := f.session.Trigger()
	require.NoError(t, err)
	f.runToEnd(t)

	assert.Equal(t, Idle, f.session.State().Phase)
	assert.Empty(t, f.saver.saved)

	var failures []event.CaptureFailed
	for _, e := range f.drain() {
		switch e := e.(type) {
		case event.CaptureFailed:
			failures = append(failures, e)
		case event.PhotoCaptured:
			t.Fatalf("unexpected photo %s", e.Path)
		}
	}
	require.Len(t, failures, 1)
	assert.Equal(t, id, failures[0].SessionID)
	assert.Contains(t, failures[0].Reason, "no frame")
}

func TestCameraErrorReturnsToIdle(t *testing.T) {
	f := newFixture(t)
	f.cam.err = errors.New("usb unplugged")

	_, err := f.session.Trigger()
	require.NoError(t, err)
	f.runToEnd(t)

	assert.Equal(t, Idle, f.session.State().Phase)
	var reason string
	for _, e := range f.drain() {
		if cf, ok := e.(event.CaptureFailed); ok {
			reason = cf.Reason
		}
	}
	assert.Contains(t, reason, "usb unplugged")
}

func TestSaveErrorReportsFailure(t *testing.T) {
	f := newFixture(t)
	f.saver.err = errors.New("disk full")

	_, err := f.session.Trigger()
	require.NoError(t, err)
	f.runToEnd(t)

	assert.Equal(t, Idle, f.session.State().Phase)
	var reason string
	for _, e := range f.drain() {
		if cf, ok := e.(event.CaptureFailed); ok {
			reason = cf.Reason
		}
	}
	assert.Contains(t, reason, "disk full")
}

func TestUnwritablePhotosDirEndsIdle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "photos")
	store, err := gallery.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	// The photos directory is replaced by a plain file, as with media swapped under the kiosk.
	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, []byte("x"), 0644))

	f := newFixture(t)
	bus := event.NewBus()
	events, cancel := bus.Subscribe(64)
	t.Cleanup(cancel)
	f.events = events
	f.session = NewSession(Deps{
		Camera:     func() camera.Source { return f.cam },
		Frames:     mapFrames{},
		Compositor: f.comp,
		Saver:      store,
		Bus:        bus,
		Scheduler:  f.sched,
	}, Options{})

	_, err = f.session.Trigger()
	require.NoError(t, err)
	f.runToEnd(t)

	assert.Equal(t, Idle, f.session.State().Phase)
	failed := 0
	for _, e := range f.drain() {
		if _, ok := e.(event.CaptureFailed); ok {
			failed++
		}
	}
	assert.Equal(t, 1, failed)

	// The next trigger is accepted.
	_, err = f.session.Trigger()
	assert.NoError(t, err)
}

func TestCaptureWithoutFrameKeepsCameraResolution(t *testing.T) {
	f := newFixture(t)

	_, err := f.session.Trigger()
	require.NoError(t, err)
	f.runToEnd(t)

	require.Len(t, f.saver.saved, 1)
	p := f.saver.saved[0]
	assert.False(t, p.FrameApplied)
	assert.Equal(t, 800, p.Width())
	assert.Equal(t, 600, p.Height())
	assert.Equal(t, 0, f.comp.composes)
}

func TestCaptureWithFrameUsesFrameSize(t *testing.T) {
	f := newFixture(t)
	f.session.SelectFrame("portrait.png")

	id, err := f.session.Trigger()
	require.NoError(t, err)
	f.runToEnd(t)

	require.Len(t, f.saver.saved, 1)
	p := f.saver.saved[0]
	assert.True(t, p.FrameApplied)
	assert.Equal(t, "portrait.png", p.FramePath)
	assert.Equal(t, 300, p.Width())
	assert.Equal(t, 400, p.Height())
	assert.Equal(t, id, p.SessionID)

	var captured *event.PhotoCaptured
	for _, e := range f.drain() {
		if pc, ok := e.(event.PhotoCaptured); ok {
			captured = &pc
		}
	}
	require.NotNil(t, captured)
	assert.Equal(t, 300, captured.Width)
	assert.True(t, captured.Framed)
	assert.Equal(t, "/photos/"+p.Filename(), captured.Path)
}

func TestMissingFrameSavesUnframed(t *testing.T) {
	f := newFixture(t)
	f.session.SelectFrame("deleted.png")

	_, err := f.session.Trigger()
	require.NoError(t, err)
	f.runToEnd(t)

	require.Len(t, f.saver.saved, 1)
	assert.False(t, f.saver.saved[0].FrameApplied)
	assert.Equal(t, 800, f.saver.saved[0].Width())
}

func TestOneFullCompositePerTrigger(t *testing.T) {
	f := newFixture(t)
	f.session.SelectFrame("portrait.png")
	preview := NewPreview(func() camera.Source { return f.cam }, f.session, mapFrames{
		"portrait.png": {Path: "portrait.png", Image: imaging.New(300, 400, color.Transparent)},
	}, f.comp, true)

	_, err := f.session.Trigger()
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		for j := 0; j < 5; j++ {
			_, ok := preview.Step()
			require.True(t, ok)
		}
		f.sched.fire(t)
	}

	assert.Equal(t, 1, f.comp.composes)
	assert.Equal(t, 20, f.comp.previews)
}

func TestCancelCountdown(t *testing.T) {
	f := newFixture(t)

	_, err := f.session.Trigger()
	require.NoError(t, err)
	f.sched.fire(t)
	f.session.Cancel()

	assert.Equal(t, Idle, f.session.State().Phase)
	assert.Equal(t, 0, f.sched.live())
	assert.Equal(t, 0, f.cam.captures)

	_, err = f.session.Trigger()
	assert.NoError(t, err)
}

func TestNoCamera(t *testing.T) {
	f := newFixture(t)
	f.session.cameraFn = func() camera.Source { return nil }

	_, err := f.session.Trigger()
	require.NoError(t, err)
	f.runToEnd(t)

	assert.Equal(t, Idle, f.session.State().Phase)
	assert.Empty(t, f.saver.saved)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "counting_down", CountingDown.String())
	assert.Equal(t, "capturing", Capturing.String())
}
