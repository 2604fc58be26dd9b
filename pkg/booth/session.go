// Package booth runs the capture sequence: countdown, shutter, framing and saving, plus the
// live preview loop that shows the camera with the selected frame and the countdown.
package booth

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dixieflatline76/Cheese/pkg/camera"
	"github.com/dixieflatline76/Cheese/pkg/event"
	"github.com/dixieflatline76/Cheese/pkg/frame"
	"github.com/dixieflatline76/Cheese/pkg/photo"
	"github.com/dixieflatline76/Cheese/util/log"
)

// ErrBusy is returned by Trigger while a capture session is already running.
var ErrBusy = errors.New("capture already in progress")

// ErrNoFrame is reported when the camera delivered no image.
var ErrNoFrame = camera.ErrNoFrame

// ErrNoCamera is reported when no camera source is attached.
var ErrNoCamera = errors.New("no camera")

// Phase is the capture session phase.
type Phase int

// Phases.
const (
	Idle Phase = iota
	CountingDown
	Capturing
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case CountingDown:
		return "counting_down"
	case Capturing:
		return "capturing"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is a snapshot of the session. Remaining is meaningful while CountingDown.
type State struct {
	Phase     Phase
	Remaining int
}

// Compositor bakes a frame into an image.
type Compositor interface {
	Compose(img image.Image, fr *frame.Frame) image.Image
}

// FrameLoader resolves a frame path to a decoded frame.
type FrameLoader interface {
	Get(path string) (*frame.Frame, error)
}

// Saver persists a finished photo and returns its path.
type Saver interface {
	Save(ctx context.Context, p *photo.Photo) (string, error)
}

// Options tunes the capture sequence.
type Options struct {
	Countdown      int           // first number shown, default 3
	Tick           time.Duration // default 1s
	SettleDelay    time.Duration // pause after the count reaches zero, default 500ms
	CaptureTimeout time.Duration // default 45s, covers a DSLR download
	CountdownSound string
	ShutterSound   string
}

func (o *Options) withDefaults() {
	if o.Countdown <= 0 {
		o.Countdown = 3
	}
	if o.Tick <= 0 {
		o.Tick = time.Second
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = 500 * time.Millisecond
	}
	if o.CaptureTimeout <= 0 {
		o.CaptureTimeout = 45 * time.Second
	}
}

// Session is the capture state machine: Idle, CountingDown(n) from Countdown to 1, Capturing,
// then Idle again whether or not the capture worked. Only one sequence runs at a time.
type Session struct {
	opts       Options
	cameraFn   func() camera.Source
	frames     FrameLoader
	compositor Compositor
	saver      Saver
	bus        *event.Bus
	sched      Scheduler
	player     Player

	mu        sync.Mutex
	state     State
	sessionID string
	timer     Timer
	framePath string
}

// Deps are the collaborators of a Session. Bus, Scheduler and Player are optional.
type Deps struct {
	Camera     func() camera.Source
	Frames     FrameLoader
	Compositor Compositor
	Saver      Saver
	Bus        *event.Bus
	Scheduler  Scheduler
	Player     Player
}

// NewSession creates an idle session.
func NewSession(deps Deps, opts Options) *Session {
	opts.withDefaults()
	s := &Session{
		opts:       opts,
		cameraFn:   deps.Camera,
		frames:     deps.Frames,
		compositor: deps.Compositor,
		saver:      deps.Saver,
		bus:        deps.Bus,
		sched:      deps.Scheduler,
		player:     deps.Player,
	}
	if s.sched == nil {
		s.sched = RealScheduler
	}
	if s.player == nil {
		s.player = silentPlayer{}
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SelectFrame sets the frame applied to the next capture. An empty path means no frame.
func (s *Session) SelectFrame(path string) {
	s.mu.Lock()
	s.framePath = path
	s.mu.Unlock()
}

// Frame returns the selected frame path.
func (s *Session) Frame() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.framePath
}

// SetSounds replaces the cue files, e.g. after a configuration reload.
func (s *Session) SetSounds(countdown, shutter string) {
	s.mu.Lock()
	s.opts.CountdownSound = countdown
	s.opts.ShutterSound = shutter
	s.mu.Unlock()
}

// Trigger starts the countdown. It returns the new session id, or ErrBusy without changing
// anything when a sequence is already running.
func (s *Session) Trigger() (string, error) {
	s.mu.Lock()
	if s.state.Phase != Idle {
		s.mu.Unlock()
		return "", ErrBusy
	}
	id := uuid.NewString()
	s.sessionID = id
	s.state = State{Phase: CountingDown, Remaining: s.opts.Countdown}
	s.timer = s.sched.AfterFunc(s.opts.Tick, func() { s.tick(id) })
	n, cue := s.opts.Countdown, s.opts.CountdownSound
	s.mu.Unlock()

	log.Printf("Capture %s: countdown from %d", id, n)
	s.publish(event.StateChanged{SessionID: id, Phase: CountingDown.String(), Remaining: n})
	s.publish(event.CountdownTick{SessionID: id, Remaining: n})
	s.player.Play(cue)
	return id, nil
}

// Cancel abandons a countdown. A capture already under way finishes normally.
func (s *Session) Cancel() {
	s.mu.Lock()
	if s.state.Phase != CountingDown {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	id := s.sessionID
	s.state = State{Phase: Idle}
	s.sessionID = ""
	s.mu.Unlock()

	log.Printf("Capture %s: cancelled", id)
	s.publish(event.StateChanged{SessionID: id, Phase: Idle.String()})
}

func (s *Session) tick(id string) {
	s.mu.Lock()
	if s.sessionID != id || s.state.Phase != CountingDown {
		s.mu.Unlock()
		return
	}
	s.state.Remaining--
	n := s.state.Remaining
	cue := s.opts.CountdownSound
	if n > 0 {
		s.timer = s.sched.AfterFunc(s.opts.Tick, func() { s.tick(id) })
	} else {
		// Give the guests a moment to react to the last beep.
		s.timer = s.sched.AfterFunc(s.opts.SettleDelay, func() { s.capture(id) })
	}
	s.mu.Unlock()

	s.publish(event.CountdownTick{SessionID: id, Remaining: n})
	if n > 0 {
		s.player.Play(cue)
	}
}

func (s *Session) capture(id string) {
	s.mu.Lock()
	if s.sessionID != id || s.state.Phase != CountingDown {
		s.mu.Unlock()
		return
	}
	s.state = State{Phase: Capturing}
	s.timer = nil
	framePath := s.framePath
	shutter := s.opts.ShutterSound
	s.mu.Unlock()

	s.publish(event.StateChanged{SessionID: id, Phase: Capturing.String()})
	s.publish(event.CaptureStarted{SessionID: id})
	s.player.Play(shutter)

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.CaptureTimeout)
	defer cancel()

	p, path, err := s.shoot(ctx, id, framePath)

	s.mu.Lock()
	s.state = State{Phase: Idle}
	s.sessionID = ""
	s.mu.Unlock()
	s.publish(event.StateChanged{SessionID: id, Phase: Idle.String()})

	if err != nil {
		log.Printf("Capture %s failed: %v", id, err)
		s.publish(event.CaptureFailed{SessionID: id, Reason: err.Error()})
		return
	}
	log.Printf("Capture %s saved to %s (%dx%d, framed=%t)", id, path, p.Width(), p.Height(), p.FrameApplied)
	s.publish(event.PhotoCaptured{
		SessionID: id,
		Photo:     p,
		Path:      path,
		Width:     p.Width(),
		Height:    p.Height(),
		Framed:    p.FrameApplied,
	})
}

// shoot captures, frames and saves one photo.
func (s *Session) shoot(ctx context.Context, id, framePath string) (*photo.Photo, string, error) {
	var cam camera.Source
	if s.cameraFn != nil {
		cam = s.cameraFn()
	}
	if cam == nil {
		return nil, "", ErrNoCamera
	}

	p, err := cam.CapturePhoto(ctx, framePath)
	if err != nil {
		return nil, "", fmt.Errorf("capture failed: %w", err)
	}
	if p == nil || p.Image == nil {
		return nil, "", ErrNoFrame
	}
	p.SessionID = id
	p.FrameApplied = false

	if framePath != "" && s.frames != nil && s.compositor != nil {
		fr, err := s.frames.Get(framePath)
		if err != nil {
			// The photo is still worth keeping unframed.
			log.Printf("Capture %s: frame %s unavailable: %v", id, framePath, err)
		} else {
			p.Image = s.compositor.Compose(p.Image, fr)
			p.FramePath = fr.Path
			p.FrameApplied = true
		}
	}

	path, err := s.saver.Save(ctx, p)
	if err != nil {
		return nil, "", fmt.Errorf("saving photo: %w", err)
	}
	return p, path, nil
}

func (s *Session) publish(e event.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}
