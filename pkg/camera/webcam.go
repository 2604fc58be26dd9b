package camera

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/dixieflatline76/Cheese/config"
	"github.com/dixieflatline76/Cheese/pkg/photo"
	"github.com/dixieflatline76/Cheese/util"
	"github.com/dixieflatline76/Cheese/util/log"
)

const (
	// webcamStartTimeout bounds how long Start waits for the first frame.
	webcamStartTimeout = 8 * time.Second
	// webcamCaptureWait bounds how long CapturePhoto waits when no frame has arrived yet.
	webcamCaptureWait = 2 * time.Second
)

type commandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Webcam streams a local camera through an ffmpeg subprocess producing MJPEG on stdout.
// A reader goroutine keeps only the newest frame.
type Webcam struct {
	cfg        config.CameraConfig
	newCommand commandFunc

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	stderr *tailBuffer

	active  util.SafeFlag
	lastErr lastError
	frames  *slot
}

// NewWebcam creates a webcam source for cfg.
func NewWebcam(cfg config.CameraConfig) *Webcam {
	return &Webcam{
		cfg:        cfg,
		newCommand: exec.CommandContext,
		frames:     newSlot(),
	}
}

// Start launches ffmpeg and waits for the first frame.
func (w *Webcam) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.active.Value() {
		return nil
	}
	if w.cancel != nil {
		// The previous stream died on its own; reap it before starting over.
		w.cancel()
		<-w.done
		w.cancel, w.done = nil, nil
	}

	runCtx, cancel := context.WithCancel(context.Background())
	args := append(inputArgs(w.cfg), outputArgs()...)
	cmd := w.newCommand(runCtx, ffmpegPath(w.cfg), args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return w.lastErr.fail(fmt.Errorf("opening ffmpeg output: %w", err))
	}
	w.stderr = newTailBuffer(2048)
	cmd.Stderr = w.stderr

	w.frames.reset()
	if err := cmd.Start(); err != nil {
		cancel()
		return w.lastErr.fail(fmt.Errorf("starting ffmpeg: %w", err))
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer w.frames.close()

		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 1<<20), maxFrameBytes)
		scanner.Split(splitJPEG)
		for scanner.Scan() {
			w.frames.put(scanner.Bytes())
		}
		if err := scanner.Err(); err != nil && runCtx.Err() == nil {
			log.Printf("webcam stream error: %v", err)
		}
		werr := cmd.Wait()
		if runCtx.Err() == nil {
			msg := w.stderr.String()
			if msg == "" && werr != nil {
				msg = werr.Error()
			}
			w.lastErr.set("camera stream ended: " + msg)
			w.active.Set(false)
		}
	}()

	waitCtx, waitCancel := context.WithTimeout(ctx, webcamStartTimeout)
	defer waitCancel()

	if _, ok := w.frames.wait(waitCtx.Done()); !ok {
		cancel()
		<-done
		msg := w.stderr.String()
		if msg == "" {
			msg = "no frame from device"
		}
		return w.lastErr.fail(fmt.Errorf("opening camera %s: %s", deviceLabel(w.cfg), msg))
	}

	w.cancel = cancel
	w.done = done
	w.active.Set(true)
	w.lastErr.set("")
	log.Printf("Webcam %s started at %dx%d", deviceLabel(w.cfg), w.cfg.ResolutionWidth, w.cfg.ResolutionHeight)
	return nil
}

// Stop terminates ffmpeg and waits for the reader to finish.
func (w *Webcam) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel == nil {
		return
	}
	w.active.Set(false)
	w.cancel()
	<-w.done
	w.cancel = nil
	w.done = nil
	log.Println("Webcam stopped")
}

// GetFrame returns the newest frame.
func (w *Webcam) GetFrame() (image.Image, bool) {
	if !w.active.Value() {
		return nil, false
	}
	return w.frames.latest()
}

// CapturePhoto wraps the newest frame. The stream already runs at the configured resolution.
func (w *Webcam) CapturePhoto(ctx context.Context, framePath string) (*photo.Photo, error) {
	if !w.active.Value() {
		return nil, ErrInactive
	}

	img, ok := w.frames.latest()
	if !ok {
		waitCtx, cancel := context.WithTimeout(ctx, webcamCaptureWait)
		defer cancel()
		img, ok = w.frames.wait(waitCtx.Done())
	}
	if !ok {
		return nil, ErrNoFrame
	}
	return photo.New(img, framePath), nil
}

// Active reports whether ffmpeg is streaming.
func (w *Webcam) Active() bool {
	return w.active.Value()
}

// LastError returns the last ffmpeg diagnostic.
func (w *Webcam) LastError() string {
	return w.lastErr.get()
}

// Stats returns frame counters.
func (w *Webcam) Stats() Stats {
	return w.frames.stats()
}

func ffmpegPath(cfg config.CameraConfig) string {
	return util.FirstNonEmpty(cfg.FFmpegPath, "ffmpeg")
}

func outputArgs() []string {
	return []string{"-an", "-f", "image2pipe", "-vcodec", "mjpeg", "-q:v", "3", "-"}
}

func sizeArg(cfg config.CameraConfig) string {
	return strconv.Itoa(cfg.ResolutionWidth) + "x" + strconv.Itoa(cfg.ResolutionHeight)
}

// lastError is a mutex guarded diagnostic string.
type lastError struct {
	mu  sync.Mutex
	msg string
}

func (l *lastError) set(msg string) {
	l.mu.Lock()
	l.msg = msg
	l.mu.Unlock()
}

func (l *lastError) get() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.msg
}

// fail records err as the diagnostic and returns it.
func (l *lastError) fail(err error) error {
	if err == nil {
		return nil
	}
	l.set(err.Error())
	return err
}
