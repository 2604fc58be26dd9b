package camera

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/dixieflatline76/Cheese/pkg/photo"
	"github.com/dixieflatline76/Cheese/util"
	"github.com/dixieflatline76/Cheese/util/log"
)

// gphoto2 operation timeouts.
const (
	DetectTimeout  = 10 * time.Second
	PreviewTimeout = 10 * time.Second
	CaptureTimeout = 30 * time.Second
)

// runFunc runs a command and returns its combined output.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCombined(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// DSLR drives a tethered camera through gphoto2, one subprocess per operation.
// Failures become the LastError diagnostic; nothing here panics on a misbehaving camera.
type DSLR struct {
	path string
	run  runFunc

	// gphoto2 cannot talk to the camera from two processes at once.
	opMu sync.Mutex

	mu      sync.Mutex
	workDir string
	cancel  context.CancelFunc
	done    chan struct{}

	active  util.SafeFlag
	lastErr lastError
	frames  *previewSlot
}

// NewDSLR creates a DSLR source using the gphoto2 binary at path.
func NewDSLR(path string) *DSLR {
	return &DSLR{
		path:   util.FirstNonEmpty(path, "gphoto2"),
		run:    runCombined,
		frames: &previewSlot{},
	}
}

// Start checks that gphoto2 sees a camera and begins pulling preview frames.
func (d *DSLR) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active.Value() {
		return nil
	}

	cams, err := detect(ctx, d.run, d.path)
	if err != nil {
		return d.lastErr.fail(err)
	}
	if len(cams) == 0 {
		return d.lastErr.fail(errors.New("gphoto2 found no camera"))
	}

	dir, err := os.MkdirTemp("", "cheese-gphoto2-")
	if err != nil {
		return d.lastErr.fail(fmt.Errorf("creating capture directory: %w", err))
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	d.workDir = dir
	d.cancel = cancel
	d.done = make(chan struct{})
	d.active.Set(true)
	d.lastErr.set("")
	go d.previewLoop(loopCtx, d.done, dir)

	log.Printf("DSLR %s connected on %s", cams[0].Name, cams[0].Port)
	return nil
}

// Stop ends the preview loop. An in-flight gphoto2 call is killed.
func (d *DSLR) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel == nil {
		return
	}
	d.active.Set(false)
	d.cancel()
	<-d.done
	os.RemoveAll(d.workDir)
	d.cancel, d.done, d.workDir = nil, nil, ""
	d.frames.set(nil)
}

// GetFrame returns the newest preview image.
func (d *DSLR) GetFrame() (image.Image, bool) {
	if !d.active.Value() {
		return nil, false
	}
	return d.frames.get()
}

// CapturePhoto triggers the shutter and downloads the full resolution image.
func (d *DSLR) CapturePhoto(ctx context.Context, framePath string) (*photo.Photo, error) {
	if !d.active.Value() {
		return nil, ErrInactive
	}

	d.opMu.Lock()
	defer d.opMu.Unlock()

	// Stop may have run since the check above and removed the directory.
	d.mu.Lock()
	dir := d.workDir
	d.mu.Unlock()
	if dir == "" {
		return nil, ErrInactive
	}

	ctx, cancel := context.WithTimeout(ctx, CaptureTimeout)
	defer cancel()

	target := filepath.Join(dir, "capture.jpg")
	out, err := d.run(ctx, d.path, "--capture-image-and-download", "--force-overwrite", "--filename", target)
	if err != nil {
		return nil, d.lastErr.fail(fmt.Errorf("capture failed: %s", diagnostic(ctx, out, err)))
	}
	defer os.Remove(target)

	img, err := imaging.Open(target, imaging.AutoOrientation(true))
	if err != nil {
		return nil, d.lastErr.fail(fmt.Errorf("reading captured image: %w", err))
	}
	return photo.New(img, framePath), nil
}

// Active reports whether a camera was detected and the preview loop runs.
func (d *DSLR) Active() bool {
	return d.active.Value()
}

// LastError returns the last gphoto2 diagnostic.
func (d *DSLR) LastError() string {
	return d.lastErr.get()
}

// Stats returns preview counters.
func (d *DSLR) Stats() Stats {
	return d.frames.stats()
}

func (d *DSLR) previewLoop(ctx context.Context, done chan struct{}, dir string) {
	defer close(done)

	target := filepath.Join(dir, "preview.jpg")
	failures := 0
	for ctx.Err() == nil {
		img, err := d.preview(ctx, target)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			d.lastErr.set(err.Error())
			// Back off while the camera is busy or unplugged.
			wait := time.Duration(min(failures, 10)) * 200 * time.Millisecond
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			continue
		}
		failures = 0
		d.frames.set(img)
	}
}

func (d *DSLR) preview(ctx context.Context, target string) (image.Image, error) {
	d.opMu.Lock()
	defer d.opMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, PreviewTimeout)
	defer cancel()

	out, err := d.run(ctx, d.path, "--capture-preview", "--force-overwrite", "--filename", target)
	if err != nil {
		return nil, fmt.Errorf("preview failed: %s", diagnostic(ctx, out, err))
	}
	img, err := imaging.Open(target)
	if err != nil {
		return nil, fmt.Errorf("reading preview: %w", err)
	}
	return img, nil
}

// DetectDSLRs lists the cameras gphoto2 can see.
func DetectDSLRs(ctx context.Context, path string) ([]Device, error) {
	return detect(ctx, runCombined, util.FirstNonEmpty(path, "gphoto2"))
}

func detect(ctx context.Context, run runFunc, path string) ([]Device, error) {
	ctx, cancel := context.WithTimeout(ctx, DetectTimeout)
	defer cancel()

	out, err := run(ctx, path, "--auto-detect")
	if err != nil {
		return nil, fmt.Errorf("gphoto2 auto-detect failed: %s", diagnostic(ctx, out, err))
	}
	return parseAutoDetect(out), nil
}

// parseAutoDetect reads the table printed by gphoto2 --auto-detect:
//
//	Model                          Port
//	----------------------------------------------------------
//	Canon EOS 600D                 usb:001,005
func parseAutoDetect(out []byte) []Device {
	devices := []Device{}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	pastHeader := false
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if !pastHeader {
			if strings.HasPrefix(line, "---") {
				pastHeader = true
			}
			continue
		}
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		port := fields[len(fields)-1]
		name := strings.TrimSpace(strings.TrimSuffix(line, port))
		devices = append(devices, Device{Index: len(devices), Name: name, Kind: "dslr", Port: port})
	}
	return devices
}

// diagnostic turns a failed subprocess into the text shown to the operator.
func diagnostic(ctx context.Context, out []byte, err error) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "timed out"
	}
	if msg := strings.TrimSpace(string(out)); msg != "" {
		return util.Truncate(msg, 300)
	}
	return err.Error()
}

// previewSlot holds the newest decoded preview image.
type previewSlot struct {
	mu      sync.Mutex
	img     image.Image
	fresh   bool
	frames  util.SafeCounter
	dropped util.SafeCounter
}

func (p *previewSlot) set(img image.Image) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if img != nil {
		if p.fresh {
			p.dropped.Increment()
		}
		p.frames.Increment()
	}
	p.img = img
	p.fresh = img != nil
}

func (p *previewSlot) get() (image.Image, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fresh = false
	return p.img, p.img != nil
}

func (p *previewSlot) stats() Stats {
	return Stats{Frames: p.frames.Value(), Dropped: p.dropped.Value()}
}
