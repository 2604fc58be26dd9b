// Package camera abstracts the devices that feed the booth: a webcam streamed through
// ffmpeg, a DSLR driven through gphoto2, and a synthetic test card.
package camera

import (
	"context"
	"errors"
	"image"

	"github.com/dixieflatline76/Cheese/config"
	"github.com/dixieflatline76/Cheese/pkg/photo"
)

var (
	// ErrInactive is returned when capturing from a source that has not been started.
	ErrInactive = errors.New("camera is not active")
	// ErrNoFrame is returned when the device produced nothing to capture.
	ErrNoFrame = errors.New("camera returned no frame")
)

// Source is a frame-producing device.
type Source interface {
	// Start opens the device. Calling it on an active source is a no-op returning nil.
	Start(ctx context.Context) error
	// Stop releases the device. It is safe to call at any time, any number of times.
	Stop()
	// GetFrame returns the most recent frame without blocking. It reports false when the
	// source is inactive or nothing new could be read; callers skip that tick.
	GetFrame() (image.Image, bool)
	// CapturePhoto takes one full resolution photo tagged with the frame to apply.
	CapturePhoto(ctx context.Context, framePath string) (*photo.Photo, error)
	// Active reports whether the device is open.
	Active() bool
	// LastError is the diagnostic text of the last device failure, empty if none.
	LastError() string
}

// Stats counts frames read from a device and frames overwritten before anyone looked at them.
type Stats struct {
	Frames  int64
	Dropped int64
}

// StatsReporter is implemented by sources that count frames.
type StatsReporter interface {
	Stats() Stats
}

// Device describes a camera found by probing.
type Device struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Port  string `json:"port,omitempty"`
}

// New builds the source selected by cfg. Nothing is opened until Start.
func New(cfg config.CameraConfig) Source {
	switch cfg.Type {
	case config.CameraDSLR:
		return NewDSLR(cfg.GPhoto2Path)
	case config.CameraPattern:
		return NewPattern(cfg.ResolutionWidth, cfg.ResolutionHeight)
	default:
		return NewWebcam(cfg)
	}
}
