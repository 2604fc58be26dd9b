package camera

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/dixieflatline76/Cheese/util/log"
)

const (
	// DefaultProbeCount is how many device indices ListDevices tries.
	DefaultProbeCount = 10
	// probeTimeout bounds a single device open attempt.
	probeTimeout = 4 * time.Second
)

// Prober tries to open the device at index and describes it when that works.
type Prober func(ctx context.Context, index int) (Device, bool)

// ListDevices tries indices 0..count-1 in turn and returns the ones that open.
// There is no portable enumeration API, so this is speculative, but it stops at
// count and as soon as ctx is done. It only feeds the admin screen.
func ListDevices(ctx context.Context, probe Prober, count int) []Device {
	if count <= 0 {
		count = DefaultProbeCount
	}
	devices := []Device{}
	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			break
		}
		if d, ok := probe(ctx, i); ok {
			devices = append(devices, d)
		}
	}
	return devices
}

// FFmpegProber opens each index with ffmpeg, reading a single frame.
func FFmpegProber(ffmpeg string) Prober {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	return func(ctx context.Context, index int) (Device, bool) {
		ctx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()

		out, err := exec.CommandContext(ctx, ffmpeg, probeArgs(index)...).CombinedOutput()
		if err != nil {
			log.Debugf("probe camera %d: %v %s", index, err, out)
			return Device{}, false
		}
		return Device{Index: index, Name: fmt.Sprintf("Camera %d", index), Kind: "webcam"}, true
	}
}
