//go:build !linux && !darwin && !windows

package camera

import (
	"fmt"
	"strconv"

	"github.com/dixieflatline76/Cheese/config"
)

// Other systems have no ffmpeg capture device we know how to name; the caller gets
// ffmpeg's own error from Start.
func inputArgs(cfg config.CameraConfig) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-framerate", strconv.Itoa(cfg.FPS),
		"-video_size", sizeArg(cfg),
		"-i", strconv.Itoa(cfg.DeviceID),
	}
}

func probeArgs(index int) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-i", strconv.Itoa(index),
		"-frames:v", "1", "-f", "null", "-",
	}
}

func deviceLabel(cfg config.CameraConfig) string {
	return fmt.Sprintf("%s (index %d)", cfg.DeviceName, cfg.DeviceID)
}
