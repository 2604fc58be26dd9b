package camera

import (
	"fmt"
	"strconv"

	"github.com/dixieflatline76/Cheese/config"
)

// inputArgs opens the camera by its DirectShow name when one is configured, otherwise by
// Video for Windows driver index, which is the only index based API ffmpeg offers here.
func inputArgs(cfg config.CameraConfig) []string {
	base := []string{"-hide_banner", "-loglevel", "error", "-nostdin"}
	if cfg.DeviceName != "" && cfg.DeviceName != config.Default().Camera.DeviceName {
		return append(base,
			"-f", "dshow",
			"-framerate", strconv.Itoa(cfg.FPS),
			"-video_size", sizeArg(cfg),
			"-i", "video="+cfg.DeviceName,
		)
	}
	return append(base,
		"-f", "vfwcap",
		"-framerate", strconv.Itoa(cfg.FPS),
		"-video_size", sizeArg(cfg),
		"-i", strconv.Itoa(cfg.DeviceID),
	)
}

func probeArgs(index int) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-f", "vfwcap", "-i", strconv.Itoa(index),
		"-frames:v", "1", "-f", "null", "-",
	}
}

func deviceLabel(cfg config.CameraConfig) string {
	return fmt.Sprintf("%s (index %d)", cfg.DeviceName, cfg.DeviceID)
}
