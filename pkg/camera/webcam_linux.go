package camera

import (
	"fmt"
	"strconv"

	"github.com/dixieflatline76/Cheese/config"
)

func devicePath(index int) string {
	return "/dev/video" + strconv.Itoa(index)
}

func inputArgs(cfg config.CameraConfig) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-f", "v4l2",
		"-input_format", "mjpeg",
		"-framerate", strconv.Itoa(cfg.FPS),
		"-video_size", sizeArg(cfg),
		"-i", devicePath(cfg.DeviceID),
	}
}

func probeArgs(index int) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-f", "v4l2", "-i", devicePath(index),
		"-frames:v", "1", "-f", "null", "-",
	}
}

func deviceLabel(cfg config.CameraConfig) string {
	return fmt.Sprintf("%s (%s)", cfg.DeviceName, devicePath(cfg.DeviceID))
}
