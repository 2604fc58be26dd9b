package camera

import (
	"fmt"
	"strconv"

	"github.com/dixieflatline76/Cheese/config"
)

func inputArgs(cfg config.CameraConfig) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-f", "avfoundation",
		"-framerate", strconv.Itoa(cfg.FPS),
		"-video_size", sizeArg(cfg),
		"-i", strconv.Itoa(cfg.DeviceID) + ":none",
	}
}

func probeArgs(index int) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-f", "avfoundation", "-framerate", "30",
		"-i", strconv.Itoa(index) + ":none",
		"-frames:v", "1", "-f", "null", "-",
	}
}

func deviceLabel(cfg config.CameraConfig) string {
	return fmt.Sprintf("%s (avfoundation %d)", cfg.DeviceName, cfg.DeviceID)
}
