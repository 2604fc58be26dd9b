// Package sysinfo asks the operating system about the display the kiosk runs on.
package sysinfo

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// queryTimeout bounds the external tools consulted for the screen size.
const queryTimeout = 3 * time.Second

// ErrUnsupported is returned on platforms with no way to query the screen.
var ErrUnsupported = errors.New("screen size query not supported on this platform")

// resolutionRegex matches "1920x1080", "2880 x 1864 Retina" or "1710 x 1107 @ 60.00Hz".
var resolutionRegex = regexp.MustCompile(`(\d+)\s*x\s*(\d+)`)

// ScreenSize returns the primary display size in pixels.
func ScreenSize() (int, int, error) {
	return screenSize()
}

// ParseResolution extracts the first WIDTHxHEIGHT pair from s.
func ParseResolution(s string) (int, int, error) {
	m := resolutionRegex.FindStringSubmatch(s)
	if len(m) < 3 {
		return 0, 0, fmt.Errorf("no resolution in %q", s)
	}
	w, errW := strconv.Atoi(m[1])
	h, errH := strconv.Atoi(m[2])
	if errW != nil || errH != nil || w == 0 || h == 0 {
		return 0, 0, fmt.Errorf("bad resolution in %q", s)
	}
	return w, h, nil
}

// parseXdpyinfo reads "dimensions:    1920x1080 pixels (508x285 millimeters)".
func parseXdpyinfo(out string) (int, int, error) {
	for _, line := range strings.Split(out, "\n") {
		if _, rest, ok := strings.Cut(line, "dimensions:"); ok {
			return ParseResolution(rest)
		}
	}
	return 0, 0, errors.New("xdpyinfo reported no dimensions")
}

type systemProfilerOutput struct {
	Displays []struct {
		NDRVs []struct {
			Resolution string `json:"_spdisplays_pixels"`
			Main       string `json:"spdisplays_main"`
		} `json:"spdisplays_ndrvs"`
	} `json:"SPDisplaysDataType"`
}

// parseSystemProfiler reads `system_profiler SPDisplaysDataType -json`, preferring the main
// display and falling back to the first one listed.
func parseSystemProfiler(data []byte) (int, int, error) {
	var p systemProfilerOutput
	if err := json.Unmarshal(data, &p); err != nil {
		return 0, 0, fmt.Errorf("decoding system_profiler JSON: %w", err)
	}
	for _, gpu := range p.Displays {
		for _, d := range gpu.NDRVs {
			if d.Main == "spdisplays_yes" {
				return ParseResolution(d.Resolution)
			}
		}
	}
	if len(p.Displays) > 0 && len(p.Displays[0].NDRVs) > 0 {
		return ParseResolution(p.Displays[0].NDRVs[0].Resolution)
	}
	return 0, 0, errors.New("no displays found in system_profiler output")
}
