package booth

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/dixieflatline76/Cheese/util/log"
)

// Player plays a cue file without blocking the caller.
type Player interface {
	Play(path string)
}

// soundTimeout bounds a single cue.
const soundTimeout = 5 * time.Second

// CommandPlayer plays cues through the platform's command line audio player.
// A missing file or player is ignored; cues are a nicety, never a reason to fail a capture.
type CommandPlayer struct{}

// Play starts playing path in the background.
func (CommandPlayer) Play(path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	name, args := playerCommand(path)
	if name == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), soundTimeout)
		defer cancel()
		if out, err := exec.CommandContext(ctx, name, args...).CombinedOutput(); err != nil {
			log.Debugf("sound %s: %v %s", path, err, out)
		}
	}()
}

func playerCommand(path string) (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "afplay", []string{path}
	case "windows":
		script := "(New-Object Media.SoundPlayer '" + strings.ReplaceAll(path, "'", "''") + "').PlaySync()"
		return "powershell", []string{"-NoProfile", "-NonInteractive", "-Command", script}
	case "linux":
		return "aplay", []string{"-q", path}
	default:
		return "", nil
	}
}

// silentPlayer is used when no player is configured.
type silentPlayer struct{}

func (silentPlayer) Play(string) {}
