package camera

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/Cheese/config"
)

// TestHelperProcess stands in for ffmpeg. It is not a real test.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("CHEESE_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("CHEESE_HELPER_MODE") {
	case "fail":
		fmt.Fprintln(os.Stderr, "/dev/video7: No such file or directory")
		os.Exit(1)
	default:
		frame := encodeJPEG(t, 64, 48, color.RGBA{R: 200, A: 255})
		deadline := time.Now().Add(10 * time.Second)
		for time.Now().Before(deadline) {
			if _, err := os.Stdout.Write(frame); err != nil {
				os.Exit(0)
			}
			time.Sleep(20 * time.Millisecond)
		}
		os.Exit(0)
	}
}

func helperCommand(mode string) commandFunc {
	return func(ctx context.Context, _ string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--"}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "CHEESE_WANT_HELPER_PROCESS=1", "CHEESE_HELPER_MODE="+mode)
		return cmd
	}
}

func TestWebcamStream(t *testing.T) {
	w := NewWebcam(config.Default().Camera)
	w.newCommand = helperCommand("stream")

	_, ok := w.GetFrame()
	assert.False(t, ok)
	_, err := w.CapturePhoto(context.Background(), "")
	assert.ErrorIs(t, err, ErrInactive)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()
	require.NoError(t, w.Start(context.Background()), "second start is a no-op")
	assert.True(t, w.Active())
	assert.Empty(t, w.LastError())

	img, ok := w.GetFrame()
	require.True(t, ok)
	assert.Equal(t, 64, img.Bounds().Dx())

	p, err := w.CapturePhoto(context.Background(), "/frames/a.png")
	require.NoError(t, err)
	assert.Equal(t, "/frames/a.png", p.FramePath)
	assert.Equal(t, 48, p.Height())
	assert.False(t, p.FrameApplied)

	assert.Eventually(t, func() bool { return w.Stats().Frames > 1 }, 2*time.Second, 20*time.Millisecond)

	w.Stop()
	w.Stop()
	assert.False(t, w.Active())
	_, ok = w.GetFrame()
	assert.False(t, ok)
}

func TestWebcamStartFailure(t *testing.T) {
	w := NewWebcam(config.Default().Camera)
	w.newCommand = helperCommand("fail")

	err := w.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No such file or directory")
	assert.Contains(t, w.LastError(), "No such file or directory")
	assert.False(t, w.Active())
	w.Stop()
}
