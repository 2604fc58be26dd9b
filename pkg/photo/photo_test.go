package photo

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilename(t *testing.T) {
	p := &Photo{Timestamp: time.Date(2026, 10, 19, 15, 4, 5, 0, time.Local)}
	assert.Equal(t, "photo_20261019_150405.jpg", p.Filename())
}

func TestDimensions(t *testing.T) {
	p := New(image.NewRGBA(image.Rect(0, 0, 80, 60)), "")
	assert.Equal(t, 80, p.Width())
	assert.Equal(t, 60, p.Height())
	assert.False(t, p.FrameApplied)
	assert.WithinDuration(t, time.Now(), p.Timestamp, time.Second)

	empty := &Photo{}
	assert.Equal(t, 0, empty.Width())
	assert.Nil(t, empty.ToRGB())
}

func TestToRGB(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.Set(1, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	p := New(img, "")
	assert.Equal(t, []byte{10, 20, 30, 200, 100, 50}, p.ToRGB())
}
