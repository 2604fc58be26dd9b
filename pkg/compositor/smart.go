package compositor

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"
)

// smartCropper picks the most interesting w:h window with smartcrop, then scales it.
type smartCropper struct {
	filter imaging.ResampleFilter
}

func (s *smartCropper) crop(img image.Image, w, h int) (image.Image, error) {
	analyzer := smartcrop.NewAnalyzer(&resizer{resampler: s.filter})
	best, err := analyzer.FindBestCrop(img, w, h)
	if err != nil {
		return nil, fmt.Errorf("finding best crop: %w", err)
	}
	if best.Empty() {
		return nil, fmt.Errorf("empty crop")
	}
	return imaging.Resize(imaging.Crop(img, best), w, h, s.filter), nil
}

// resizer implements the smartcrop.Resizer interface.
type resizer struct {
	resampler imaging.ResampleFilter
}

func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.resampler)
}
