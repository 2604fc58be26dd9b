package compositor

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	pigo "github.com/esimov/pigo/core"
)

// FaceDetector finds faces in an image, in the image's coordinates.
type FaceDetector interface {
	Detect(img image.Image) []image.Rectangle
}

// detectWidth is the width images are reduced to before running the cascade.
const detectWidth = 640

// PigoDetector runs a pigo cascade classifier.
type PigoDetector struct {
	classifier *pigo.Pigo
	minQuality float32
}

// NewFaceDetector unpacks a pigo facefinder cascade.
func NewFaceDetector(cascade []byte) (*PigoDetector, error) {
	p := pigo.NewPigo()
	classifier, err := p.Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("unpacking face cascade: %w", err)
	}
	return &PigoDetector{classifier: classifier, minQuality: 5.0}, nil
}

// Detect returns the faces found in img.
func (d *PigoDetector) Detect(img image.Image) []image.Rectangle {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil
	}

	ratio := 1.0
	small := img
	if b.Dx() > detectWidth {
		ratio = float64(b.Dx()) / detectWidth
		small = imaging.Resize(img, detectWidth, 0, imaging.Box)
	}
	sb := small.Bounds()
	cols, rows := sb.Dx(), sb.Dy()

	params := pigo.CascadeParams{
		MinSize:     20,
		MaxSize:     max(cols, rows),
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(small),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, 0.2)

	var faces []image.Rectangle
	for _, det := range dets {
		if det.Q < d.minQuality {
			continue
		}
		half := det.Scale / 2
		r := image.Rect(det.Col-half, det.Row-half, det.Col+half, det.Row+half)
		faces = append(faces, image.Rect(
			b.Min.X+int(float64(r.Min.X)*ratio),
			b.Min.Y+int(float64(r.Min.Y)*ratio),
			b.Min.X+int(float64(r.Max.X)*ratio),
			b.Min.Y+int(float64(r.Max.Y)*ratio),
		))
	}
	return faces
}

// centerOf returns the center of the bounding box of all faces.
func centerOf(faces []image.Rectangle) image.Point {
	box := faces[0]
	for _, f := range faces[1:] {
		box = box.Union(f)
	}
	return image.Pt((box.Min.X+box.Max.X)/2, (box.Min.Y+box.Max.Y)/2)
}
