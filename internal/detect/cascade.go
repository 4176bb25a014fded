package detect

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Frontal-face detector tuning. Candidates must be corroborated by at
// least seven overlapping windows, and faces smaller than 120x120
// pixels are rejected as too unreliable to distinguish.
const (
	cascadeScaleFactor  = 1.1
	cascadeMinNeighbors = 7
	minFaceSide         = 120
)

// CascadeLocator detects frontal faces with an OpenCV Haar cascade.
// The classifier is read-only after loading and safe for concurrent
// detection calls.
type CascadeLocator struct {
	classifier gocv.CascadeClassifier
}

// NewCascadeLocator loads the cascade model from the given XML file.
func NewCascadeLocator(cascadePath string) (*CascadeLocator, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cascadePath) {
		classifier.Close() //nolint:errcheck
		return nil, fmt.Errorf("%w: cannot load cascade model %q", ErrDetectorUnavailable, cascadePath)
	}
	return &CascadeLocator{classifier: classifier}, nil
}

// Close releases the underlying classifier.
func (l *CascadeLocator) Close() error {
	return l.classifier.Close()
}

// Locate runs multi-scale detection over a grayscale frame.
func (l *CascadeLocator) Locate(gray *image.Gray) ([]Box, error) {
	mat, err := grayToMat(gray)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDetectorUnavailable, err)
	}
	defer mat.Close() //nolint:errcheck

	rects := l.classifier.DetectMultiScaleWithParams(
		mat,
		cascadeScaleFactor,
		cascadeMinNeighbors,
		0,
		image.Pt(minFaceSide, minFaceSide),
		image.Pt(0, 0),
	)

	boxes := make([]Box, 0, len(rects))
	for _, r := range rects {
		boxes = append(boxes, Box{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()})
	}
	return boxes, nil
}

func grayToMat(gray *image.Gray) (gocv.Mat, error) {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	pix := gray.Pix
	if gray.Stride != width || bounds.Min != image.Pt(0, 0) {
		pix = make([]byte, 0, width*height)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			offset := gray.PixOffset(bounds.Min.X, y)
			pix = append(pix, gray.Pix[offset:offset+width]...)
		}
	}
	return gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC1, pix)
}
