// Package detect finds face regions in camera frames and applies the
// acceptance policy shared by enrollment and verification.
package detect

import (
	"errors"
	"image"
)

// ErrDetectorUnavailable signals that the detector resource itself
// could not be initialized or used. It is fatal for the request and
// never retried within it.
var ErrDetectorUnavailable = errors.New("face detector unavailable")

// Box is a detected face region in pixel coordinates.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Rect converts the box to an image rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

// Area returns the box area in pixels.
func (b Box) Area() int {
	return b.W * b.H
}

// Locator finds candidate face regions in a grayscale frame. The
// concrete detector is a heavyweight resource constructed once per
// process and safe for concurrent use; it is injected so tests can
// substitute a fake.
type Locator interface {
	Locate(gray *image.Gray) ([]Box, error)
}
