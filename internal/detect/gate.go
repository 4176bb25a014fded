package detect

import "errors"

// A face must cover at least this share of the frame to be accepted.
// A face at exactly the boundary passes.
const minFaceFrameRatio = 0.10

var (
	ErrNoFace         = errors.New("no face detected")
	ErrMultipleFaces  = errors.New("multiple faces detected")
	ErrFaceTooDistant = errors.New("face too distant")
)

// SelectFace applies the acceptance policy to a detection result:
// exactly one face must be present and it must not be too far from the
// camera. The same policy runs at enrollment and at verification.
func SelectFace(boxes []Box, frameWidth, frameHeight int) (Box, error) {
	if len(boxes) == 0 {
		return Box{}, ErrNoFace
	}
	if len(boxes) > 1 {
		return Box{}, ErrMultipleFaces
	}

	face := boxes[0]
	frameArea := float64(frameWidth * frameHeight)
	if float64(face.Area()) < minFaceFrameRatio*frameArea {
		return Box{}, ErrFaceTooDistant
	}
	return face, nil
}
