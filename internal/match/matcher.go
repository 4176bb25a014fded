// Package match scores the similarity of two face crops.
//
// The comparison is a coarse appearance heuristic: both crops are
// resized to a canonical 200x200, reduced to normalized 256-bin
// intensity histograms and compared with Pearson correlation. It is
// deliberately sensitive to pose and lighting; it is not a face
// embedding.
package match

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

const (
	canonicalSize = 200
	histogramBins = 256

	// MatchThreshold is the minimum correlation for two crops to be
	// considered the same face.
	MatchThreshold = 0.70
)

// Similarity returns the Pearson correlation between the normalized
// intensity histograms of two face crops, in [-1, 1]. The score is
// symmetric in its arguments.
func Similarity(a, b *image.Gray) float64 {
	histA := histogram(canonicalize(a))
	histB := histogram(canonicalize(b))
	normalize(histA[:])
	normalize(histB[:])
	return correlation(histA[:], histB[:])
}

// Matches reports whether two crops pass the fixed match threshold,
// along with the underlying score.
func Matches(a, b *image.Gray) (float64, bool) {
	score := Similarity(a, b)
	return score, score >= MatchThreshold
}

func canonicalize(src *image.Gray) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, canonicalSize, canonicalSize))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func histogram(img *image.Gray) [histogramBins]float64 {
	var hist [histogramBins]float64
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		offset := img.PixOffset(bounds.Min.X, y)
		for x := 0; x < bounds.Dx(); x++ {
			hist[img.Pix[offset+x]]++
		}
	}
	return hist
}

// normalize scales a histogram to unit L2 norm so the comparison is
// exposure-invariant to first order.
func normalize(hist []float64) {
	var sumSquares float64
	for _, v := range hist {
		sumSquares += v * v
	}
	if sumSquares == 0 {
		return
	}
	norm := math.Sqrt(sumSquares)
	for i := range hist {
		hist[i] /= norm
	}
}

func correlation(a, b []float64) float64 {
	n := float64(len(a))
	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}

	denom := math.Sqrt(varA * varB)
	if denom == 0 {
		return 0
	}
	return cov / denom
}
