// Package imaging decodes submitted camera frames and prepares face
// crops for storage and comparison.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// jpegQuality is used when a face crop is re-encoded for storage.
const jpegQuality = 90

// DecodePayload turns a text-safe image payload into a pixel buffer.
// Browser captures arrive as data URIs ("data:image/png;base64,...");
// the header is stripped before base64 decoding. A bare base64 string
// is accepted as well.
func DecodePayload(payload string) (image.Image, error) {
	data := payload
	if strings.HasPrefix(data, "data:") {
		idx := strings.IndexByte(data, ',')
		if idx < 0 {
			return nil, fmt.Errorf("malformed data URI")
		}
		data = data[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("image decode: %w", err)
	}
	return img, nil
}

// Grayscale converts any image to an 8-bit grayscale buffer anchored
// at the origin.
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Bounds(), img, bounds.Min, draw.Src)
	return gray
}

// Crop copies the region r out of img into a fresh buffer. The region
// is clamped to the image bounds.
func Crop(img image.Image, r image.Rectangle) image.Image {
	r = r.Intersect(img.Bounds())
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}

// CropGray returns the sub-image of a grayscale buffer covering r.
// The result shares pixels with the original.
func CropGray(img *image.Gray, r image.Rectangle) *image.Gray {
	return img.SubImage(r.Intersect(img.Bounds())).(*image.Gray)
}

// EncodeJPEG compresses an image for blob storage.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}
