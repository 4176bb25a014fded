package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodeTestPNG(t *testing.T, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestDecodePayloadStripsDataURI(t *testing.T) {
	encoded := encodeTestPNG(t, solidImage(8, 6, color.White))

	img, err := DecodePayload("data:image/png;base64," + encoded)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Fatalf("unexpected dimensions: %v", img.Bounds())
	}
}

func TestDecodePayloadAcceptsBareBase64(t *testing.T) {
	encoded := encodeTestPNG(t, solidImage(4, 4, color.Black))

	if _, err := DecodePayload(encoded); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
}

func TestDecodePayloadRejectsInvalidBase64(t *testing.T) {
	if _, err := DecodePayload("data:image/png;base64,@@not-base64@@"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestDecodePayloadRejectsNonImageBytes(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("definitely not pixels"))
	if _, err := DecodePayload(encoded); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestDecodePayloadRejectsHeaderWithoutBody(t *testing.T) {
	if _, err := DecodePayload("data:image/png;base64"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestCropClampsToBounds(t *testing.T) {
	src := solidImage(10, 10, color.White)

	crop := Crop(src, image.Rect(6, 6, 20, 20))
	if crop.Bounds().Dx() != 4 || crop.Bounds().Dy() != 4 {
		t.Fatalf("unexpected crop size: %v", crop.Bounds())
	}
}

func TestGrayscaleAnchorsAtOrigin(t *testing.T) {
	src := solidImage(12, 8, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	gray := Grayscale(src)
	if gray.Bounds().Min != image.Pt(0, 0) {
		t.Fatalf("expected origin bounds, got %v", gray.Bounds())
	}
	if gray.Bounds().Dx() != 12 || gray.Bounds().Dy() != 8 {
		t.Fatalf("unexpected dimensions: %v", gray.Bounds())
	}
}

func TestCropGraySharesRegion(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 10, 10))
	gray.SetGray(5, 5, color.Gray{Y: 77})

	crop := CropGray(gray, image.Rect(4, 4, 8, 8))
	if crop.GrayAt(5, 5).Y != 77 {
		t.Fatalf("expected shared pixel value 77, got %d", crop.GrayAt(5, 5).Y)
	}
}

func TestEncodeJPEGRoundTrips(t *testing.T) {
	src := solidImage(16, 16, color.RGBA{R: 120, G: 120, B: 120, A: 255})

	data, err := EncodeJPEG(src)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	decoded, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode output: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("expected jpeg, got %s", format)
	}
	if decoded.Bounds() != src.Bounds() {
		t.Fatalf("unexpected bounds: %v", decoded.Bounds())
	}
}
