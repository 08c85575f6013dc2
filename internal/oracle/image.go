package oracle

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// jpegQuality trades upload size against descriptor fidelity. The oracle
// works from gross anatomical features, so mild compression is safe.
const jpegQuality = 85

// ResizeImage prepares a capture for upload: it decodes the image (JPEG,
// PNG or BMP), scales it down so the longer edge fits within maxSize, and
// encodes the result as JPEG. Captures already within bounds are still
// re-encoded so every provider receives the same format.
func ResizeImage(data []byte, maxSize int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode capture: %w", err)
	}

	out := src
	width, height := fitWithin(src.Bounds(), maxSize)
	if width != src.Bounds().Dx() || height != src.Bounds().Dy() {
		scaled := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Over, nil)
		out = scaled
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode capture: %w", err)
	}
	return buf.Bytes(), nil
}

// fitWithin returns the capture dimensions scaled so the longer edge is at
// most maxSize, preserving aspect ratio. Within-bounds dimensions pass
// through unchanged.
func fitWithin(bounds image.Rectangle, maxSize int) (int, int) {
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxSize && height <= maxSize {
		return width, height
	}
	if width > height {
		return maxSize, height * maxSize / width
	}
	return width * maxSize / height, maxSize
}
