// Package image provides background image decoding for the floorplan canvas.
package image

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"floorplan-mapper/pkg/geometry"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrEmptyImage is returned when the decoded image has no pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// Layer is a decoded raster image drawn beneath the floorplan shapes.
type Layer struct {
	Source string      // File path or "data-url"; informational only
	Format string      // Decoder name reported by image.Decode
	Image  image.Image // Decoded image data
}

// NewLayer wraps an already decoded image.
func NewLayer(img image.Image) *Layer {
	return &Layer{Image: img}
}

// Decode reads an encoded image from r.
func Decode(r io.Reader) (*Layer, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	return &Layer{Image: img, Format: format}, nil
}

// DataURLBytes extracts the encoded image bytes from a data URL.
func DataURLBytes(url string) ([]byte, error) {
	payload := url
	if strings.HasPrefix(url, "data:") {
		i := strings.Index(url, ",")
		if i < 0 || !strings.Contains(url[:i], ";base64") {
			return nil, fmt.Errorf("unsupported data url")
		}
		payload = url[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data url: %w", err)
	}
	return raw, nil
}

// EncodeDataURL wraps encoded image bytes in a data URL, sniffing the MIME type.
func EncodeDataURL(raw []byte) string {
	mime := "image/png"
	if _, format, err := image.DecodeConfig(bytes.NewReader(raw)); err == nil {
		mime = "image/" + format
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw)
}

// Width returns the image width in pixels.
func (l *Layer) Width() int {
	if l == nil || l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (l *Layer) Height() int {
	if l == nil || l.Image == nil {
		return 0
	}
	return l.Image.Bounds().Dy()
}

// Size returns the image dimensions.
func (l *Layer) Size() geometry.Size {
	return geometry.Size{
		Width:  float64(l.Width()),
		Height: float64(l.Height()),
	}
}

// SupportedFormats returns the list of supported image formats.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".tif", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
