// Package portrait turns picked image files into data URLs small enough for
// browser localStorage, which most browsers cap at about 5 MB per origin.
package portrait

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

// DefaultMaxDim bounds the longest side of a stored portrait in pixels.
const DefaultMaxDim = 512

const jpegQuality = 85

// ErrNotImage is returned for bytes whose detected type is not image/*.
var ErrNotImage = errors.New("not an image")

// FromBytes detects the image type of data, shrinks it so neither side
// exceeds maxDim (0 means DefaultMaxDim) and returns a base64 data URL.
// PNG, GIF and WebP sources are re-encoded as PNG to keep transparency;
// other decodable formats become JPEG. Images the decoder does not support,
// such as SVG, are embedded unchanged.
func FromBytes(data []byte, maxDim int) (string, error) {
	if maxDim <= 0 {
		maxDim = DefaultMaxDim
	}
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotImage, mime.String())
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return dataURL(mime.String(), data), nil
	}
	img = fit(img, maxDim)

	format, outMime := imaging.JPEG, "image/jpeg"
	if mime.Is("image/png") || mime.Is("image/gif") || mime.Is("image/webp") {
		format, outMime = imaging.PNG, "image/png"
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(jpegQuality)); err != nil {
		return "", fmt.Errorf("encode %s: %w", outMime, err)
	}
	return dataURL(outMime, buf.Bytes()), nil
}

// Normalize re-encodes base64 image data URLs with FromBytes. Anything it
// cannot re-encode, including remote URLs, non-base64 data URLs and payloads
// that are not images, is returned as given.
func Normalize(url string, maxDim int) string {
	if !strings.HasPrefix(url, "data:") {
		return url
	}
	data, ok := decodeDataURL(url)
	if !ok {
		return url
	}
	out, err := FromBytes(data, maxDim)
	if err != nil {
		return url
	}
	return out
}

func fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxDim && b.Dy() <= maxDim {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}

func dataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func decodeDataURL(url string) ([]byte, bool) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(url, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, false
	}
	return data, true
}
