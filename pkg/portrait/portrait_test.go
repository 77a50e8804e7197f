package portrait

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encoded(t *testing.T, w, h int, format imaging.Format) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 120, G: 40, B: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

func decodeURL(t *testing.T, url string) (string, image.Image) {
	t.Helper()
	header, payload, ok := strings.Cut(url, ",")
	require.True(t, ok)
	data, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return header, img
}

func TestFromBytesShrinksLargeImages(t *testing.T) {
	url, err := FromBytes(encoded(t, 1200, 600, imaging.JPEG), 300)
	require.NoError(t, err)

	header, img := decodeURL(t, url)
	assert.Equal(t, "data:image/jpeg;base64", header)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}

func TestFromBytesKeepsSmallPNG(t *testing.T) {
	url, err := FromBytes(encoded(t, 40, 20, imaging.PNG), 0)
	require.NoError(t, err)

	header, img := decodeURL(t, url)
	assert.Equal(t, "data:image/png;base64", header)
	assert.Equal(t, image.Pt(40, 20), img.Bounds().Size())
}

func TestFromBytesRejectsNonImages(t *testing.T) {
	_, err := FromBytes([]byte("hello, I am plain text"), 0)
	assert.ErrorIs(t, err, ErrNotImage)
}

// Lossless 1x1 WebP.
const webpPixel = "UklGRhoAAABXRUJQVlA4TA0AAAAvAAAAEAcQERGIiP4HAA=="

func TestFromBytesReencodesWebPAsPNG(t *testing.T) {
	data, err := base64.StdEncoding.DecodeString(webpPixel)
	require.NoError(t, err)

	url, err := FromBytes(data, 0)
	require.NoError(t, err)
	header, img := decodeURL(t, url)
	assert.Equal(t, "data:image/png;base64", header)
	assert.Equal(t, image.Pt(1, 1), img.Bounds().Size())
}

func TestFromBytesKeepsUndecodableImages(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="8" height="8"><circle r="4"/></svg>`)
	url, err := FromBytes(svg, 0)
	require.NoError(t, err)
	assert.Equal(t, "data:image/svg+xml;base64,"+base64.StdEncoding.EncodeToString(svg), url)
}

func TestNormalize(t *testing.T) {
	remote := "https://example.com/portrait.png"
	assert.Equal(t, remote, Normalize(remote, 0))

	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(encoded(t, 1000, 1000, imaging.PNG))
	_, img := decodeURL(t, Normalize(src, 100))
	assert.Equal(t, image.Pt(100, 100), img.Bounds().Size())

	text := "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello, I am plain text"))
	for _, kept := range []string{"data:...xyz", "data:image/png,raw", "data:image/png;base64,!!!", text} {
		assert.Equal(t, kept, Normalize(kept, 0))
	}
}
