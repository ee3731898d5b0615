package qrimage

import (
	"encoding/base64"
	"qrtrack/internal/structures"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rendererConfig(size, border int) *structures.Config {
	return &structures.Config{
		QR: structures.QRConfig{Size: size, Border: border},
	}
}

func TestQRRenderer_RenderPNG(t *testing.T) {
	r := NewQRRenderer(rendererConfig(256, 2))

	out, err := r.RenderPNG("https://example.com/redirect/abc")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(out, "data:image/png;base64,"))
	require.NoError(t, err)
	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, raw[:4])
}

func TestQRRenderer_RenderSVG(t *testing.T) {
	r := NewQRRenderer(rendererConfig(1024, 2))

	out, err := r.RenderSVG("https://example.com/redirect/abc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.True(t, strings.HasSuffix(out, "</svg>"))
	assert.Contains(t, out, `width="1024"`)
	assert.Contains(t, out, `fill="#000000"`)
}

func TestQRRenderer_SVGDiffersPerContent(t *testing.T) {
	r := NewQRRenderer(rendererConfig(512, 0))

	a, err := r.RenderSVG("https://example.com/redirect/aaa")
	require.NoError(t, err)
	b, err := r.RenderSVG("https://example.com/redirect/bbb")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestQRRenderer_EmptyContentFails(t *testing.T) {
	r := NewQRRenderer(rendererConfig(256, 2))

	_, err := r.RenderPNG("")
	assert.Error(t, err)
}
