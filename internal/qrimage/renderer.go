package qrimage

import (
	"encoding/base64"
	"fmt"
	"qrtrack/internal/structures"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

type RendererInterface interface {
	RenderPNG(content string) (string, error)
	RenderSVG(content string) (string, error)
}

// QRRenderer encodes redirect URLs into QR images. Matrix encoding is
// delegated to the codec library; this type only picks output formats.
// PNG comes back as a data URL, SVG as markup, matching what the web UI
// and stored records expect.
type QRRenderer struct {
	size   int
	border bool
}

func NewQRRenderer(conf *structures.Config) RendererInterface {
	return &QRRenderer{
		size:   conf.QR.Size,
		border: conf.QR.Border > 0,
	}
}

func (r *QRRenderer) newCode(content string) (*qrcode.QRCode, error) {
	q, err := qrcode.New(content, qrcode.Highest)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	q.DisableBorder = !r.border
	return q, nil
}

func (r *QRRenderer) RenderPNG(content string) (string, error) {
	q, err := r.newCode(content)
	if err != nil {
		return "", err
	}
	png, err := q.PNG(r.size)
	if err != nil {
		return "", fmt.Errorf("qr png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// RenderSVG rasterizes the encoded bitmap into one rect per dark module.
// The codec library has no SVG output of its own.
func (r *QRRenderer) RenderSVG(content string) (string, error) {
	q, err := r.newCode(content)
	if err != nil {
		return "", err
	}

	bitmap := q.Bitmap()
	n := len(bitmap)
	if n == 0 {
		return "", fmt.Errorf("qr svg: empty bitmap")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`,
		r.size, r.size, n, n)
	sb.WriteString(`<rect width="100%" height="100%" fill="#ffffff"/>`)
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="1" height="1" fill="#000000"/>`, x, y)
			}
		}
	}
	sb.WriteString(`</svg>`)
	return sb.String(), nil
}
