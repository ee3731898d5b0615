package models

import (
	"time"

	"github.com/spf13/cast"
)

// QRLink is one trackable redirect target. At rest it is a string-valued
// hash record; ToFields/LinkFromFields translate between the two shapes.
type QRLink struct {
	ID          string `json:"id"`
	OriginalURL string `json:"original_url"`
	CreatedAt   string `json:"created_at"`
	ScanCount   int64  `json:"scan_count"`
	Tracking    bool   `json:"tracking"`
	QRImage     string `json:"qr_image,omitempty"` // legacy alias of the PNG, kept for old records
	QRImagePNG  string `json:"qr_image_png,omitempty"`
	QRImageSVG  string `json:"qr_image_svg,omitempty"`
}

func (l *QRLink) ToFields() map[string]string {
	tracking := "true"
	if !l.Tracking {
		tracking = "false"
	}
	return map[string]string{
		"id":           l.ID,
		"original_url": l.OriginalURL,
		"created_at":   l.CreatedAt,
		"scan_count":   cast.ToString(l.ScanCount),
		"tracking":     tracking,
		"qr_image":     l.QRImage,
		"qr_image_png": l.QRImagePNG,
		"qr_image_svg": l.QRImageSVG,
	}
}

// LinkFromFields rebuilds a link from a hash record. Returns nil for an
// empty record, which is how the backend reports a missing key.
func LinkFromFields(fields map[string]string) *QRLink {
	if len(fields) == 0 {
		return nil
	}
	return &QRLink{
		ID:          fields["id"],
		OriginalURL: fields["original_url"],
		CreatedAt:   fields["created_at"],
		ScanCount:   cast.ToInt64(fields["scan_count"]),
		// Anything but an explicit "false" counts as enabled, matching
		// records written before the field existed.
		Tracking:   fields["tracking"] != "false",
		QRImage:    fields["qr_image"],
		QRImagePNG: fields["qr_image_png"],
		QRImageSVG: fields["qr_image_svg"],
	}
}

func (l *QRLink) CreatedAtTime() time.Time {
	t, err := time.Parse(time.RFC3339, l.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}
