package services

import (
	"context"
	"fmt"
	"net/url"
	"qrtrack/internal/models"
	"qrtrack/internal/providers"
	"qrtrack/internal/qrimage"
	"qrtrack/internal/store"
	"sort"
	"time"

	"github.com/google/uuid"
)

type CreateLinkParams struct {
	ID          string
	OriginalURL string
	Tracking    bool
	ImagePNG    string
	ImageSVG    string
}

type LinkServiceInterface interface {
	Create(ctx context.Context, params CreateLinkParams) (*models.QRLink, error)
	Get(ctx context.Context, id string) (*models.QRLink, error)
	GetAll(ctx context.Context) ([]*models.QRLink, error)
	Update(ctx context.Context, id string, fields map[string]string) (*models.QRLink, error)
	Delete(ctx context.Context, id string) error
}

type LinkService struct {
	store  store.KeyValueStore
	codec  qrimage.BlobCodecInterface
	logger providers.Logger
}

func NewLinkService(kv store.KeyValueStore, codec qrimage.BlobCodecInterface, logger providers.Logger) LinkServiceInterface {
	return &LinkService{
		store:  kv,
		codec:  codec,
		logger: logger,
	}
}

// ValidateTargetURL accepts only absolute http(s) URLs.
func ValidateTargetURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

func (ls *LinkService) Create(ctx context.Context, params CreateLinkParams) (*models.QRLink, error) {
	if err := ValidateTargetURL(params.OriginalURL); err != nil {
		return nil, err
	}

	id := params.ID
	if id == "" {
		id = uuid.NewString()
	}

	link := &models.QRLink{
		ID:          id,
		OriginalURL: params.OriginalURL,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		ScanCount:   0,
		Tracking:    params.Tracking,
		QRImage:     params.ImagePNG,
		QRImagePNG:  params.ImagePNG,
		QRImageSVG:  params.ImageSVG,
	}

	fields := link.ToFields()
	if err := ls.encodeImageFields(fields); err != nil {
		return nil, err
	}

	if err := ls.store.HSet(ctx, keyLink(id), fields); err != nil {
		return nil, fmt.Errorf("store link: %w", err)
	}

	// The id index is best-effort: listing treats a broken index as
	// "no entities", it never fails a create.
	if err := ls.store.SAdd(ctx, keyAllIDs, id); err != nil {
		ls.logger.Warnf(providers.TypeApp, "Failed to index link %s: %s", id, err)
	}

	return link, nil
}

func (ls *LinkService) Get(ctx context.Context, id string) (*models.QRLink, error) {
	fields, err := ls.store.HGetAll(ctx, keyLink(id))
	if err != nil {
		return nil, fmt.Errorf("fetch link: %w", err)
	}
	link := models.LinkFromFields(fields)
	if link == nil {
		return nil, ErrNotFound
	}
	ls.decodeImageFields(link)
	return link, nil
}

func (ls *LinkService) GetAll(ctx context.Context) ([]*models.QRLink, error) {
	ids, err := ls.store.SMembers(ctx, keyAllIDs)
	if err != nil {
		// A failed index lookup means "no entities", not an error.
		ls.logger.Warnf(providers.TypeApp, "Id index lookup failed: %s", err)
		return []*models.QRLink{}, nil
	}

	links := make([]*models.QRLink, 0, len(ids))
	for _, id := range ids {
		fields, err := ls.store.HGetAll(ctx, keyLink(id))
		if err != nil {
			ls.logger.Warnf(providers.TypeApp, "Skipping unreadable link %s: %s", id, err)
			continue
		}
		if link := models.LinkFromFields(fields); link != nil {
			ls.decodeImageFields(link)
			links = append(links, link)
		}
	}

	sort.SliceStable(links, func(i, j int) bool {
		return links[i].CreatedAtTime().After(links[j].CreatedAtTime())
	})
	return links, nil
}

func (ls *LinkService) Update(ctx context.Context, id string, fields map[string]string) (*models.QRLink, error) {
	existing, err := ls.store.HGetAll(ctx, keyLink(id))
	if err != nil {
		return nil, fmt.Errorf("fetch link: %w", err)
	}
	if len(existing) == 0 {
		return nil, ErrNotFound
	}

	update := make(map[string]string, len(fields))
	for k, v := range fields {
		update[k] = v
	}
	if err := ls.encodeImageFields(update); err != nil {
		return nil, err
	}

	if err := ls.store.HSet(ctx, keyLink(id), update); err != nil {
		return nil, fmt.Errorf("update link: %w", err)
	}
	return ls.Get(ctx, id)
}

// Delete removes the link record, its scan history and its unique set.
// The steps are not atomic: a failure can leave sub-keys orphaned while
// the link itself is already gone, which is accepted behavior.
func (ls *LinkService) Delete(ctx context.Context, id string) error {
	existing, err := ls.store.HGetAll(ctx, keyLink(id))
	if err != nil {
		return fmt.Errorf("fetch link: %w", err)
	}
	if len(existing) == 0 {
		return ErrNotFound
	}

	if err := ls.store.Del(ctx, keyLink(id), keyScans(id), keyUniques(id)); err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	if err := ls.store.SRem(ctx, keyAllIDs, id); err != nil {
		ls.logger.Warnf(providers.TypeApp, "Failed to unindex link %s: %s", id, err)
	}
	return nil
}

var imageFieldNames = []string{"qr_image", "qr_image_png", "qr_image_svg"}

func (ls *LinkService) encodeImageFields(fields map[string]string) error {
	for _, name := range imageFieldNames {
		val, ok := fields[name]
		if !ok || val == "" {
			continue
		}
		encoded, err := ls.codec.Encode(val)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		fields[name] = encoded
	}
	return nil
}

func (ls *LinkService) decodeImageFields(link *models.QRLink) {
	link.QRImage = ls.decodeBlob(link.ID, "qr_image", link.QRImage)
	link.QRImagePNG = ls.decodeBlob(link.ID, "qr_image_png", link.QRImagePNG)
	link.QRImageSVG = ls.decodeBlob(link.ID, "qr_image_svg", link.QRImageSVG)
}

func (ls *LinkService) decodeBlob(id, name, val string) string {
	decoded, err := ls.codec.Decode(val)
	if err != nil {
		ls.logger.Warnf(providers.TypeApp, "Corrupt %s blob on link %s: %s", name, id, err)
		return ""
	}
	return decoded
}
