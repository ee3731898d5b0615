package services

import (
	"context"
	"fmt"
	"qrtrack/internal/models"
	"qrtrack/internal/providers"
	"qrtrack/internal/store"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// RawScan is what the boundary layer observed. Any field may be empty.
type RawScan struct {
	QRID      string `json:"qr_id"`
	UserAgent string `json:"user_agent"`
	IPAddress string `json:"ip_address"`
	Country   string `json:"country"`
	Region    string `json:"region"`
	City      string `json:"city"`
	Referer   string `json:"referer"`
}

type ScanServiceInterface interface {
	Ingest(ctx context.Context, raw RawScan) (*models.ScanEvent, error)
}

type ScanService struct {
	store   store.KeyValueStore
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	now     func() time.Time
}

func NewScanService(kv store.KeyValueStore, logger providers.Logger, metrics providers.MetricsProviderInterface) ScanServiceInterface {
	return &ScanService{
		store:   kv,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

func defaulted(val string) string {
	if val == "" {
		return models.UnknownField
	}
	return val
}

// Ingest enriches a raw scan and persists it. Link existence is the
// caller's contract; it is not re-checked here. The three writes
// (history append, counter increment, unique-set add) run in that order
// with no rollback: a failure mid-sequence leaves the earlier effects in
// place, which the design accepts.
func (ss *ScanService) Ingest(ctx context.Context, raw RawScan) (*models.ScanEvent, error) {
	ua := models.ClassifyUserAgent(raw.UserAgent)

	event := &models.ScanEvent{
		ID:         uuid.NewString(),
		QRID:       raw.QRID,
		ScannedAt:  ss.now().UTC().Format(time.RFC3339),
		UserAgent:  defaulted(raw.UserAgent),
		IPAddress:  defaulted(raw.IPAddress),
		Country:    defaulted(raw.Country),
		Region:     defaulted(raw.Region),
		City:       defaulted(raw.City),
		Referer:    raw.Referer,
		DeviceType: ua.DeviceType,
		OS:         ua.OS,
		Browser:    ua.Browser,
		IsBot:      ua.IsBot,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal scan: %w", err)
	}

	if err := ss.store.LPush(ctx, keyScans(raw.QRID), string(payload)); err != nil {
		return nil, fmt.Errorf("append scan: %w", err)
	}
	if _, err := ss.store.HIncrBy(ctx, keyLink(raw.QRID), "scan_count", 1); err != nil {
		return nil, fmt.Errorf("increment scan count: %w", err)
	}
	if err := ss.store.SAdd(ctx, keyUniques(raw.QRID), event.UniqueKey()); err != nil {
		return nil, fmt.Errorf("record unique visitor: %w", err)
	}

	ss.metrics.IncScansTotal(event.DeviceType)
	ss.logger.Debugf(providers.TypeGet, "Scan %s recorded for link %s", event.ID, raw.QRID)

	return event, nil
}
