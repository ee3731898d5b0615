package services

import (
	"context"
	"qrtrack/internal/models"
	"qrtrack/internal/providers"
	"qrtrack/internal/store"
	"qrtrack/internal/structures"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const topBreakdownEntries = 10

// Breakdowns groups every categorical dimension computed over a scan
// history. Countries, regions and cities are truncated to the top ten;
// the closed-vocabulary dimensions are unbounded.
type Breakdowns struct {
	Countries []models.Breakdown `json:"countries"`
	Regions   []models.Breakdown `json:"regions"`
	Cities    []models.Breakdown `json:"cities"`
	Devices   []models.Breakdown `json:"devices"`
	OS        []models.Breakdown `json:"os"`
	Browsers  []models.Breakdown `json:"browsers"`
	Hours     []models.Breakdown `json:"hours"`
	Weekdays  []models.Breakdown `json:"weekdays"`
}

// LinkStats is the per-link aggregated view: the link's own fields merged
// with its full history and the derived series.
type LinkStats struct {
	models.QRLink
	UniqueVisitors int64               `json:"unique_visitors"`
	Scans          []*models.ScanEvent `json:"scans"`
	SeriesDaily    []models.DailyPoint `json:"series_daily"`
	Breakdowns     *Breakdowns         `json:"breakdowns"`
}

type TopQR struct {
	ID          string `json:"id"`
	ScanCount   int64  `json:"scan_count"`
	OriginalURL string `json:"original_url"`
}

type GlobalStats struct {
	TotalQRs            int                 `json:"total_qrs"`
	TotalScans          int                 `json:"total_scans"`
	TotalUniqueVisitors int                 `json:"total_unique_visitors"`
	SeriesDaily         []models.DailyPoint `json:"series_daily"`
	Breakdowns          *Breakdowns         `json:"breakdowns"`
	TopQRs              []TopQR             `json:"top_qrs"`
}

type StatsServiceInterface interface {
	BuildDailySeries(events []*models.ScanEvent, days, tzOffsetMinutes int) []models.DailyPoint
	BuildBreakdowns(events []*models.ScanEvent, tzOffsetMinutes int) *Breakdowns
	GetStats(ctx context.Context, id string, days, tzOffsetMinutes int) (*LinkStats, error)
	GetGlobalStats(ctx context.Context, days, tzOffsetMinutes int) (*GlobalStats, error)
}

type StatsService struct {
	store    store.KeyValueStore
	links    LinkServiceInterface
	logger   providers.Logger
	topLinks int
	now      func() time.Time
}

func NewStatsService(conf *structures.Config, kv store.KeyValueStore, links LinkServiceInterface, logger providers.Logger) StatsServiceInterface {
	topLinks := conf.Stats.TopLinks
	if topLinks <= 0 {
		topLinks = 5
	}
	return &StatsService{
		store:    kv,
		links:    links,
		logger:   logger,
		topLinks: topLinks,
		now:      time.Now,
	}
}

// shiftTime moves an instant into the caller's timezone using the
// JavaScript getTimezoneOffset sign convention: local = UTC - offset.
// Bucketing works on explicit instants plus this integer offset, never
// on process-local timezone state.
func shiftTime(t time.Time, tzOffsetMinutes int) time.Time {
	return t.UTC().Add(-time.Duration(tzOffsetMinutes) * time.Minute)
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// BuildDailySeries buckets events by calendar date in the shifted
// timezone and emits exactly `days` consecutive zero-filled points ending
// today, oldest first. Buckets outside the window are discarded.
func (ss *StatsService) BuildDailySeries(events []*models.ScanEvent, days, tzOffsetMinutes int) []models.DailyPoint {
	if days <= 0 {
		days = 1
	}

	counts := make(map[string]int)
	for _, e := range events {
		t, ok := e.ScannedAtTime()
		if !ok {
			continue
		}
		counts[dateKey(shiftTime(t, tzOffsetMinutes))]++
	}

	today := shiftTime(ss.now(), tzOffsetMinutes)
	series := make([]models.DailyPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		key := dateKey(today.AddDate(0, 0, -i))
		series = append(series, models.DailyPoint{Date: key, Count: counts[key]})
	}
	return series
}

// breakdownCounter preserves first-encountered label order so that ties
// sort stably in that order.
type breakdownCounter struct {
	labels []string
	counts map[string]int
}

func newBreakdownCounter() *breakdownCounter {
	return &breakdownCounter{counts: make(map[string]int)}
}

func (bc *breakdownCounter) add(label string) {
	if label == "" {
		label = models.UnknownField
	}
	if _, seen := bc.counts[label]; !seen {
		bc.labels = append(bc.labels, label)
	}
	bc.counts[label]++
}

func (bc *breakdownCounter) sorted(limit int) []models.Breakdown {
	out := make([]models.Breakdown, 0, len(bc.labels))
	for _, label := range bc.labels {
		out = append(out, models.Breakdown{Label: label, Value: bc.counts[label]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value > out[j].Value
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (ss *StatsService) BuildBreakdowns(events []*models.ScanEvent, tzOffsetMinutes int) *Breakdowns {
	countries := newBreakdownCounter()
	regions := newBreakdownCounter()
	cities := newBreakdownCounter()
	devices := newBreakdownCounter()
	oses := newBreakdownCounter()
	browsers := newBreakdownCounter()
	hours := newBreakdownCounter()
	weekdays := newBreakdownCounter()

	for _, e := range events {
		countries.add(strings.ToUpper(e.Country))
		regions.add(e.Region)
		cities.add(e.City)
		devices.add(e.DeviceType)
		oses.add(e.OS)
		browsers.add(e.Browser)

		if t, ok := e.ScannedAtTime(); ok {
			local := shiftTime(t, tzOffsetMinutes)
			hours.add(local.Format("15"))
			weekdays.add(local.Weekday().String()[:3])
		} else {
			hours.add("")
			weekdays.add("")
		}
	}

	return &Breakdowns{
		Countries: countries.sorted(topBreakdownEntries),
		Regions:   regions.sorted(topBreakdownEntries),
		Cities:    cities.sorted(topBreakdownEntries),
		Devices:   devices.sorted(0),
		OS:        oses.sorted(0),
		Browsers:  browsers.sorted(0),
		Hours:     hours.sorted(0),
		Weekdays:  weekdays.sorted(0),
	}
}

// fetchScans loads a link's full history, most-recent-first. Entries
// that fail to parse are dropped from aggregates rather than aborting
// the whole series.
func (ss *StatsService) fetchScans(ctx context.Context, id string) ([]*models.ScanEvent, error) {
	raw, err := ss.store.LRange(ctx, keyScans(id), 0, -1)
	if err != nil {
		return nil, err
	}

	events := make([]*models.ScanEvent, 0, len(raw))
	for _, entry := range raw {
		var e models.ScanEvent
		if err := json.Unmarshal([]byte(entry), &e); err != nil {
			ss.logger.Warnf(providers.TypeApp, "Dropping unparseable scan entry for link %s", id)
			continue
		}
		events = append(events, &e)
	}
	return events, nil
}

func (ss *StatsService) GetStats(ctx context.Context, id string, days, tzOffsetMinutes int) (*LinkStats, error) {
	link, err := ss.links.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	scans, err := ss.fetchScans(ctx, id)
	if err != nil {
		return nil, err
	}

	unique, err := ss.store.SCard(ctx, keyUniques(id))
	if err != nil {
		ss.logger.Warnf(providers.TypeApp, "Unique count unavailable for link %s: %s", id, err)
		unique = 0
	}

	return &LinkStats{
		QRLink:         *link,
		UniqueVisitors: unique,
		Scans:          scans,
		SeriesDaily:    ss.BuildDailySeries(scans, days, tzOffsetMinutes),
		Breakdowns:     ss.BuildBreakdowns(scans, tzOffsetMinutes),
	}, nil
}

// GetGlobalStats materializes every scan event of every link in memory.
// The cost is O(total scan events); analytics reads are expected to be
// rare next to scan writes, which is what makes this acceptable.
func (ss *StatsService) GetGlobalStats(ctx context.Context, days, tzOffsetMinutes int) (*GlobalStats, error) {
	links, err := ss.links.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	var allScans []*models.ScanEvent
	uniqueAll := make(map[string]struct{})

	for _, link := range links {
		scans, err := ss.fetchScans(ctx, link.ID)
		if err != nil {
			ss.logger.Warnf(providers.TypeApp, "Skipping history of link %s: %s", link.ID, err)
			continue
		}
		allScans = append(allScans, scans...)

		members, err := ss.store.SMembers(ctx, keyUniques(link.ID))
		if err != nil {
			ss.logger.Warnf(providers.TypeApp, "Skipping uniques of link %s: %s", link.ID, err)
			continue
		}
		for _, m := range members {
			uniqueAll[m] = struct{}{}
		}
	}

	ranked := make([]*models.QRLink, len(links))
	copy(ranked, links)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ScanCount > ranked[j].ScanCount
	})
	if len(ranked) > ss.topLinks {
		ranked = ranked[:ss.topLinks]
	}

	top := make([]TopQR, 0, len(ranked))
	for _, link := range ranked {
		top = append(top, TopQR{
			ID:          link.ID,
			ScanCount:   link.ScanCount,
			OriginalURL: link.OriginalURL,
		})
	}

	return &GlobalStats{
		TotalQRs:            len(links),
		TotalScans:          len(allScans),
		TotalUniqueVisitors: len(uniqueAll),
		SeriesDaily:         ss.BuildDailySeries(allScans, days, tzOffsetMinutes),
		Breakdowns:          ss.BuildBreakdowns(allScans, tzOffsetMinutes),
		TopQRs:              top,
	}, nil
}
