package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"qrtrack/internal/models"
	"qrtrack/internal/providers"
	"qrtrack/internal/services"
	"qrtrack/internal/store"
	"qrtrack/internal/structures"
	"qrtrack/internal/testutil"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRenderer keeps controller tests independent of actual matrix encoding.
type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) RenderPNG(content string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "png:" + content, nil
}

func (f *fakeRenderer) RenderSVG(content string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "<svg>" + content + "</svg>", nil
}

type apiFixture struct {
	controller *ApiController
	links      services.LinkServiceInterface
	store      *store.MemoryStore
	cache      *testutil.MockCache
	renderer   *fakeRenderer
}

func apiConfig() *structures.Config {
	return &structures.Config{
		Stats:   structures.StatsConfig{DefaultDays: 30, TopLinks: 5},
		Migrate: structures.MigrateConfig{Key: "migrate-secret"},
	}
}

func newApiFixture(conf *structures.Config) *apiFixture {
	kv := store.NewMemoryStore()
	logger := &testutil.MockLogger{}
	links := services.NewLinkService(kv, testutil.IdentityCodec{}, logger)
	scans := services.NewScanService(kv, logger, &testutil.MockMetrics{})
	stats := services.NewStatsService(conf, kv, links, logger)
	cache := testutil.NewMockCache()
	renderer := &fakeRenderer{}

	return &apiFixture{
		controller: NewApiController(conf, logger, links, scans, stats, renderer, providers.NewGeoProvider(), cache),
		links:      links,
		store:      kv,
		cache:      cache,
		renderer:   renderer,
	}
}

func TestApiController_Generate(t *testing.T) {
	f := newApiFixture(apiConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"url":"https://example.com"}`))
	req.Host = "qr.example.com"
	rr := httptest.NewRecorder()
	f.controller.Generate(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		models.QRLink
		ShortURL string `json:"short_url"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "https://example.com", resp.OriginalURL)
	assert.True(t, resp.Tracking)
	assert.Equal(t, "http://qr.example.com/redirect/"+resp.ID, resp.ShortURL)
	assert.Equal(t, "png:"+resp.ShortURL, resp.QRImagePNG)
	assert.Contains(t, resp.QRImageSVG, "<svg>")

	// the record is persisted and listable
	listed, err := f.links.GetAll(req.Context())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, resp.ID, listed[0].ID)
}

func TestApiController_GenerateTrackingDisabled(t *testing.T) {
	f := newApiFixture(apiConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"url":"https://example.com","tracking":false}`))
	rr := httptest.NewRecorder()
	f.controller.Generate(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp models.QRLink
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Tracking)
}

func TestApiController_GenerateForwardedProto(t *testing.T) {
	f := newApiFixture(apiConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"url":"https://example.com"}`))
	req.Host = "qr.example.com"
	req.Header.Set("X-Forwarded-Proto", "https")
	rr := httptest.NewRecorder()
	f.controller.Generate(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp struct {
		ShortURL string `json:"short_url"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.ShortURL, "https://qr.example.com/redirect/"))
}

func TestApiController_GenerateInvalidURL(t *testing.T) {
	f := newApiFixture(apiConfig())

	for _, body := range []string{
		`{"url":"ftp://example.com"}`,
		`{"url":""}`,
		`{broken`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
		rr := httptest.NewRecorder()
		f.controller.Generate(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "body: %s", body)
	}
}

func TestApiController_GenerateRenderFailure(t *testing.T) {
	f := newApiFixture(apiConfig())
	f.renderer.err = errors.New("encode failed")

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"url":"https://example.com"}`))
	rr := httptest.NewRecorder()
	f.controller.Generate(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestApiController_ListLinks(t *testing.T) {
	f := newApiFixture(apiConfig())

	_, err := f.links.Create(context.Background(), services.CreateLinkParams{ID: "abc", OriginalURL: "https://example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/qr-codes", nil)
	rr := httptest.NewRecorder()
	f.controller.ListLinks(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp []models.QRLink
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "abc", resp[0].ID)
}

func TestApiController_DeleteLink(t *testing.T) {
	f := newApiFixture(apiConfig())

	_, err := f.links.Create(context.Background(), services.CreateLinkParams{ID: "abc", OriginalURL: "https://example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/api/qr-codes/abc", nil)
	req.SetPathValue("qrId", "abc")
	rr := httptest.NewRecorder()
	f.controller.DeleteLink(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)

	_, err = f.links.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestApiController_DeleteLinkMissing(t *testing.T) {
	f := newApiFixture(apiConfig())

	req := httptest.NewRequest(http.MethodDelete, "/api/qr-codes/missing", nil)
	req.SetPathValue("qrId", "missing")
	rr := httptest.NewRecorder()
	f.controller.DeleteLink(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestApiController_GetStats(t *testing.T) {
	f := newApiFixture(apiConfig())

	_, err := f.links.Create(context.Background(), services.CreateLinkParams{ID: "abc", OriginalURL: "https://example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/abc?days=7&tz=0", nil)
	req.SetPathValue("qrId", "abc")
	rr := httptest.NewRecorder()
	f.controller.GetStats(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp services.LinkStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "abc", resp.ID)
	assert.Len(t, resp.SeriesDaily, 7)

	// the computed payload is now cached
	_, ok := f.cache.Get("stats:abc:7:0")
	assert.True(t, ok)
}

func TestApiController_GetStatsMissing(t *testing.T) {
	f := newApiFixture(apiConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/stats/missing", nil)
	req.SetPathValue("qrId", "missing")
	rr := httptest.NewRecorder()
	f.controller.GetStats(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestApiController_GetStatsServedFromCache(t *testing.T) {
	f := newApiFixture(apiConfig())
	f.cache.Set("stats:abc:30:0", []byte(`{"cached":true}`))

	// no link exists; a cache hit must short-circuit the lookup
	req := httptest.NewRequest(http.MethodGet, "/api/stats/abc", nil)
	req.SetPathValue("qrId", "abc")
	rr := httptest.NewRecorder()
	f.controller.GetStats(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"cached":true}`, rr.Body.String())
}

func TestApiController_GetGlobalStats(t *testing.T) {
	f := newApiFixture(apiConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/stats-global?days=3", nil)
	rr := httptest.NewRecorder()
	f.controller.GetGlobalStats(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp services.GlobalStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Zero(t, resp.TotalQRs)
	assert.Len(t, resp.SeriesDaily, 3)

	_, ok := f.cache.Get("global:3:0")
	assert.True(t, ok)
}

func TestApiController_LogScan(t *testing.T) {
	f := newApiFixture(apiConfig())

	_, err := f.links.Create(context.Background(), services.CreateLinkParams{ID: "abc", OriginalURL: "https://example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/log-scan", strings.NewReader(`{"qr_id":"abc"}`))
	req.Header.Set("User-Agent", "curl/8.4.0")
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.Header.Set("X-Vercel-IP-Country", "DE")
	rr := httptest.NewRecorder()
	f.controller.LogScan(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var event models.ScanEvent
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &event))
	assert.Equal(t, "abc", event.QRID)
	assert.Equal(t, "203.0.113.9", event.IPAddress)
	assert.Equal(t, "DE", event.Country)
	assert.True(t, event.IsBot)

	fields, err := f.store.HGetAll(context.Background(), "qr:abc")
	require.NoError(t, err)
	assert.Equal(t, "1", fields["scan_count"])
}

func TestApiController_LogScanMissingID(t *testing.T) {
	f := newApiFixture(apiConfig())

	for _, body := range []string{`{}`, `{"qr_id":""}`, `broken`} {
		req := httptest.NewRequest(http.MethodPost, "/api/log-scan", strings.NewReader(body))
		rr := httptest.NewRecorder()
		f.controller.LogScan(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "body: %s", body)
	}
}

func TestApiController_LogScanUnknownLink(t *testing.T) {
	f := newApiFixture(apiConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/log-scan", strings.NewReader(`{"qr_id":"missing"}`))
	rr := httptest.NewRecorder()
	f.controller.LogScan(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestApiController_MigrateSVGUnauthorized(t *testing.T) {
	f := newApiFixture(apiConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/migrate-svg", nil)
	rr := httptest.NewRecorder()
	f.controller.MigrateSVG(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/migrate-svg", nil)
	req.Header.Set("X-Api-Key", "wrong")
	rr = httptest.NewRecorder()
	f.controller.MigrateSVG(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestApiController_MigrateSVGDisabledWithoutKey(t *testing.T) {
	conf := apiConfig()
	conf.Migrate.Key = ""
	f := newApiFixture(conf)

	// even an empty token must not match an unset secret
	req := httptest.NewRequest(http.MethodPost, "/api/migrate-svg", nil)
	rr := httptest.NewRecorder()
	f.controller.MigrateSVG(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestApiController_MigrateSVGBackfills(t *testing.T) {
	f := newApiFixture(apiConfig())
	ctx := context.Background()

	_, err := f.links.Create(ctx, services.CreateLinkParams{ID: "old", OriginalURL: "https://example.com"})
	require.NoError(t, err)
	_, err = f.links.Create(ctx, services.CreateLinkParams{ID: "new", OriginalURL: "https://example.com", ImageSVG: "<svg>have</svg>"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/migrate-svg", nil)
	req.Header.Set("X-Api-Key", "migrate-secret")
	rr := httptest.NewRecorder()
	f.controller.MigrateSVG(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Total    int `json:"total"`
		Migrated int `json:"migrated"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 1, resp.Migrated)

	link, err := f.links.Get(ctx, "old")
	require.NoError(t, err)
	assert.Contains(t, link.QRImageSVG, "old")

	link, err = f.links.Get(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, "<svg>have</svg>", link.QRImageSVG)
}

func TestApiController_MigrateSVGQueryKey(t *testing.T) {
	f := newApiFixture(apiConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/migrate-svg?key=migrate-secret", nil)
	rr := httptest.NewRecorder()
	f.controller.MigrateSVG(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
