package controllers

import (
	"errors"
	"net"
	"net/http"
	"qrtrack/internal/models"
	"qrtrack/internal/providers"
	"qrtrack/internal/qrimage"
	"qrtrack/internal/services"
	"qrtrack/internal/structures"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cast"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	conf     *structures.Config
	logger   providers.Logger
	links    services.LinkServiceInterface
	scans    services.ScanServiceInterface
	stats    services.StatsServiceInterface
	renderer qrimage.RendererInterface
	geo      providers.GeoProviderInterface
	cache    providers.CacheProviderInterface
}

func NewApiController(conf *structures.Config, logger providers.Logger, links services.LinkServiceInterface, scans services.ScanServiceInterface, stats services.StatsServiceInterface, renderer qrimage.RendererInterface, geo providers.GeoProviderInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		conf:     conf,
		logger:   logger,
		links:    links,
		scans:    scans,
		stats:    stats,
		renderer: renderer,
		geo:      geo,
		cache:    cache,
	}
}

// --- shared helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		ac.logger.Errorf(providers.TypeGet, "Stats computation failed: %s", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (ac *ApiController) redirectBase(r *http.Request) string {
	proto := r.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		if r.TLS != nil {
			proto = "https"
		} else {
			proto = "http"
		}
	}
	return proto + "://" + r.Host + "/redirect/"
}

func (ac *ApiController) rawScanFromRequest(r *http.Request, qrID string) services.RawScan {
	loc := ac.geo.Resolve(r)
	return services.RawScan{
		QRID:      qrID,
		UserAgent: r.Header.Get("User-Agent"),
		IPAddress: clientIP(r),
		Country:   loc.Country,
		Region:    loc.Region,
		City:      loc.City,
		Referer:   r.Header.Get("Referer"),
	}
}

func (ac *ApiController) days(r *http.Request) int {
	days := cast.ToInt(r.URL.Query().Get("days"))
	if days <= 0 {
		days = ac.conf.Stats.DefaultDays
	}
	return days
}

func tzOffset(r *http.Request) int {
	return cast.ToInt(r.URL.Query().Get("tz"))
}

// --- handlers ---

type generateRequest struct {
	URL      string `json:"url"`
	Tracking *bool  `json:"tracking"`
}

type generateResponse struct {
	models.QRLink
	ShortURL string `json:"short_url"`
}

func (ac *ApiController) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload generateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}

	if err := services.ValidateTargetURL(payload.URL); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid URL")
		return
	}

	tracking := true
	if payload.Tracking != nil {
		tracking = *payload.Tracking
	}

	id := uuid.NewString()
	shortURL := ac.redirectBase(r) + id

	png, err := ac.renderer.RenderPNG(shortURL)
	if err != nil {
		ac.logger.Errorf(providers.TypePost, "PNG render failed: %s", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	svg, err := ac.renderer.RenderSVG(shortURL)
	if err != nil {
		ac.logger.Errorf(providers.TypePost, "SVG render failed: %s", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	link, err := ac.links.Create(r.Context(), services.CreateLinkParams{
		ID:          id,
		OriginalURL: payload.URL,
		Tracking:    tracking,
		ImagePNG:    png,
		ImageSVG:    svg,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidURL) {
			writeError(w, http.StatusBadRequest, "Invalid URL")
			return
		}
		ac.logger.Errorf(providers.TypePost, "Create link failed: %s", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusCreated, generateResponse{QRLink: *link, ShortURL: shortURL})
}

func (ac *ApiController) ListLinks(w http.ResponseWriter, r *http.Request) {
	links, err := ac.links.GetAll(r.Context())
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "List links failed: %s", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, links)
}

func (ac *ApiController) DeleteLink(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("qrId")
	err := ac.links.Delete(r.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		ac.logger.Errorf(providers.TypePost, "Delete link %s failed: %s", id, err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) GetStats(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("qrId")
	days := ac.days(r)
	tz := tzOffset(r)

	cacheKey := "stats:" + id + ":" + cast.ToString(days) + ":" + cast.ToString(tz)
	ac.serveFromCacheOrCompute(w, cacheKey, func() (any, error) {
		return ac.stats.GetStats(r.Context(), id, days, tz)
	})
}

func (ac *ApiController) GetGlobalStats(w http.ResponseWriter, r *http.Request) {
	days := ac.days(r)
	tz := tzOffset(r)

	cacheKey := "global:" + cast.ToString(days) + ":" + cast.ToString(tz)
	ac.serveFromCacheOrCompute(w, cacheKey, func() (any, error) {
		return ac.stats.GetGlobalStats(r.Context(), days, tz)
	})
}

type logScanRequest struct {
	QRID string `json:"qr_id"`
}

// LogScan is the manual ingestion endpoint for callers outside the
// redirect path. Link existence is checked here because ingestion
// itself does not re-check it.
func (ac *ApiController) LogScan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload logScanRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.QRID == "" {
		writeError(w, http.StatusBadRequest, "qr_id is required")
		return
	}

	if _, err := ac.links.Get(r.Context(), payload.QRID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(w, http.StatusNotFound, "QR not found")
			return
		}
		ac.logger.Errorf(providers.TypePost, "Link lookup failed: %s", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	event, err := ac.scans.Ingest(r.Context(), ac.rawScanFromRequest(r, payload.QRID))
	if err != nil {
		ac.logger.Errorf(providers.TypePost, "Scan ingestion failed: %s", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

type migrateResponse struct {
	Total    int `json:"total"`
	Migrated int `json:"migrated"`
}

// MigrateSVG backfills the SVG rendering for links created before SVG
// output existed. Guarded by the shared migration secret; an unset
// secret disables the endpoint entirely.
func (ac *ApiController) MigrateSVG(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Api-Key")
	if token == "" {
		token = r.URL.Query().Get("key")
	}
	if token == "" || token != ac.conf.Migrate.Key {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	links, err := ac.links.GetAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	base := ac.redirectBase(r)
	migrated := 0
	for _, link := range links {
		if link.QRImageSVG != "" {
			continue
		}
		svg, err := ac.renderer.RenderSVG(base + link.ID)
		if err != nil {
			ac.logger.Warnf(providers.TypePost, "SVG render failed for link %s: %s", link.ID, err)
			continue
		}
		if _, err := ac.links.Update(r.Context(), link.ID, map[string]string{"qr_image_svg": svg}); err != nil {
			ac.logger.Warnf(providers.TypePost, "SVG backfill failed for link %s: %s", link.ID, err)
			continue
		}
		migrated++
	}

	writeJSON(w, http.StatusOK, migrateResponse{Total: len(links), Migrated: migrated})
}
