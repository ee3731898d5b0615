package controllers

import (
	"errors"
	"net/http"
	"qrtrack/internal/providers"
	"qrtrack/internal/services"
)

type RedirectController struct {
	logger providers.Logger
	links  services.LinkServiceInterface
	scans  services.ScanServiceInterface
	geo    providers.GeoProviderInterface
}

func NewRedirectController(logger providers.Logger, links services.LinkServiceInterface, scans services.ScanServiceInterface, geo providers.GeoProviderInterface) *RedirectController {
	return &RedirectController{
		logger: logger,
		links:  links,
		scans:  scans,
		geo:    geo,
	}
}

// Redirect resolves the scanned id and forwards the visitor. Tracking is
// best-effort: an ingestion failure is logged and the visitor is
// redirected anyway.
func (rc *RedirectController) Redirect(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("qrId")

	link, err := rc.links.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.Error(w, "QR not found", http.StatusNotFound)
			return
		}
		rc.logger.Errorf(providers.TypeGet, "Link lookup failed: %s", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	if link.Tracking {
		loc := rc.geo.Resolve(r)
		_, err := rc.scans.Ingest(r.Context(), services.RawScan{
			QRID:      id,
			UserAgent: r.Header.Get("User-Agent"),
			IPAddress: clientIP(r),
			Country:   loc.Country,
			Region:    loc.Region,
			City:      loc.City,
			Referer:   r.Header.Get("Referer"),
		})
		if err != nil {
			rc.logger.Errorf(providers.TypeGet, "Scan ingestion failed for link %s: %s", id, err)
		}
	}

	http.Redirect(w, r, link.OriginalURL, http.StatusFound)
}
