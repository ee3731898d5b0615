package providers

import "net/http"

// GeoLocation is what the edge/CDN layer resolved for the client IP.
// Fields are empty when the deployment has no geo-aware proxy in front.
type GeoLocation struct {
	Country string
	Region  string
	City    string
}

type GeoProviderInterface interface {
	Resolve(r *http.Request) GeoLocation
}

// HeaderGeoProvider reads the geo headers injected by the hosting edge
// (Vercel, Cloudflare). It never performs network lookups, so resolution
// can not delay scan ingestion.
type HeaderGeoProvider struct{}

func NewGeoProvider() GeoProviderInterface {
	return &HeaderGeoProvider{}
}

func (g *HeaderGeoProvider) Resolve(r *http.Request) GeoLocation {
	loc := GeoLocation{
		Country: r.Header.Get("X-Vercel-IP-Country"),
		Region:  r.Header.Get("X-Vercel-IP-Country-Region"),
		City:    r.Header.Get("X-Vercel-IP-City"),
	}
	if loc.Country == "" {
		loc.Country = r.Header.Get("CF-IPCountry")
	}
	return loc
}
