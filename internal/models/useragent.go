package models

import "strings"

const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"

	OSWindows = "windows"
	OSMacOS   = "macos"
	OSAndroid = "android"
	OSIOS     = "ios"
	OSLinux   = "linux"
	OSOther   = "other"

	BrowserChrome  = "chrome"
	BrowserFirefox = "firefox"
	BrowserSafari  = "safari"
	BrowserEdge    = "edge"
	BrowserOpera   = "opera"
	BrowserOther   = "other"
)

// UAInfo is what ingestion derives from a raw user-agent string.
type UAInfo struct {
	DeviceType string
	OS         string
	Browser    string
	IsBot      bool
}

var botSignatures = []string{
	"bot", "crawler", "spider", "slurp", "curl", "wget",
	"python-requests", "headless", "facebookexternalhit",
	"bingpreview", "pingdom", "lighthouse",
}

var mobileKeywords = []string{"iphone", "ipod", "windows phone", "mobile"}

var tabletKeywords = []string{"ipad", "tablet", "kindle", "silk", "playbook"}

// ClassifyUserAgent applies the fixed rule order: bot detection first
// (it short-circuits device type but not OS/browser), then device type,
// then OS, then browser. All matching is case-insensitive substring work;
// the rules are the classification contract, so a general-purpose UA
// parser with its own taxonomy is deliberately not used.
func ClassifyUserAgent(ua string) UAInfo {
	lower := strings.ToLower(ua)

	info := UAInfo{
		DeviceType: classifyDevice(lower),
		OS:         classifyOS(lower),
		Browser:    classifyBrowser(lower),
	}

	for _, sig := range botSignatures {
		if strings.Contains(lower, sig) {
			info.IsBot = true
			info.DeviceType = DeviceBot
			break
		}
	}

	return info
}

func classifyDevice(lower string) string {
	for _, kw := range mobileKeywords {
		if strings.Contains(lower, kw) {
			return DeviceMobile
		}
	}
	for _, kw := range tabletKeywords {
		if strings.Contains(lower, kw) {
			return DeviceTablet
		}
	}
	return DeviceDesktop
}

func classifyOS(lower string) string {
	switch {
	case strings.Contains(lower, "windows"):
		return OSWindows
	case strings.Contains(lower, "android"):
		return OSAndroid
	// iOS before macOS: iPhone/iPad agents advertise "like Mac OS X".
	case strings.Contains(lower, "iphone"), strings.Contains(lower, "ipad"), strings.Contains(lower, "ipod"):
		return OSIOS
	case strings.Contains(lower, "mac os"), strings.Contains(lower, "macintosh"):
		return OSMacOS
	case strings.Contains(lower, "linux"):
		return OSLinux
	}
	return OSOther
}

func classifyBrowser(lower string) string {
	switch {
	case strings.Contains(lower, "edg"):
		return BrowserEdge
	// Opera and Edge ship a Chrome token, so they must win before chrome.
	case strings.Contains(lower, "opr/"), strings.Contains(lower, "opera"):
		return BrowserOpera
	case strings.Contains(lower, "chrome") && !strings.Contains(lower, "chromium"):
		return BrowserChrome
	case strings.Contains(lower, "firefox"):
		return BrowserFirefox
	case strings.Contains(lower, "safari"):
		return BrowserSafari
	}
	return BrowserOther
}
