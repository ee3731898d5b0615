package models

import "time"

const UnknownField = "unknown"

// ScanEvent is one observed redirect traversal. Events are immutable once
// written and live as JSON entries in the per-link history list,
// most-recent-first.
type ScanEvent struct {
	ID         string `json:"id"`
	QRID       string `json:"qr_id"`
	ScannedAt  string `json:"scanned_at"`
	UserAgent  string `json:"user_agent"`
	IPAddress  string `json:"ip_address"`
	Country    string `json:"country,omitempty"`
	Region     string `json:"region,omitempty"`
	City       string `json:"city,omitempty"`
	Referer    string `json:"referer,omitempty"`
	DeviceType string `json:"device_type"`
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	IsBot      bool   `json:"is_bot"`
}

// UniqueKey is the visitor-distinctness proxy: the literal ip|user-agent
// concatenation. Two distinct pairs from the same human stay distinct by design.
func (s *ScanEvent) UniqueKey() string {
	return s.IPAddress + "|" + s.UserAgent
}

func (s *ScanEvent) ScannedAtTime() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, s.ScannedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DailyPoint is one bucket of a daily time series. Derived, never stored.
type DailyPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Breakdown is one row of a category→count table, sorted descending by
// value. Derived, never stored.
type Breakdown struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}
