package model

import "time"

// CMS hint markers for sites that could not be inspected. Real CMS names
// (wordpress, wix, ...) come from page analysis; these three distinguish the
// degraded-default cases from each other.
const (
	CMSHintNoWebsite  = "no_website"
	CMSHintTimeout    = "timeout"
	CMSHintFetchError = "fetch_error"
)

// AuditResult is the per-lead technical snapshot of a website. It is
// recomputed on every mission that revisits a lead and overwrites the
// previous snapshot.
type AuditResult struct {
	LeadID         string    `json:"lead_id" db:"lead_id"`
	HTTPS          bool      `json:"https" db:"https"`
	MobileViewport bool      `json:"mobile_viewport" db:"mobile_viewport"`
	Booking        bool      `json:"booking" db:"booking"`
	StructuredData bool      `json:"structured_data" db:"structured_data"`
	CMSHint        string    `json:"cms_hint,omitempty" db:"cms_hint"`
	LoadMillis     int64     `json:"load_millis" db:"load_millis"`
	Analytics      []string  `json:"analytics,omitempty" db:"analytics"`
	AuditedAt      time.Time `json:"audited_at" db:"audited_at"`
}

// Inspected reports whether the audit actually reached the site, as opposed
// to a degraded default produced for a missing or unreachable website.
func (a AuditResult) Inspected() bool {
	switch a.CMSHint {
	case CMSHintNoWebsite, CMSHintTimeout, CMSHintFetchError:
		return false
	}
	return true
}
