package model

// Candidate is a raw business result from the external directory. Candidates
// are transient: they exist only for the duration of a mission and are
// discarded once resolved against the lead store.
type Candidate struct {
	ExternalID  string   `json:"external_id"`
	Name        string   `json:"name"`
	Category    string   `json:"category,omitempty"`
	Street      string   `json:"street,omitempty"`
	City        string   `json:"city,omitempty"`
	State       string   `json:"state,omitempty"`
	ZipCode     string   `json:"zip_code,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Email       string   `json:"email,omitempty"`
	Website     string   `json:"website,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	ReviewCount int      `json:"review_count,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}
