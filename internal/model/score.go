package model

import "time"

// QualifiedThreshold is the total score at or above which a lead is
// considered qualified rather than junk.
const QualifiedThreshold = 75

// Score holds the three independent quality dimensions for a lead plus the
// rounded mean and the human-readable reasons behind each contribution.
// One score exists per lead; re-scoring overwrites.
type Score struct {
	LeadID       string    `json:"lead_id" db:"lead_id"`
	Need         int       `json:"need" db:"need"`
	Value        int       `json:"value" db:"value"`
	Reachability int       `json:"reachability" db:"reachability"`
	Total        int       `json:"total" db:"total"`
	Reasons      []string  `json:"reasons,omitempty" db:"reasons"`
	ScoredAt     time.Time `json:"scored_at" db:"scored_at"`
}

// Qualified reports whether the total clears the qualification boundary.
func (s Score) Qualified() bool {
	return s.Total >= QualifiedThreshold
}
