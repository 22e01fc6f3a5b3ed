// Package model defines the shared data types for the leadscout pipeline.
package model

import "time"

// LeadStatus is the lifecycle state of a lead.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusJunk      LeadStatus = "junk"
)

// Lead is the durable business entity produced by identity resolution.
// CanonicalDomain and NormalizedPhone are derived dedup keys: at most one
// lead exists per non-empty external source id and per non-empty canonical
// domain. Leads are never deleted by the pipeline.
type Lead struct {
	ID               string     `json:"id" db:"id"`
	Name             string     `json:"name" db:"name"`
	Category         string     `json:"category,omitempty" db:"category"`
	Street           string     `json:"street,omitempty" db:"street"`
	City             string     `json:"city,omitempty" db:"city"`
	State            string     `json:"state,omitempty" db:"state"`
	ZipCode          string     `json:"zip_code,omitempty" db:"zip_code"`
	Phone            string     `json:"phone,omitempty" db:"phone"`
	Email            string     `json:"email,omitempty" db:"email"`
	Website          string     `json:"website,omitempty" db:"website"`
	CanonicalDomain  string     `json:"canonical_domain,omitempty" db:"canonical_domain"`
	NormalizedPhone  string     `json:"normalized_phone,omitempty" db:"normalized_phone"`
	ExternalSourceID string     `json:"external_source_id,omitempty" db:"external_source_id"`
	Status           LeadStatus `json:"status" db:"status"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// ListLeadsFilter configures listing and filtering of stored leads.
type ListLeadsFilter struct {
	Status   LeadStatus
	MinTotal *int
	Limit    int
	Offset   int
}
