// Package resolver deduplicates incoming candidates against stored leads.
// Matching runs a fixed cascade from strongest to weakest signal so that a
// candidate never creates a duplicate row for a business the store already
// knows under a slightly different rendering of its name or website.
package resolver

import (
	"context"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/identity"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/store"
)

const (
	phoneCandidateLimit = 10
	cityCandidateLimit  = 20
	namePrefixLen       = 4
)

// Resolver matches candidates to existing leads and merges updates.
type Resolver struct {
	store     store.Store
	threshold float64
}

// NewResolver creates a resolver using the default fuzzy name threshold.
func NewResolver(st store.Store) *Resolver {
	return &Resolver{store: st, threshold: identity.DefaultFuzzyThreshold}
}

// Resolve finds the stored lead matching the candidate, or nil when the
// candidate is unknown. The cascade runs four passes in order:
//  1. Exact external source id.
//  2. Exact canonical domain.
//  3. Same normalized phone plus fuzzy record match.
//  4. City plus name-prefix search plus fuzzy record match.
//
// The first match wins; later passes never override an earlier one.
func (r *Resolver) Resolve(ctx context.Context, cand model.Candidate) (*model.Lead, error) {
	// Pass 1: external source id.
	if cand.ExternalID != "" {
		existing, err := r.store.GetLeadByExternalID(ctx, cand.ExternalID)
		if err != nil {
			return nil, eris.Wrap(err, "resolver: lookup by external id")
		}
		if existing != nil {
			zap.L().Debug("resolve: matched by external id",
				zap.String("external_id", cand.ExternalID),
				zap.String("lead_id", existing.ID),
			)
			return existing, nil
		}
	}

	// Pass 2: canonical domain.
	if domain := identity.NormalizeDomain(cand.Website); domain != "" {
		existing, err := r.store.GetLeadByDomain(ctx, domain)
		if err != nil {
			return nil, eris.Wrap(err, "resolver: lookup by domain")
		}
		if existing != nil {
			zap.L().Debug("resolve: matched by domain",
				zap.String("domain", domain),
				zap.String("lead_id", existing.ID),
			)
			return existing, nil
		}
	}

	// Record phones must be in normalized form for the exact-phone
	// short-circuit in IsFuzzyMatch to fire across formatting variants.
	candRecord := identity.Record{Name: cand.Name, Phone: identity.NormalizePhone(cand.Phone), City: cand.City}

	// Pass 3: shared phone number with a compatible name.
	if candRecord.Phone != "" {
		leads, err := r.store.ListLeadsByPhone(ctx, candRecord.Phone, phoneCandidateLimit)
		if err != nil {
			return nil, eris.Wrap(err, "resolver: lookup by phone")
		}
		for i := range leads {
			rec := identity.Record{Name: leads[i].Name, Phone: leads[i].NormalizedPhone, City: leads[i].City}
			if identity.IsFuzzyMatch(candRecord, rec, r.threshold) {
				zap.L().Debug("resolve: matched by phone",
					zap.String("phone", candRecord.Phone),
					zap.String("lead_id", leads[i].ID),
				)
				return &leads[i], nil
			}
		}
	}

	// Pass 4: same city, near-identical name.
	if prefix := namePrefix(cand.Name); cand.City != "" && prefix != "" {
		leads, err := r.store.SearchLeadsByCityAndPrefix(ctx, cand.City, prefix, cityCandidateLimit)
		if err != nil {
			return nil, eris.Wrap(err, "resolver: lookup by city and name")
		}
		for i := range leads {
			rec := identity.Record{Name: leads[i].Name, Phone: leads[i].NormalizedPhone, City: leads[i].City}
			if identity.IsFuzzyMatch(candRecord, rec, r.threshold) {
				zap.L().Debug("resolve: matched by city and name",
					zap.String("city", cand.City),
					zap.String("lead_id", leads[i].ID),
				)
				return &leads[i], nil
			}
		}
	}

	return nil, nil
}

// Upsert resolves the candidate and either inserts a new lead or merges the
// candidate into the matched one. The status argument records the scoring
// verdict (qualified or junk); pass empty to leave an existing status alone.
// Returns the lead id, whether a new row was created, and whether an
// existing row changed.
//
// When a concurrent mission inserts the same business between our resolve
// and insert, the store rejects the row as a duplicate; we resolve once more
// and take the update path against the winner.
func (r *Resolver) Upsert(ctx context.Context, cand model.Candidate, status model.LeadStatus) (string, bool, bool, error) {
	existing, err := r.Resolve(ctx, cand)
	if err != nil {
		return "", false, false, err
	}

	if existing == nil {
		lead := leadFromCandidate(cand, status)
		id, err := r.store.InsertLead(ctx, lead)
		if err == nil {
			return id, true, false, nil
		}
		if !eris.Is(err, store.ErrDuplicateLead) {
			return "", false, false, eris.Wrap(err, "resolver: insert lead")
		}

		zap.L().Debug("resolve: lost insert race, re-resolving",
			zap.String("name", cand.Name),
		)
		existing, err = r.Resolve(ctx, cand)
		if err != nil {
			return "", false, false, err
		}
		if existing == nil {
			return "", false, false, eris.New("resolver: duplicate reported but no match found on retry")
		}
	}

	changed := mergeCandidate(existing, cand, status)
	if !changed {
		return existing.ID, false, false, nil
	}
	if err := r.store.UpdateLead(ctx, existing); err != nil {
		return "", false, false, eris.Wrap(err, "resolver: update lead")
	}
	return existing.ID, false, true, nil
}

// mergeCandidate folds candidate fields into the lead. Incoming non-empty
// values win; stored values survive only where the candidate is silent.
// Derived identity fields are recomputed from the merge winners. Reports
// whether anything changed.
func mergeCandidate(lead *model.Lead, cand model.Candidate, status model.LeadStatus) bool {
	changed := false

	apply := func(dst *string, incoming string) {
		if incoming != "" && incoming != *dst {
			*dst = incoming
			changed = true
		}
	}

	apply(&lead.Name, cand.Name)
	apply(&lead.Category, cand.Category)
	apply(&lead.Street, cand.Street)
	apply(&lead.City, cand.City)
	apply(&lead.State, cand.State)
	apply(&lead.ZipCode, cand.ZipCode)
	apply(&lead.Phone, cand.Phone)
	apply(&lead.Email, cand.Email)
	apply(&lead.Website, cand.Website)
	apply(&lead.ExternalSourceID, cand.ExternalID)

	if domain := identity.NormalizeDomain(lead.Website); domain != lead.CanonicalDomain {
		lead.CanonicalDomain = domain
		changed = true
	}
	if phone := identity.NormalizePhone(lead.Phone); phone != lead.NormalizedPhone {
		lead.NormalizedPhone = phone
		changed = true
	}
	if status != "" && status != lead.Status {
		lead.Status = status
		changed = true
	}
	return changed
}

func leadFromCandidate(cand model.Candidate, status model.LeadStatus) *model.Lead {
	if status == "" {
		status = model.LeadStatusNew
	}
	return &model.Lead{
		Name:             cand.Name,
		Category:         cand.Category,
		Street:           cand.Street,
		City:             cand.City,
		State:            cand.State,
		ZipCode:          cand.ZipCode,
		Phone:            cand.Phone,
		Email:            cand.Email,
		Website:          cand.Website,
		CanonicalDomain:  identity.NormalizeDomain(cand.Website),
		NormalizedPhone:  identity.NormalizePhone(cand.Phone),
		ExternalSourceID: cand.ExternalID,
		Status:           status,
	}
}

// namePrefix returns the leading characters used to narrow the city search.
// The store matches this against the raw name column, so the prefix is taken
// from the raw name, not the normalized one, and stops at the first
// punctuation so "Joe's Pizza" still finds rows stored as "Joe's Pizza".
func namePrefix(name string) string {
	var b strings.Builder
	started := false
	for _, r := range strings.TrimSpace(name) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			if started {
				break
			}
			continue
		}
		started = true
		b.WriteRune(unicode.ToLower(r))
		if b.Len() >= namePrefixLen {
			break
		}
	}
	return b.String()
}
