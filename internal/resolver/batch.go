package resolver

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/identity"
	"github.com/sells-group/leadscout/internal/model"
)

// KnownSet answers "have we seen this business before?" for every candidate
// of one mission. It is built once per mission from two bulk lookups and
// consulted in memory afterwards, so per-candidate duplicate checks cost no
// round trips. It is not safe for concurrent mutation; the mission runner
// consults it from a single goroutine.
type KnownSet struct {
	externalIDs map[string]bool
	domains     map[string]bool
	phones      map[string]bool
}

// Contains reports whether any strong identity signal of the candidate is
// already present in the store.
func (k *KnownSet) Contains(cand model.Candidate) bool {
	if cand.ExternalID != "" && k.externalIDs[cand.ExternalID] {
		return true
	}
	if domain := identity.NormalizeDomain(cand.Website); domain != "" && k.domains[domain] {
		return true
	}
	if phone := identity.NormalizePhone(cand.Phone); phone != "" && k.phones[phone] {
		return true
	}
	return false
}

// Add marks the candidate's identity signals as known. The runner calls this
// after persisting a candidate so that later duplicates within the same
// mission batch are caught without touching the store.
func (k *KnownSet) Add(cand model.Candidate) {
	if cand.ExternalID != "" {
		k.externalIDs[cand.ExternalID] = true
	}
	if domain := identity.NormalizeDomain(cand.Website); domain != "" {
		k.domains[domain] = true
	}
	if phone := identity.NormalizePhone(cand.Phone); phone != "" {
		k.phones[phone] = true
	}
}

// ResolveBatch builds the KnownSet for a slice of candidates using exactly
// two store queries regardless of batch size.
func (r *Resolver) ResolveBatch(ctx context.Context, cands []model.Candidate) (*KnownSet, error) {
	var ids, domains, phones []string
	seenID := map[string]bool{}
	seenDomain := map[string]bool{}
	seenPhone := map[string]bool{}

	for _, c := range cands {
		if c.ExternalID != "" && !seenID[c.ExternalID] {
			seenID[c.ExternalID] = true
			ids = append(ids, c.ExternalID)
		}
		if d := identity.NormalizeDomain(c.Website); d != "" && !seenDomain[d] {
			seenDomain[d] = true
			domains = append(domains, d)
		}
		if p := identity.NormalizePhone(c.Phone); p != "" && !seenPhone[p] {
			seenPhone[p] = true
			phones = append(phones, p)
		}
	}

	foundIDs, err := r.store.LookupExternalIDs(ctx, ids)
	if err != nil {
		return nil, eris.Wrap(err, "resolver: batch lookup external ids")
	}
	foundDomains, foundPhones, err := r.store.LookupDomainsOrPhones(ctx, domains, phones)
	if err != nil {
		return nil, eris.Wrap(err, "resolver: batch lookup domains and phones")
	}

	zap.L().Debug("resolve: batch lookup complete",
		zap.Int("candidates", len(cands)),
		zap.Int("known_external_ids", len(foundIDs)),
		zap.Int("known_domains", len(foundDomains)),
		zap.Int("known_phones", len(foundPhones)),
	)

	return &KnownSet{
		externalIDs: foundIDs,
		domains:     foundDomains,
		phones:      foundPhones,
	}, nil
}
