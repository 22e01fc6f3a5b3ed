package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sells-group/leadscout/internal/identity"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/store"
)

// mockStore implements store.Store in memory for resolver tests.
type mockStore struct {
	leads       []model.Lead
	nextID      int
	insertCalls int
	updateCalls int
	lookupCalls int

	// failNextInsert simulates a concurrent mission winning the insert race.
	failNextInsert bool
}

func (m *mockStore) GetLeadByExternalID(_ context.Context, externalID string) (*model.Lead, error) {
	if externalID == "" {
		return nil, nil
	}
	for i := range m.leads {
		if m.leads[i].ExternalSourceID == externalID {
			l := m.leads[i]
			return &l, nil
		}
	}
	return nil, nil
}

func (m *mockStore) GetLeadByDomain(_ context.Context, domain string) (*model.Lead, error) {
	if domain == "" {
		return nil, nil
	}
	for i := range m.leads {
		if m.leads[i].CanonicalDomain == domain {
			l := m.leads[i]
			return &l, nil
		}
	}
	return nil, nil
}

func (m *mockStore) ListLeadsByPhone(_ context.Context, phone string, limit int) ([]model.Lead, error) {
	var out []model.Lead
	for i := range m.leads {
		if m.leads[i].NormalizedPhone == phone {
			out = append(out, m.leads[i])
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockStore) SearchLeadsByCityAndPrefix(_ context.Context, city, prefix string, limit int) ([]model.Lead, error) {
	var out []model.Lead
	for i := range m.leads {
		l := m.leads[i]
		if strings.Contains(strings.ToLower(l.City), strings.ToLower(city)) &&
			strings.HasPrefix(strings.ToLower(l.Name), strings.ToLower(prefix)) {
			out = append(out, l)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockStore) LookupExternalIDs(_ context.Context, ids []string) (map[string]bool, error) {
	m.lookupCalls++
	found := make(map[string]bool)
	for _, id := range ids {
		for i := range m.leads {
			if m.leads[i].ExternalSourceID == id {
				found[id] = true
			}
		}
	}
	return found, nil
}

func (m *mockStore) LookupDomainsOrPhones(_ context.Context, domains, phones []string) (map[string]bool, map[string]bool, error) {
	m.lookupCalls++
	foundDomains := make(map[string]bool)
	foundPhones := make(map[string]bool)
	for _, d := range domains {
		for i := range m.leads {
			if m.leads[i].CanonicalDomain == d {
				foundDomains[d] = true
			}
		}
	}
	for _, p := range phones {
		for i := range m.leads {
			if m.leads[i].NormalizedPhone == p {
				foundPhones[p] = true
			}
		}
	}
	return foundDomains, foundPhones, nil
}

func (m *mockStore) InsertLead(_ context.Context, lead *model.Lead) (string, error) {
	m.insertCalls++
	if m.failNextInsert {
		m.failNextInsert = false
		// Another writer got there first; materialize its row so the retry
		// resolve finds it.
		winner := *lead
		winner.ID = m.assignID()
		winner.Name = winner.Name + " (existing)"
		m.leads = append(m.leads, winner)
		return "", store.ErrDuplicateLead
	}
	for i := range m.leads {
		if lead.CanonicalDomain != "" && m.leads[i].CanonicalDomain == lead.CanonicalDomain {
			return "", store.ErrDuplicateLead
		}
		if lead.ExternalSourceID != "" && m.leads[i].ExternalSourceID == lead.ExternalSourceID {
			return "", store.ErrDuplicateLead
		}
	}
	lead.ID = m.assignID()
	lead.CreatedAt = time.Now().UTC()
	lead.UpdatedAt = lead.CreatedAt
	m.leads = append(m.leads, *lead)
	return lead.ID, nil
}

func (m *mockStore) UpdateLead(_ context.Context, lead *model.Lead) error {
	m.updateCalls++
	for i := range m.leads {
		if m.leads[i].ID == lead.ID {
			m.leads[i] = *lead
			return nil
		}
	}
	return fmt.Errorf("lead not found: %s", lead.ID)
}

func (m *mockStore) ListLeads(_ context.Context, _ model.ListLeadsFilter) ([]model.Lead, error) {
	return m.leads, nil
}

func (m *mockStore) UpsertAudit(_ context.Context, _ *model.AuditResult) error { return nil }
func (m *mockStore) UpsertScore(_ context.Context, _ *model.Score) error       { return nil }
func (m *mockStore) GetScore(_ context.Context, _ string) (*model.Score, error) {
	return nil, nil
}

func (m *mockStore) CreateMission(_ context.Context, _ *model.Mission) error { return nil }
func (m *mockStore) UpdateMissionStatus(_ context.Context, _ string, _ model.MissionStatus, _ *time.Time) error {
	return nil
}
func (m *mockStore) GetMission(_ context.Context, _ string) (*model.Mission, error) {
	return nil, nil
}
func (m *mockStore) ListMissions(_ context.Context, _ int) ([]model.Mission, error) {
	return nil, nil
}
func (m *mockStore) AppendEvent(_ context.Context, _ *model.MissionEvent) error { return nil }
func (m *mockStore) ListEvents(_ context.Context, _ string, _ int) ([]model.MissionEvent, error) {
	return nil, nil
}
func (m *mockStore) Migrate(_ context.Context) error { return nil }
func (m *mockStore) Close() error                    { return nil }

func (m *mockStore) assignID() string {
	m.nextID++
	return fmt.Sprintf("lead-%d", m.nextID)
}

// seed inserts a lead with derived identity fields populated.
func (m *mockStore) seed(name, city, phone, website, externalID string) string {
	lead := model.Lead{
		ID:               m.assignID(),
		Name:             name,
		City:             city,
		Phone:            phone,
		Website:          website,
		CanonicalDomain:  identity.NormalizeDomain(website),
		NormalizedPhone:  identity.NormalizePhone(phone),
		ExternalSourceID: externalID,
		Status:           model.LeadStatusNew,
	}
	m.leads = append(m.leads, lead)
	return lead.ID
}
