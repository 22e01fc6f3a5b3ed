package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestResolve_ByExternalID(t *testing.T) {
	st := &mockStore{}
	id := st.seed("Acme Dental", "San Diego", "", "", "places-1")
	// Decoy with the same domain as the candidate; pass 1 must win first.
	st.seed("Unrelated Biz", "Portland", "", "https://acmedental.com", "places-2")

	r := NewResolver(st)
	got, err := r.Resolve(context.Background(), model.Candidate{
		ExternalID: "places-1",
		Name:       "Totally Different Name",
		Website:    "https://acmedental.com",
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
}

func TestResolve_ByDomain_IgnoresWWW(t *testing.T) {
	st := &mockStore{}
	id := st.seed("Acme Dental", "San Diego", "", "https://acme.com", "places-1")

	r := NewResolver(st)
	got, err := r.Resolve(context.Background(), model.Candidate{
		ExternalID: "places-other",
		Name:       "Acme Dental",
		Website:    "http://www.acme.com/contact",
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
}

func TestResolve_ByPhone_FuzzyName(t *testing.T) {
	st := &mockStore{}
	id := st.seed("Acme Dental Group", "San Diego", "(619) 233-3338", "", "places-1")

	r := NewResolver(st)

	// Same phone, close-enough name spelling.
	got, err := r.Resolve(context.Background(), model.Candidate{
		Name:  "Acme Dental Grp",
		Phone: "619-233-3338",
		City:  "San Diego",
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
}

func TestResolve_ByPhone_MatchesDespiteDifferentName(t *testing.T) {
	st := &mockStore{}
	id := st.seed("Acme Dental Group", "San Diego", "(619) 233-3338", "", "places-1")

	r := NewResolver(st)

	// Shared phone short-circuits the name comparison entirely.
	got, err := r.Resolve(context.Background(), model.Candidate{
		Name:  "ADG Dentistry",
		Phone: "+1 619 233 3338",
		City:  "San Diego",
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
}

func TestResolve_ByCityAndName(t *testing.T) {
	st := &mockStore{}
	id := st.seed("Acme Dental Group", "San Diego", "", "", "places-1")

	r := NewResolver(st)
	got, err := r.Resolve(context.Background(), model.Candidate{
		Name: "Acme Dental Grp",
		City: "San Diego",
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
}

func TestResolve_ByCityAndName_PunctuatedName(t *testing.T) {
	st := &mockStore{}
	id := st.seed("Joe's Pizza", "San Diego", "", "", "places-1")

	r := NewResolver(st)

	// The prefix sent to the store must survive the apostrophe, since the
	// store matches it against the raw name column.
	got, err := r.Resolve(context.Background(), model.Candidate{
		Name: "Joe's Pizza",
		City: "San Diego",
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
}

func TestNamePrefix(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Acme Dental Group", "acme"},
		{"Joe's Pizza", "joe"},
		{"  \"Best\" Cafe", "best"},
		{"Bo Tax", "bo"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, namePrefix(tt.name), "namePrefix(%q)", tt.name)
	}
}

func TestResolve_DifferentCityBlocksNameMatch(t *testing.T) {
	st := &mockStore{}
	st.seed("Acme Dental Group", "Portland", "", "", "places-1")

	r := NewResolver(st)
	got, err := r.Resolve(context.Background(), model.Candidate{
		Name: "Acme Dental Group",
		City: "San Diego",
	})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolve_NoMatch(t *testing.T) {
	st := &mockStore{}
	st.seed("Bayside Cafe", "San Diego", "(858) 555-0100", "https://baysidecafe.com", "places-1")

	r := NewResolver(st)
	got, err := r.Resolve(context.Background(), model.Candidate{
		ExternalID: "places-99",
		Name:       "Joe's Plumbing",
		City:       "San Diego",
		Phone:      "619-233-3338",
		Website:    "https://joesplumbing.com",
	})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpsert_InsertsNewLead(t *testing.T) {
	st := &mockStore{}
	r := NewResolver(st)

	id, isNew, wasUpdated, err := r.Upsert(context.Background(), model.Candidate{
		ExternalID: "places-1",
		Name:       "Joe's Plumbing",
		City:       "San Diego",
		Phone:      "619-233-3338",
		Website:    "https://www.joesplumbing.com",
	}, model.LeadStatusJunk)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.False(t, wasUpdated)
	require.NotEmpty(t, id)

	// Derived identity fields are computed on insert.
	stored := st.leads[0]
	assert.Equal(t, "joesplumbing.com", stored.CanonicalDomain)
	assert.Equal(t, "+16192333338", stored.NormalizedPhone)
	assert.Equal(t, model.LeadStatusJunk, stored.Status)
}

func TestUpsert_MergePrefersIncoming(t *testing.T) {
	st := &mockStore{}
	st.seed("Acme Dental", "San Diego", "", "https://acme.com", "places-1")

	r := NewResolver(st)
	id, isNew, wasUpdated, err := r.Upsert(context.Background(), model.Candidate{
		ExternalID: "places-1",
		Name:       "Acme Dental Group",
		City:       "San Diego",
		Phone:      "(619) 233-3338",
		Email:      "front@acme.com",
		Website:    "https://acme.com",
	}, model.LeadStatusQualified)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.True(t, wasUpdated)

	stored := st.leads[0]
	assert.Equal(t, id, stored.ID)
	assert.Equal(t, "Acme Dental Group", stored.Name, "incoming name wins")
	assert.Equal(t, "front@acme.com", stored.Email)
	assert.Equal(t, "+16192333338", stored.NormalizedPhone, "derived field recomputed")
	assert.Equal(t, model.LeadStatusQualified, stored.Status, "scoring verdict applied")
}

func TestUpsert_SilentFieldsSurvive(t *testing.T) {
	st := &mockStore{}
	st.seed("Acme Dental", "San Diego", "(619) 233-3338", "https://acme.com", "places-1")

	r := NewResolver(st)
	_, _, _, err := r.Upsert(context.Background(), model.Candidate{
		ExternalID: "places-1",
		Name:       "Acme Dental",
		City:       "San Diego",
	}, "")
	require.NoError(t, err)

	stored := st.leads[0]
	assert.Equal(t, "https://acme.com", stored.Website, "stored value kept when candidate is silent")
	assert.Equal(t, "+16192333338", stored.NormalizedPhone)
}

func TestUpsert_NoChangeNoWrite(t *testing.T) {
	st := &mockStore{}
	st.seed("Acme Dental", "San Diego", "(619) 233-3338", "https://acme.com", "places-1")

	r := NewResolver(st)
	_, isNew, wasUpdated, err := r.Upsert(context.Background(), model.Candidate{
		ExternalID: "places-1",
		Name:       "Acme Dental",
		City:       "San Diego",
		Phone:      "(619) 233-3338",
		Website:    "https://acme.com",
	}, model.LeadStatusNew)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.False(t, wasUpdated)
	assert.Zero(t, st.updateCalls)
}

func TestUpsert_DuplicateRace_RetriesAndUpdates(t *testing.T) {
	st := &mockStore{failNextInsert: true}
	r := NewResolver(st)

	id, isNew, wasUpdated, err := r.Upsert(context.Background(), model.Candidate{
		ExternalID: "places-1",
		Name:       "Acme Dental",
		City:       "San Diego",
		Website:    "https://acme.com",
	}, model.LeadStatusQualified)
	require.NoError(t, err)
	assert.False(t, isNew, "race loser must not report a new lead")
	assert.True(t, wasUpdated)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, st.insertCalls)
	assert.Equal(t, 1, st.updateCalls)
}

func TestResolveBatch_TwoLookups(t *testing.T) {
	st := &mockStore{}
	st.seed("Acme Dental", "San Diego", "(619) 233-3338", "https://acme.com", "places-1")
	st.seed("Bayside Cafe", "San Diego", "", "", "places-2")

	r := NewResolver(st)
	known, err := r.ResolveBatch(context.Background(), []model.Candidate{
		{ExternalID: "places-1", Website: "https://www.acme.com", Phone: "619-233-3338"},
		{ExternalID: "places-2"},
		{ExternalID: "places-3", Name: "Newcomer Bakery"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, st.lookupCalls, "batch resolve issues exactly two queries")

	assert.True(t, known.Contains(model.Candidate{ExternalID: "places-1"}))
	assert.True(t, known.Contains(model.Candidate{Website: "http://acme.com"}))
	assert.True(t, known.Contains(model.Candidate{Phone: "(619) 233-3338"}))
	assert.True(t, known.Contains(model.Candidate{ExternalID: "places-2"}))
	assert.False(t, known.Contains(model.Candidate{ExternalID: "places-3", Name: "Newcomer Bakery"}))
}

func TestKnownSet_AddWithinBatch(t *testing.T) {
	st := &mockStore{}
	r := NewResolver(st)

	known, err := r.ResolveBatch(context.Background(), nil)
	require.NoError(t, err)

	cand := model.Candidate{ExternalID: "places-9", Website: "https://fresh.com"}
	assert.False(t, known.Contains(cand))
	known.Add(cand)
	assert.True(t, known.Contains(cand))
	assert.True(t, known.Contains(model.Candidate{Website: "https://www.fresh.com"}))
}
