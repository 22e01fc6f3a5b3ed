package mission

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/store"
)

// mockSource is a scripted Source for runner tests.
type mockSource struct {
	validateErr error
	searchErr   error
	candidates  []model.Candidate
	details     map[string]Details
	detailsErr  map[string]error

	searchCalls int
	enrichCalls int
}

func (m *mockSource) Validate() error {
	return m.validateErr
}

func (m *mockSource) Search(_ context.Context, _, _ string) ([]model.Candidate, error) {
	m.searchCalls++
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	out := make([]model.Candidate, len(m.candidates))
	copy(out, m.candidates)
	return out, nil
}

func (m *mockSource) EnrichDetails(_ context.Context, externalID string) (Details, error) {
	m.enrichCalls++
	if err, ok := m.detailsErr[externalID]; ok {
		return Details{}, err
	}
	return m.details[externalID], nil
}

// fixedPlanner returns a canned plan regardless of the goal.
type fixedPlanner struct {
	plan Plan
	err  error
}

func (p fixedPlanner) Plan(_ context.Context, _ string) (Plan, error) {
	return p.plan, p.err
}

// failingStore wraps a real store and fails selected write operations, so
// runner tests can exercise the fatal persistence path against otherwise
// working storage.
type failingStore struct {
	store.Store
	failUpsertScore   bool
	failCreateMission bool
	failAppendEvent   bool
}

var errDiskFull = errors.New("disk full")

func (f *failingStore) CreateMission(ctx context.Context, m *model.Mission) error {
	if f.failCreateMission {
		return errDiskFull
	}
	return f.Store.CreateMission(ctx, m)
}

func (f *failingStore) AppendEvent(ctx context.Context, e *model.MissionEvent) error {
	if f.failAppendEvent {
		return errDiskFull
	}
	return f.Store.AppendEvent(ctx, e)
}

func (f *failingStore) UpsertScore(ctx context.Context, score *model.Score) error {
	if f.failUpsertScore {
		return errDiskFull
	}
	return f.Store.UpsertScore(ctx, score)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "mission_test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return st
}
