package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/audit"
	"github.com/sells-group/leadscout/internal/mission"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/scoring"
	"github.com/sells-group/leadscout/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// stubSource returns no candidates so submitted missions complete
// immediately without touching the network.
type stubSource struct{}

func (stubSource) Validate() error { return nil }
func (stubSource) Search(_ context.Context, _, _ string) ([]model.Candidate, error) {
	return nil, nil
}
func (stubSource) EnrichDetails(_ context.Context, _ string) (mission.Details, error) {
	return mission.Details{}, nil
}

func newTestServer(t *testing.T) (http.Handler, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "serve_test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	runner := mission.NewRunner(st, stubSource{}, nil,
		audit.New(), scoring.NewEngine(scoring.DefaultTables()), mission.Config{})
	return newRouter(st, runner), st
}

func TestServe_Health(t *testing.T) {
	h, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestServe_PostMission_RequiresGoal(t *testing.T) {
	h, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/missions", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "goal is required")
}

func TestServe_PostMission_RejectsBadJSON(t *testing.T) {
	h, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/missions", strings.NewReader("{nope")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_PostMission_AcceptsAndRuns(t *testing.T) {
	h, st := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/missions",
		strings.NewReader(`{"goal":"dentists in San Diego, CA"}`)))

	require.Equal(t, http.StatusAccepted, rec.Code)

	// The ack carries the mission id so the client can poll its events.
	var ack struct {
		MissionID string `json:"mission_id"`
		Status    string `json:"status"`
		Goal      string `json:"goal"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	require.NotEmpty(t, ack.MissionID)
	assert.Equal(t, string(model.MissionStatusRunning), ack.Status)
	assert.Equal(t, "dentists in San Diego, CA", ack.Goal)

	// The mission runs on its own goroutine; poll for completion.
	deadline := time.Now().Add(5 * time.Second)
	for {
		missions, err := st.ListMissions(context.Background(), 10)
		require.NoError(t, err)
		if len(missions) == 1 && missions[0].Status == model.MissionStatusCompleted {
			require.Equal(t, ack.MissionID, missions[0].ID)
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("mission did not complete, have %v", missions)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestServe_GetMission_NotFound(t *testing.T) {
	h, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/missions/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServe_GetMissionAndEvents(t *testing.T) {
	h, st := newTestServer(t)

	m := &model.Mission{Goal: "g", Query: "q"}
	require.NoError(t, st.CreateMission(context.Background(), m))
	require.NoError(t, st.AppendEvent(context.Background(), &model.MissionEvent{
		MissionID: m.ID, Kind: model.EventInfo, Message: "starting",
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/missions/"+m.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.Mission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, m.ID, got.ID)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/missions/"+m.ID+"/events", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var events []model.MissionEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "starting", events[0].Message)
}

func TestServe_ListLeads(t *testing.T) {
	h, st := newTestServer(t)

	_, err := st.InsertLead(context.Background(), &model.Lead{
		Name: "Harbor Dental", Status: model.LeadStatusQualified,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/leads?status=qualified", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var leads []model.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &leads))
	require.Len(t, leads, 1)
	assert.Equal(t, "Harbor Dental", leads[0].Name)
}
