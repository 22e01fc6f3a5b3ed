package mission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/model"
)

func TestEventLogger_AppendsAllKinds(t *testing.T) {
	st := newTestStore(t)
	m := &model.Mission{Goal: "g", Query: "q"}
	require.NoError(t, st.CreateMission(context.Background(), m))

	l := NewEventLogger(st, m.ID)
	ctx := context.Background()
	l.Info(ctx, "starting")
	l.Tool(ctx, "places", "text search")
	l.Warning(ctx, "slow response")
	l.Error(ctx, "gave up")
	l.Success(ctx, "done anyway")

	events, err := st.ListEvents(ctx, m.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 5)

	// Newest first.
	assert.Equal(t, model.EventSuccess, events[0].Kind)
	assert.Equal(t, model.EventError, events[1].Kind)
	assert.Equal(t, model.EventWarning, events[2].Kind)
	assert.Equal(t, model.EventTool, events[3].Kind)
	assert.Equal(t, "places", events[3].Tool)
	assert.Equal(t, model.EventInfo, events[4].Kind)
}

func TestEventLogger_SwallowsAppendFailure(t *testing.T) {
	st := &failingStore{Store: newTestStore(t), failAppendEvent: true}
	m := &model.Mission{Goal: "g", Query: "q"}
	require.NoError(t, st.CreateMission(context.Background(), m))

	l := NewEventLogger(st, m.ID)
	assert.NotPanics(t, func() {
		l.Info(context.Background(), "dropped on the floor")
	})

	events, err := st.ListEvents(context.Background(), m.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}
