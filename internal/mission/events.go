package mission

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/store"
)

// EventLogger writes mission progress to the append-only event log and
// mirrors each entry to the process logger. The event log is the only
// failure-visibility channel observers have, so every stage of the pipeline
// reports through here. Append failures are logged and swallowed; losing a
// progress line must never abort a mission.
type EventLogger struct {
	store     store.Store
	missionID string
	log       *zap.Logger
}

// NewEventLogger creates an EventLogger bound to one mission.
func NewEventLogger(st store.Store, missionID string) *EventLogger {
	return &EventLogger{
		store:     st,
		missionID: missionID,
		log:       zap.L().With(zap.String("mission_id", missionID)),
	}
}

func (l *EventLogger) Info(ctx context.Context, msg string) {
	l.append(ctx, model.EventInfo, "", msg)
	l.log.Info(msg)
}

func (l *EventLogger) Success(ctx context.Context, msg string) {
	l.append(ctx, model.EventSuccess, "", msg)
	l.log.Info(msg)
}

func (l *EventLogger) Warning(ctx context.Context, msg string) {
	l.append(ctx, model.EventWarning, "", msg)
	l.log.Warn(msg)
}

func (l *EventLogger) Error(ctx context.Context, msg string) {
	l.append(ctx, model.EventError, "", msg)
	l.log.Error(msg)
}

// Tool records an external-service call (search, details lookup, audit).
func (l *EventLogger) Tool(ctx context.Context, tool, msg string) {
	l.append(ctx, model.EventTool, tool, msg)
	l.log.Info(msg, zap.String("tool", tool))
}

func (l *EventLogger) append(ctx context.Context, kind model.EventKind, tool, msg string) {
	e := &model.MissionEvent{
		MissionID: l.missionID,
		Kind:      kind,
		Tool:      tool,
		Message:   msg,
	}
	if err := l.store.AppendEvent(ctx, e); err != nil {
		l.log.Warn("failed to append mission event",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}
