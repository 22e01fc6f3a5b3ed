package model

import "time"

// MissionStatus is the execution state of a mission. Failed missions are
// terminal; there is no resumption.
type MissionStatus string

const (
	MissionStatusRunning   MissionStatus = "running"
	MissionStatusCompleted MissionStatus = "completed"
	MissionStatusFailed    MissionStatus = "failed"
)

// Mission is one execution of the search → enrich → audit → score → save
// pipeline against a free-form goal.
type Mission struct {
	ID          string        `json:"id" db:"id"`
	Goal        string        `json:"goal" db:"goal"`
	Query       string        `json:"query" db:"query"`
	Location    string        `json:"location,omitempty" db:"location"`
	Status      MissionStatus `json:"status" db:"status"`
	StartedAt   time.Time     `json:"started_at" db:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
}

// EventKind classifies a mission event entry.
type EventKind string

const (
	EventInfo    EventKind = "info"
	EventSuccess EventKind = "success"
	EventWarning EventKind = "warning"
	EventError   EventKind = "error"
	EventTool    EventKind = "tool"
)

// MissionEvent is one append-only entry in the mission event log. Seq is
// assigned by the store and is monotonically increasing per table; events
// are never mutated or deleted.
type MissionEvent struct {
	Seq       int64     `json:"seq" db:"seq"`
	MissionID string    `json:"mission_id" db:"mission_id"`
	Kind      EventKind `json:"kind" db:"kind"`
	Tool      string    `json:"tool,omitempty" db:"tool"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MissionSummary aggregates the per-candidate outcomes of one mission.
type MissionSummary struct {
	Considered     int `json:"considered"`
	Saved          int `json:"saved"`
	Qualified      int `json:"qualified"`
	Junk           int `json:"junk"`
	Updated        int `json:"updated"`
	Duplicates     int `json:"duplicates"`
	BelowThreshold int `json:"below_threshold"`
}
