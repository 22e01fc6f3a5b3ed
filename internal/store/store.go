// Package store persists leads, audit snapshots, scores, missions, and the
// append-only mission event log. Postgres is the primary backend; SQLite
// serves single-operator installs.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/model"
)

// ErrDuplicateLead is returned by InsertLead when a uniqueness constraint
// (external source id or canonical domain) rejects the row. Callers resolve
// again and update instead; this closes the resolve-then-insert race between
// concurrent missions.
var ErrDuplicateLead = errors.New("store: duplicate lead")

// Store defines the persistence operations required by the pipeline.
// Lookup methods return (nil, nil) when no row matches.
type Store interface {
	// Leads
	GetLeadByExternalID(ctx context.Context, externalID string) (*model.Lead, error)
	GetLeadByDomain(ctx context.Context, canonicalDomain string) (*model.Lead, error)
	ListLeadsByPhone(ctx context.Context, normalizedPhone string, limit int) ([]model.Lead, error)
	SearchLeadsByCityAndPrefix(ctx context.Context, city, namePrefix string, limit int) ([]model.Lead, error)
	LookupExternalIDs(ctx context.Context, ids []string) (map[string]bool, error)
	LookupDomainsOrPhones(ctx context.Context, domains, phones []string) (map[string]bool, map[string]bool, error)
	InsertLead(ctx context.Context, lead *model.Lead) (string, error)
	UpdateLead(ctx context.Context, lead *model.Lead) error
	ListLeads(ctx context.Context, filter model.ListLeadsFilter) ([]model.Lead, error)

	// Per-lead snapshots (overwritten on revisit)
	UpsertAudit(ctx context.Context, audit *model.AuditResult) error
	UpsertScore(ctx context.Context, score *model.Score) error
	GetScore(ctx context.Context, leadID string) (*model.Score, error)

	// Missions
	CreateMission(ctx context.Context, m *model.Mission) error
	UpdateMissionStatus(ctx context.Context, missionID string, status model.MissionStatus, completedAt *time.Time) error
	GetMission(ctx context.Context, missionID string) (*model.Mission, error)
	ListMissions(ctx context.Context, limit int) ([]model.Mission, error)

	// Event log (append-only)
	AppendEvent(ctx context.Context, e *model.MissionEvent) error
	ListEvents(ctx context.Context, missionID string, limit int) ([]model.MissionEvent, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Config selects and configures a store backend.
type Config struct {
	Driver      string      `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string      `yaml:"database_url" mapstructure:"database_url"`
	Pool        *PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "postgres", "":
		return NewPostgres(ctx, cfg.DatabaseURL, cfg.Pool)
	case "sqlite":
		return NewSQLite(cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unsupported driver %q", cfg.Driver)
	}
}
