package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/db"
	"github.com/sells-group/leadscout/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hottest store operations during a mission.
var preparedStatements = map[string]string{
	"get_lead_by_external_id": `SELECT ` + leadColumns + ` FROM leads WHERE external_source_id = $1`,
	"get_lead_by_domain":      `SELECT ` + leadColumns + ` FROM leads WHERE canonical_domain = $1`,
	"append_event": `INSERT INTO mission_events (mission_id, kind, tool, message, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING seq`,
}

// NewPostgres creates a PostgresStore backed by a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	category           TEXT NOT NULL DEFAULT '',
	street             TEXT NOT NULL DEFAULT '',
	city               TEXT NOT NULL DEFAULT '',
	state              TEXT NOT NULL DEFAULT '',
	zip_code           TEXT NOT NULL DEFAULT '',
	phone              TEXT NOT NULL DEFAULT '',
	email              TEXT NOT NULL DEFAULT '',
	website            TEXT NOT NULL DEFAULT '',
	canonical_domain   TEXT NOT NULL DEFAULT '',
	normalized_phone   TEXT NOT NULL DEFAULT '',
	external_source_id TEXT NOT NULL DEFAULT '',
	status             TEXT NOT NULL DEFAULT 'new',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_leads_external_source_id
	ON leads(external_source_id) WHERE external_source_id <> '';
CREATE UNIQUE INDEX IF NOT EXISTS uq_leads_canonical_domain
	ON leads(canonical_domain) WHERE canonical_domain <> '';
CREATE INDEX IF NOT EXISTS idx_leads_normalized_phone ON leads(normalized_phone);
CREATE INDEX IF NOT EXISTS idx_leads_city_lower ON leads(lower(city));
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);

CREATE TABLE IF NOT EXISTS audit_results (
	lead_id         TEXT PRIMARY KEY REFERENCES leads(id),
	https           BOOLEAN NOT NULL DEFAULT false,
	mobile_viewport BOOLEAN NOT NULL DEFAULT false,
	booking         BOOLEAN NOT NULL DEFAULT false,
	structured_data BOOLEAN NOT NULL DEFAULT false,
	cms_hint        TEXT NOT NULL DEFAULT '',
	load_millis     BIGINT NOT NULL DEFAULT 0,
	analytics       JSONB NOT NULL DEFAULT '[]',
	audited_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS scores (
	lead_id      TEXT PRIMARY KEY REFERENCES leads(id),
	need         INTEGER NOT NULL,
	value        INTEGER NOT NULL,
	reachability INTEGER NOT NULL,
	total        INTEGER NOT NULL,
	reasons      JSONB NOT NULL DEFAULT '[]',
	scored_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS missions (
	id           TEXT PRIMARY KEY,
	goal         TEXT NOT NULL,
	query        TEXT NOT NULL DEFAULT '',
	location     TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'running',
	started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS mission_events (
	seq        BIGSERIAL PRIMARY KEY,
	mission_id TEXT NOT NULL REFERENCES missions(id),
	kind       TEXT NOT NULL,
	tool       TEXT NOT NULL DEFAULT '',
	message    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_mission_events_mission
	ON mission_events(mission_id, seq DESC);
`

// Migrate creates the schema if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

const leadColumns = `id, name, category, street, city, state, zip_code,
	phone, email, website, canonical_domain, normalized_phone,
	external_source_id, status, created_at, updated_at`

func (s *PostgresStore) GetLeadByExternalID(ctx context.Context, externalID string) (*model.Lead, error) {
	if externalID == "" {
		return nil, nil
	}
	row := s.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE external_source_id = $1`,
		externalID,
	)
	return scanLead(row, "postgres: get lead by external id")
}

func (s *PostgresStore) GetLeadByDomain(ctx context.Context, canonicalDomain string) (*model.Lead, error) {
	if canonicalDomain == "" {
		return nil, nil
	}
	row := s.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE canonical_domain = $1`,
		canonicalDomain,
	)
	return scanLead(row, "postgres: get lead by domain")
}

func (s *PostgresStore) ListLeadsByPhone(ctx context.Context, normalizedPhone string, limit int) ([]model.Lead, error) {
	if normalizedPhone == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE normalized_phone = $1 ORDER BY created_at LIMIT $2`,
		normalizedPhone, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads by phone")
	}
	defer rows.Close()
	return scanLeads(rows)
}

func (s *PostgresStore) SearchLeadsByCityAndPrefix(ctx context.Context, city, namePrefix string, limit int) ([]model.Lead, error) {
	if city == "" || namePrefix == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+leadColumns+` FROM leads
		 WHERE lower(city) LIKE '%' || lower($1) || '%'
		   AND lower(name) LIKE lower($2) || '%'
		 ORDER BY created_at LIMIT $3`,
		city, namePrefix, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: search leads by city and prefix")
	}
	defer rows.Close()
	return scanLeads(rows)
}

func (s *PostgresStore) LookupExternalIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	found := make(map[string]bool)
	if len(ids) == 0 {
		return found, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT external_source_id FROM leads WHERE external_source_id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: lookup external ids")
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan external id")
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: lookup external ids iterate")
	}
	return found, nil
}

func (s *PostgresStore) LookupDomainsOrPhones(ctx context.Context, domains, phones []string) (map[string]bool, map[string]bool, error) {
	foundDomains := make(map[string]bool)
	foundPhones := make(map[string]bool)
	if len(domains) == 0 && len(phones) == 0 {
		return foundDomains, foundPhones, nil
	}
	if domains == nil {
		domains = []string{}
	}
	if phones == nil {
		phones = []string{}
	}

	rows, err := s.pool.Query(ctx,
		`SELECT canonical_domain, normalized_phone FROM leads
		 WHERE (canonical_domain <> '' AND canonical_domain = ANY($1))
		    OR (normalized_phone <> '' AND normalized_phone = ANY($2))`,
		domains, phones,
	)
	if err != nil {
		return nil, nil, eris.Wrap(err, "postgres: lookup domains or phones")
	}
	defer rows.Close()

	for rows.Next() {
		var domain, phone string
		if err := rows.Scan(&domain, &phone); err != nil {
			return nil, nil, eris.Wrap(err, "postgres: scan domain or phone")
		}
		if domain != "" {
			foundDomains[domain] = true
		}
		if phone != "" {
			foundPhones[phone] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "postgres: lookup domains or phones iterate")
	}
	return foundDomains, foundPhones, nil
}

func (s *PostgresStore) InsertLead(ctx context.Context, lead *model.Lead) (string, error) {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO leads (id, name, category, street, city, state, zip_code,
			phone, email, website, canonical_domain, normalized_phone,
			external_source_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		lead.ID, lead.Name, lead.Category, lead.Street, lead.City, lead.State,
		lead.ZipCode, lead.Phone, lead.Email, lead.Website, lead.CanonicalDomain,
		lead.NormalizedPhone, lead.ExternalSourceID, string(lead.Status),
		lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrDuplicateLead
		}
		return "", eris.Wrap(err, "postgres: insert lead")
	}
	return lead.ID, nil
}

func (s *PostgresStore) UpdateLead(ctx context.Context, lead *model.Lead) error {
	lead.UpdatedAt = time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET name = $2, category = $3, street = $4, city = $5,
			state = $6, zip_code = $7, phone = $8, email = $9, website = $10,
			canonical_domain = $11, normalized_phone = $12,
			external_source_id = $13, status = $14, updated_at = $15
		 WHERE id = $1`,
		lead.ID, lead.Name, lead.Category, lead.Street, lead.City, lead.State,
		lead.ZipCode, lead.Phone, lead.Email, lead.Website, lead.CanonicalDomain,
		lead.NormalizedPhone, lead.ExternalSourceID, string(lead.Status),
		lead.UpdatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead %s", lead.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: lead not found: %s", lead.ID)
	}
	return nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter model.ListLeadsFilter) ([]model.Lead, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("l.status = $%d", argIdx))
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.MinTotal != nil {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM scores sc WHERE sc.lead_id = l.id AND sc.total >= $%d)", argIdx))
		args = append(args, *filter.MinTotal)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(
		`SELECT l.id, l.name, l.category, l.street, l.city, l.state, l.zip_code,
			l.phone, l.email, l.website, l.canonical_domain, l.normalized_phone,
			l.external_source_id, l.status, l.created_at, l.updated_at
		 FROM leads l%s ORDER BY l.created_at DESC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1,
	)
	args = append(args, limit, filter.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()
	return scanLeads(rows)
}

func (s *PostgresStore) UpsertAudit(ctx context.Context, audit *model.AuditResult) error {
	analyticsJSON, err := json.Marshal(orEmpty(audit.Analytics))
	if err != nil {
		return eris.Wrap(err, "postgres: marshal analytics")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO audit_results (lead_id, https, mobile_viewport, booking,
			structured_data, cms_hint, load_millis, analytics, audited_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (lead_id) DO UPDATE SET
			https = EXCLUDED.https,
			mobile_viewport = EXCLUDED.mobile_viewport,
			booking = EXCLUDED.booking,
			structured_data = EXCLUDED.structured_data,
			cms_hint = EXCLUDED.cms_hint,
			load_millis = EXCLUDED.load_millis,
			analytics = EXCLUDED.analytics,
			audited_at = EXCLUDED.audited_at`,
		audit.LeadID, audit.HTTPS, audit.MobileViewport, audit.Booking,
		audit.StructuredData, audit.CMSHint, audit.LoadMillis, analyticsJSON,
		audit.AuditedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: upsert audit for lead %s", audit.LeadID)
	}
	return nil
}

func (s *PostgresStore) UpsertScore(ctx context.Context, score *model.Score) error {
	reasonsJSON, err := json.Marshal(orEmpty(score.Reasons))
	if err != nil {
		return eris.Wrap(err, "postgres: marshal reasons")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO scores (lead_id, need, value, reachability, total, reasons, scored_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (lead_id) DO UPDATE SET
			need = EXCLUDED.need,
			value = EXCLUDED.value,
			reachability = EXCLUDED.reachability,
			total = EXCLUDED.total,
			reasons = EXCLUDED.reasons,
			scored_at = EXCLUDED.scored_at`,
		score.LeadID, score.Need, score.Value, score.Reachability, score.Total,
		reasonsJSON, score.ScoredAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: upsert score for lead %s", score.LeadID)
	}
	return nil
}

func (s *PostgresStore) GetScore(ctx context.Context, leadID string) (*model.Score, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT lead_id, need, value, reachability, total, reasons, scored_at
		 FROM scores WHERE lead_id = $1`, leadID)

	var sc model.Score
	var reasonsJSON []byte
	err := row.Scan(&sc.LeadID, &sc.Need, &sc.Value, &sc.Reachability,
		&sc.Total, &reasonsJSON, &sc.ScoredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get score for lead %s", leadID)
	}
	if err := json.Unmarshal(reasonsJSON, &sc.Reasons); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal reasons")
	}
	return &sc, nil
}

func (s *PostgresStore) CreateMission(ctx context.Context, m *model.Mission) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.StartedAt.IsZero() {
		m.StartedAt = time.Now().UTC()
	}
	if m.Status == "" {
		m.Status = model.MissionStatusRunning
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO missions (id, goal, query, location, status, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.Goal, m.Query, m.Location, string(m.Status), m.StartedAt,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: create mission")
	}
	return nil
}

func (s *PostgresStore) UpdateMissionStatus(ctx context.Context, missionID string, status model.MissionStatus, completedAt *time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE missions SET status = $2, completed_at = $3 WHERE id = $1`,
		missionID, string(status), completedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update mission status %s", missionID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: mission not found: %s", missionID)
	}
	return nil
}

func (s *PostgresStore) GetMission(ctx context.Context, missionID string) (*model.Mission, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, goal, query, location, status, started_at, completed_at
		 FROM missions WHERE id = $1`,
		missionID,
	)

	var m model.Mission
	var status string
	err := row.Scan(&m.ID, &m.Goal, &m.Query, &m.Location, &status, &m.StartedAt, &m.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get mission %s", missionID)
	}
	m.Status = model.MissionStatus(status)
	return &m, nil
}

func (s *PostgresStore) ListMissions(ctx context.Context, limit int) ([]model.Mission, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, goal, query, location, status, started_at, completed_at
		 FROM missions ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list missions")
	}
	defer rows.Close()

	var missions []model.Mission
	for rows.Next() {
		var m model.Mission
		var status string
		if err := rows.Scan(&m.ID, &m.Goal, &m.Query, &m.Location, &status, &m.StartedAt, &m.CompletedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan mission")
		}
		m.Status = model.MissionStatus(status)
		missions = append(missions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: list missions iterate")
	}
	return missions, nil
}

func (s *PostgresStore) AppendEvent(ctx context.Context, e *model.MissionEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO mission_events (mission_id, kind, tool, message, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING seq`,
		e.MissionID, string(e.Kind), e.Tool, e.Message, e.CreatedAt,
	).Scan(&e.Seq)
	if err != nil {
		return eris.Wrapf(err, "postgres: append event for mission %s", e.MissionID)
	}
	return nil
}

func (s *PostgresStore) ListEvents(ctx context.Context, missionID string, limit int) ([]model.MissionEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT seq, mission_id, kind, tool, message, created_at
		 FROM mission_events WHERE mission_id = $1
		 ORDER BY seq DESC LIMIT $2`,
		missionID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list events for mission %s", missionID)
	}
	defer rows.Close()

	var events []model.MissionEvent
	for rows.Next() {
		var e model.MissionEvent
		var kind string
		if err := rows.Scan(&e.Seq, &e.MissionID, &kind, &e.Tool, &e.Message, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan event")
		}
		e.Kind = model.EventKind(kind)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: list events iterate")
	}
	return events, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func scanLead(row pgx.Row, wrapMsg string) (*model.Lead, error) {
	var l model.Lead
	var status string
	err := row.Scan(
		&l.ID, &l.Name, &l.Category, &l.Street, &l.City, &l.State, &l.ZipCode,
		&l.Phone, &l.Email, &l.Website, &l.CanonicalDomain, &l.NormalizedPhone,
		&l.ExternalSourceID, &status, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, wrapMsg)
	}
	l.Status = model.LeadStatus(status)
	return &l, nil
}

func scanLeads(rows pgx.Rows) ([]model.Lead, error) {
	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		var status string
		if err := rows.Scan(
			&l.ID, &l.Name, &l.Category, &l.Street, &l.City, &l.State, &l.ZipCode,
			&l.Phone, &l.Email, &l.Website, &l.CanonicalDomain, &l.NormalizedPhone,
			&l.ExternalSourceID, &status, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		l.Status = model.LeadStatus(status)
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: scan leads iterate")
	}
	return leads, nil
}
