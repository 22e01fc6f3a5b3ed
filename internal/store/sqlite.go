package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadscout/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
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
	created_at         DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_leads_external_source_id
	ON leads(external_source_id) WHERE external_source_id <> '';
CREATE UNIQUE INDEX IF NOT EXISTS uq_leads_canonical_domain
	ON leads(canonical_domain) WHERE canonical_domain <> '';
CREATE INDEX IF NOT EXISTS idx_leads_normalized_phone ON leads(normalized_phone);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);

CREATE TABLE IF NOT EXISTS audit_results (
	lead_id         TEXT PRIMARY KEY REFERENCES leads(id),
	https           INTEGER NOT NULL DEFAULT 0,
	mobile_viewport INTEGER NOT NULL DEFAULT 0,
	booking         INTEGER NOT NULL DEFAULT 0,
	structured_data INTEGER NOT NULL DEFAULT 0,
	cms_hint        TEXT NOT NULL DEFAULT '',
	load_millis     INTEGER NOT NULL DEFAULT 0,
	analytics       TEXT NOT NULL DEFAULT '[]',
	audited_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS scores (
	lead_id      TEXT PRIMARY KEY REFERENCES leads(id),
	need         INTEGER NOT NULL,
	value        INTEGER NOT NULL,
	reachability INTEGER NOT NULL,
	total        INTEGER NOT NULL,
	reasons      TEXT NOT NULL DEFAULT '[]',
	scored_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS missions (
	id           TEXT PRIMARY KEY,
	goal         TEXT NOT NULL,
	query        TEXT NOT NULL DEFAULT '',
	location     TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'running',
	started_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at DATETIME
);

CREATE TABLE IF NOT EXISTS mission_events (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	mission_id TEXT NOT NULL REFERENCES missions(id),
	kind       TEXT NOT NULL,
	tool       TEXT NOT NULL DEFAULT '',
	message    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_mission_events_mission ON mission_events(mission_id, seq);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetLeadByExternalID(ctx context.Context, externalID string) (*model.Lead, error) {
	if externalID == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE external_source_id = ?`,
		externalID,
	)
	return scanLeadSQL(row, "sqlite: get lead by external id")
}

func (s *SQLiteStore) GetLeadByDomain(ctx context.Context, canonicalDomain string) (*model.Lead, error) {
	if canonicalDomain == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE canonical_domain = ?`,
		canonicalDomain,
	)
	return scanLeadSQL(row, "sqlite: get lead by domain")
}

func (s *SQLiteStore) ListLeadsByPhone(ctx context.Context, normalizedPhone string, limit int) ([]model.Lead, error) {
	if normalizedPhone == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE normalized_phone = ? ORDER BY created_at LIMIT ?`,
		normalizedPhone, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads by phone")
	}
	defer rows.Close()
	return scanLeadsSQL(rows)
}

func (s *SQLiteStore) SearchLeadsByCityAndPrefix(ctx context.Context, city, namePrefix string, limit int) ([]model.Lead, error) {
	if city == "" || namePrefix == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+leadColumns+` FROM leads
		 WHERE lower(city) LIKE '%' || lower(?) || '%'
		   AND lower(name) LIKE lower(?) || '%'
		 ORDER BY created_at LIMIT ?`,
		city, namePrefix, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: search leads by city and prefix")
	}
	defer rows.Close()
	return scanLeadsSQL(rows)
}

func (s *SQLiteStore) LookupExternalIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	found := make(map[string]bool)
	if len(ids) == 0 {
		return found, nil
	}
	query := `SELECT external_source_id FROM leads WHERE external_source_id IN (` + placeholders(len(ids)) + `)`
	rows, err := s.db.QueryContext(ctx, query, toAnySlice(ids)...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: lookup external ids")
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan external id")
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: lookup external ids iterate")
	}
	return found, nil
}

func (s *SQLiteStore) LookupDomainsOrPhones(ctx context.Context, domains, phones []string) (map[string]bool, map[string]bool, error) {
	foundDomains := make(map[string]bool)
	foundPhones := make(map[string]bool)
	if len(domains) == 0 && len(phones) == 0 {
		return foundDomains, foundPhones, nil
	}

	var clauses []string
	var args []any
	if len(domains) > 0 {
		clauses = append(clauses,
			`(canonical_domain <> '' AND canonical_domain IN (`+placeholders(len(domains))+`))`)
		args = append(args, toAnySlice(domains)...)
	}
	if len(phones) > 0 {
		clauses = append(clauses,
			`(normalized_phone <> '' AND normalized_phone IN (`+placeholders(len(phones))+`))`)
		args = append(args, toAnySlice(phones)...)
	}

	query := `SELECT canonical_domain, normalized_phone FROM leads WHERE ` +
		strings.Join(clauses, " OR ")
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: lookup domains or phones")
	}
	defer rows.Close()

	for rows.Next() {
		var domain, phone string
		if err := rows.Scan(&domain, &phone); err != nil {
			return nil, nil, eris.Wrap(err, "sqlite: scan domain or phone")
		}
		if domain != "" {
			foundDomains[domain] = true
		}
		if phone != "" {
			foundPhones[phone] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: lookup domains or phones iterate")
	}
	return foundDomains, foundPhones, nil
}

func (s *SQLiteStore) InsertLead(ctx context.Context, lead *model.Lead) (string, error) {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (id, name, category, street, city, state, zip_code,
			phone, email, website, canonical_domain, normalized_phone,
			external_source_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.Name, lead.Category, lead.Street, lead.City, lead.State,
		lead.ZipCode, lead.Phone, lead.Email, lead.Website, lead.CanonicalDomain,
		lead.NormalizedPhone, lead.ExternalSourceID, string(lead.Status),
		lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return "", ErrDuplicateLead
		}
		return "", eris.Wrap(err, "sqlite: insert lead")
	}
	return lead.ID, nil
}

func (s *SQLiteStore) UpdateLead(ctx context.Context, lead *model.Lead) error {
	lead.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET name = ?, category = ?, street = ?, city = ?,
			state = ?, zip_code = ?, phone = ?, email = ?, website = ?,
			canonical_domain = ?, normalized_phone = ?,
			external_source_id = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		lead.Name, lead.Category, lead.Street, lead.City, lead.State,
		lead.ZipCode, lead.Phone, lead.Email, lead.Website, lead.CanonicalDomain,
		lead.NormalizedPhone, lead.ExternalSourceID, string(lead.Status),
		lead.UpdatedAt, lead.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead %s", lead.ID)
	}
	return checkRowsAffected(res, "lead", lead.ID)
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter model.ListLeadsFilter) ([]model.Lead, error) {
	var conditions []string
	var args []any

	if filter.Status != "" {
		conditions = append(conditions, "l.status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.MinTotal != nil {
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM scores sc WHERE sc.lead_id = l.id AND sc.total >= ?)")
		args = append(args, *filter.MinTotal)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(
		`SELECT l.id, l.name, l.category, l.street, l.city, l.state, l.zip_code,
			l.phone, l.email, l.website, l.canonical_domain, l.normalized_phone,
			l.external_source_id, l.status, l.created_at, l.updated_at
		 FROM leads l%s ORDER BY l.created_at DESC LIMIT ? OFFSET ?`, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()
	return scanLeadsSQL(rows)
}

func (s *SQLiteStore) UpsertAudit(ctx context.Context, audit *model.AuditResult) error {
	analyticsJSON, err := json.Marshal(orEmpty(audit.Analytics))
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal analytics")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audit_results (lead_id, https, mobile_viewport, booking,
			structured_data, cms_hint, load_millis, analytics, audited_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (lead_id) DO UPDATE SET
			https = excluded.https,
			mobile_viewport = excluded.mobile_viewport,
			booking = excluded.booking,
			structured_data = excluded.structured_data,
			cms_hint = excluded.cms_hint,
			load_millis = excluded.load_millis,
			analytics = excluded.analytics,
			audited_at = excluded.audited_at`,
		audit.LeadID, audit.HTTPS, audit.MobileViewport, audit.Booking,
		audit.StructuredData, audit.CMSHint, audit.LoadMillis, string(analyticsJSON),
		audit.AuditedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert audit for lead %s", audit.LeadID)
	}
	return nil
}

func (s *SQLiteStore) UpsertScore(ctx context.Context, score *model.Score) error {
	reasonsJSON, err := json.Marshal(orEmpty(score.Reasons))
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal reasons")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scores (lead_id, need, value, reachability, total, reasons, scored_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (lead_id) DO UPDATE SET
			need = excluded.need,
			value = excluded.value,
			reachability = excluded.reachability,
			total = excluded.total,
			reasons = excluded.reasons,
			scored_at = excluded.scored_at`,
		score.LeadID, score.Need, score.Value, score.Reachability, score.Total,
		string(reasonsJSON), score.ScoredAt,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: upsert score for lead %s", score.LeadID)
	}
	return nil
}

func (s *SQLiteStore) GetScore(ctx context.Context, leadID string) (*model.Score, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT lead_id, need, value, reachability, total, reasons, scored_at
		 FROM scores WHERE lead_id = ?`, leadID)

	var sc model.Score
	var reasonsJSON string
	err := row.Scan(&sc.LeadID, &sc.Need, &sc.Value, &sc.Reachability,
		&sc.Total, &reasonsJSON, &sc.ScoredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get score for lead %s", leadID)
	}
	if err := json.Unmarshal([]byte(reasonsJSON), &sc.Reasons); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal reasons")
	}
	return &sc, nil
}

func (s *SQLiteStore) CreateMission(ctx context.Context, m *model.Mission) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.StartedAt.IsZero() {
		m.StartedAt = time.Now().UTC()
	}
	if m.Status == "" {
		m.Status = model.MissionStatusRunning
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO missions (id, goal, query, location, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Goal, m.Query, m.Location, string(m.Status), m.StartedAt,
	)
	return eris.Wrap(err, "sqlite: create mission")
}

func (s *SQLiteStore) UpdateMissionStatus(ctx context.Context, missionID string, status model.MissionStatus, completedAt *time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE missions SET status = ?, completed_at = ? WHERE id = ?`,
		string(status), completedAt, missionID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update mission status %s", missionID)
	}
	return checkRowsAffected(res, "mission", missionID)
}

func (s *SQLiteStore) GetMission(ctx context.Context, missionID string) (*model.Mission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, goal, query, location, status, started_at, completed_at
		 FROM missions WHERE id = ?`,
		missionID,
	)

	var m model.Mission
	var status string
	var completedAt sql.NullTime
	err := row.Scan(&m.ID, &m.Goal, &m.Query, &m.Location, &status, &m.StartedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get mission %s", missionID)
	}
	m.Status = model.MissionStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		m.CompletedAt = &t
	}
	return &m, nil
}

func (s *SQLiteStore) ListMissions(ctx context.Context, limit int) ([]model.Mission, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, goal, query, location, status, started_at, completed_at
		 FROM missions ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list missions")
	}
	defer rows.Close()

	var missions []model.Mission
	for rows.Next() {
		var m model.Mission
		var status string
		var completedAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.Goal, &m.Query, &m.Location, &status, &m.StartedAt, &completedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan mission")
		}
		m.Status = model.MissionStatus(status)
		if completedAt.Valid {
			t := completedAt.Time
			m.CompletedAt = &t
		}
		missions = append(missions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: list missions iterate")
	}
	return missions, nil
}

func (s *SQLiteStore) AppendEvent(ctx context.Context, e *model.MissionEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO mission_events (mission_id, kind, tool, message, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.MissionID, string(e.Kind), e.Tool, e.Message, e.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: append event for mission %s", e.MissionID)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return eris.Wrap(err, "sqlite: event last insert id")
	}
	e.Seq = seq
	return nil
}

func (s *SQLiteStore) ListEvents(ctx context.Context, missionID string, limit int) ([]model.MissionEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, mission_id, kind, tool, message, created_at
		 FROM mission_events WHERE mission_id = ?
		 ORDER BY seq DESC LIMIT ?`,
		missionID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list events for mission %s", missionID)
	}
	defer rows.Close()

	var events []model.MissionEvent
	for rows.Next() {
		var e model.MissionEvent
		var kind string
		if err := rows.Scan(&e.Seq, &e.MissionID, &kind, &e.Tool, &e.Message, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan event")
		}
		e.Kind = model.EventKind(kind)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: list events iterate")
	}
	return events, nil
}

// isSQLiteUniqueViolation inspects the driver error text. modernc.org/sqlite
// does not expose a typed error for constraint failures.
func isSQLiteUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "sqlite: rows affected for %s %s", entity, id)
	}
	if n == 0 {
		return eris.Errorf("sqlite: %s not found: %s", entity, id)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func scanLeadSQL(row *sql.Row, wrapMsg string) (*model.Lead, error) {
	var l model.Lead
	var status string
	err := row.Scan(
		&l.ID, &l.Name, &l.Category, &l.Street, &l.City, &l.State, &l.ZipCode,
		&l.Phone, &l.Email, &l.Website, &l.CanonicalDomain, &l.NormalizedPhone,
		&l.ExternalSourceID, &status, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, wrapMsg)
	}
	l.Status = model.LeadStatus(status)
	return &l, nil
}

func scanLeadsSQL(rows *sql.Rows) ([]model.Lead, error) {
	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		var status string
		if err := rows.Scan(
			&l.ID, &l.Name, &l.Category, &l.Street, &l.City, &l.State, &l.ZipCode,
			&l.Phone, &l.Email, &l.Website, &l.CanonicalDomain, &l.NormalizedPhone,
			&l.ExternalSourceID, &status, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		l.Status = model.LeadStatus(status)
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: scan leads iterate")
	}
	return leads, nil
}
