// Package mission orchestrates one lead discovery run: plan the search,
// pull candidates from the source, enrich contact details, audit websites,
// score, and persist through the identity resolver. Progress and failures
// are recorded on the mission's append-only event log; the log is the only
// place a caller can see why a mission failed.
package mission

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadscout/internal/audit"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/resolver"
	"github.com/sells-group/leadscout/internal/scoring"
	"github.com/sells-group/leadscout/internal/store"
)

// Config bounds a mission run. Zero values select the defaults; a zero
// MinScore disables the score threshold entirely.
type Config struct {
	MaxLeads    int `mapstructure:"max_leads" yaml:"max_leads"`
	MinScore    int `mapstructure:"min_score" yaml:"min_score"`
	EnrichLimit int `mapstructure:"enrich_limit" yaml:"enrich_limit"`
	Parallelism int `mapstructure:"parallelism" yaml:"parallelism"`
}

func (c Config) withDefaults() Config {
	if c.MaxLeads <= 0 {
		c.MaxLeads = 10
	}
	if c.EnrichLimit <= 0 {
		c.EnrichLimit = 15
	}
	if c.Parallelism <= 0 {
		c.Parallelism = 5
	}
	return c
}

// Runner executes missions against a source and a store.
type Runner struct {
	store    store.Store
	source   Source
	planner  Planner
	auditor  *audit.Auditor
	engine   *scoring.Engine
	resolver *resolver.Resolver
	cfg      Config
	log      *zap.Logger
}

// NewRunner wires a Runner. A nil planner falls back to the heuristic.
func NewRunner(st store.Store, src Source, planner Planner, auditor *audit.Auditor, engine *scoring.Engine, cfg Config) *Runner {
	if planner == nil {
		planner = HeuristicPlanner{}
	}
	return &Runner{
		store:    st,
		source:   src,
		planner:  planner,
		auditor:  auditor,
		engine:   engine,
		resolver: resolver.NewResolver(st),
		cfg:      cfg.withDefaults(),
		log:      zap.L().Named("mission"),
	}
}

// Prepare plans the goal and creates the mission record in running state.
// Callers that need the mission id before the pipeline finishes (the HTTP
// trigger) prepare first, acknowledge, then call Execute.
func (r *Runner) Prepare(ctx context.Context, goal string) (*model.Mission, error) {
	plan, err := r.planner.Plan(ctx, goal)
	if err != nil {
		return nil, eris.Wrap(err, "mission: plan goal")
	}

	m := &model.Mission{
		Goal:     goal,
		Query:    plan.Query,
		Location: plan.Location,
	}
	if err := r.store.CreateMission(ctx, m); err != nil {
		return nil, eris.Wrap(err, "mission: create mission")
	}
	return m, nil
}

// Execute runs the pipeline for a prepared mission and returns its summary.
// Pipeline failures mark the mission failed and leave a diagnostic on its
// event log before the error is returned.
func (r *Runner) Execute(ctx context.Context, m *model.Mission) (*model.MissionSummary, error) {
	events := NewEventLogger(r.store, m.ID)
	summary, runErr := r.execute(ctx, m, events)
	if runErr != nil {
		events.Error(ctx, failureMessage(runErr))
		r.finish(ctx, m, model.MissionStatusFailed)
		return summary, runErr
	}
	r.finish(ctx, m, model.MissionStatusCompleted)
	return summary, nil
}

// Run prepares and executes one mission for the goal. The mission record is
// non-nil whenever it was created, including on pipeline failure.
func (r *Runner) Run(ctx context.Context, goal string) (*model.Mission, *model.MissionSummary, error) {
	m, err := r.Prepare(ctx, goal)
	if err != nil {
		return nil, nil, err
	}
	summary, err := r.Execute(ctx, m)
	return m, summary, err
}

// finish stamps the terminal status. A failed stamp is logged and dropped;
// the mission's events already tell the story and there is no better
// recovery than leaving the row running.
func (r *Runner) finish(ctx context.Context, m *model.Mission, status model.MissionStatus) {
	now := time.Now().UTC()
	if err := r.store.UpdateMissionStatus(ctx, m.ID, status, &now); err != nil {
		r.log.Warn("failed to stamp mission status",
			zap.String("mission_id", m.ID),
			zap.String("status", string(status)),
			zap.Error(err))
		return
	}
	m.Status = status
	m.CompletedAt = &now
}

func (r *Runner) execute(ctx context.Context, m *model.Mission, events *EventLogger) (*model.MissionSummary, error) {
	summary := &model.MissionSummary{}

	if err := r.source.Validate(); err != nil {
		return summary, err
	}

	events.Info(ctx, fmt.Sprintf("searching for %q in %q", m.Query, m.Location))
	events.Tool(ctx, "places", "text search: "+m.Query)
	cands, err := r.source.Search(ctx, m.Query, m.Location)
	if err != nil {
		return summary, classifySourceError(err)
	}
	summary.Considered = len(cands)
	events.Info(ctx, fmt.Sprintf("search returned %d candidates", len(cands)))

	if len(cands) == 0 {
		events.Success(ctx, "no candidates found; nothing to do")
		return summary, nil
	}

	r.enrich(ctx, cands, events)

	known, err := r.resolver.ResolveBatch(ctx, cands)
	if err != nil {
		return summary, &PersistenceError{Op: "resolve batch", Err: err}
	}

	for i := range cands {
		cand := cands[i]
		if known.Contains(cand) {
			summary.Duplicates++
			continue
		}

		auditResult := r.auditCandidate(ctx, cand, events)
		score := r.engine.Score(auditResult, scoring.ContactInfo{
			Phone:   cand.Phone,
			Email:   cand.Email,
			Website: cand.Website,
		}, cand.Category)

		if !r.meetsThreshold(score.Total) {
			summary.BelowThreshold++
			continue
		}

		status := model.LeadStatusJunk
		if score.Qualified() {
			status = model.LeadStatusQualified
		}

		leadID, isNew, updated, err := r.resolver.Upsert(ctx, cand, status)
		if err != nil {
			return summary, &PersistenceError{Op: "upsert lead", Err: err}
		}

		auditResult.LeadID = leadID
		if err := r.store.UpsertAudit(ctx, &auditResult); err != nil {
			return summary, &PersistenceError{Op: "save audit", Err: err}
		}
		score.LeadID = leadID
		if err := r.store.UpsertScore(ctx, &score); err != nil {
			return summary, &PersistenceError{Op: "save score", Err: err}
		}

		known.Add(cand)
		if isNew {
			summary.Saved++
		} else if updated {
			summary.Updated++
		}
		if status == model.LeadStatusQualified {
			summary.Qualified++
			events.Success(ctx, fmt.Sprintf("qualified: %s (score %d)", cand.Name, score.Total))
		} else {
			summary.Junk++
		}

		if summary.Qualified >= r.cfg.MaxLeads {
			events.Info(ctx, fmt.Sprintf("reached %d qualified leads, stopping early", r.cfg.MaxLeads))
			break
		}
	}

	events.Success(ctx, fmt.Sprintf(
		"mission complete: %d considered, %d saved (%d qualified, %d junk), %d updated, %d duplicates, %d below threshold",
		summary.Considered, summary.Saved, summary.Qualified, summary.Junk,
		summary.Updated, summary.Duplicates, summary.BelowThreshold))
	return summary, nil
}

func (r *Runner) meetsThreshold(total int) bool {
	return r.cfg.MinScore == 0 || total >= r.cfg.MinScore
}

// enrich fills missing phone and website on the first EnrichLimit candidates
// using parallel detail lookups. Enrichment is best effort: a failed lookup
// logs a warning event and the candidate continues with what it has.
func (r *Runner) enrich(ctx context.Context, cands []model.Candidate, events *EventLogger) {
	limit := r.cfg.EnrichLimit
	if limit > len(cands) {
		limit = len(cands)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Parallelism)

	for i := 0; i < limit; i++ {
		if cands[i].ExternalID == "" || (cands[i].Phone != "" && cands[i].Website != "") {
			continue
		}
		i := i
		g.Go(func() error {
			details, err := r.source.EnrichDetails(gctx, cands[i].ExternalID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				events.Warning(gctx, fmt.Sprintf("detail lookup failed for %s: %v", cands[i].Name, err))
				return nil
			}
			if cands[i].Phone == "" {
				cands[i].Phone = details.Phone
			}
			if cands[i].Website == "" {
				cands[i].Website = details.Website
			}
			return nil
		})
	}
	// Goroutines never return errors; Wait only joins them.
	_ = g.Wait()
}

// auditCandidate inspects the candidate's website. The auditor never fails;
// missing or unreachable sites produce a degraded result whose CMS hint
// records what happened.
func (r *Runner) auditCandidate(ctx context.Context, cand model.Candidate, events *EventLogger) model.AuditResult {
	if cand.Website == "" {
		return model.AuditResult{
			CMSHint:   model.CMSHintNoWebsite,
			AuditedAt: time.Now().UTC(),
		}
	}
	events.Tool(ctx, "audit", "inspecting "+cand.Website)
	return r.auditor.Audit(ctx, cand.Website)
}
