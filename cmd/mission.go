package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/audit"
	"github.com/sells-group/leadscout/internal/mission"
	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/scoring"
	"github.com/sells-group/leadscout/internal/store"
	"github.com/sells-group/leadscout/pkg/anthropic"
)

var (
	missionMaxLeads int
	missionMinScore int
	missionNoLLM    bool
)

var missionCmd = &cobra.Command{
	Use:   "mission <goal>",
	Short: "Run a lead discovery mission",
	Long:  `Runs the full pipeline for a free-form goal such as "dentists in San Diego, CA": search, enrich, audit, score, and save.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("mission"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		missionCfg := cfg.Mission
		if missionMaxLeads > 0 {
			missionCfg.MaxLeads = missionMaxLeads
		}
		if cmd.Flags().Changed("min-score") {
			missionCfg.MinScore = missionMinScore
		}

		runner, err := buildRunner(st, missionCfg)
		if err != nil {
			return err
		}

		m, summary, err := runner.Run(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "run mission")
		}

		zap.L().Info("mission finished",
			zap.String("mission_id", m.ID),
			zap.String("status", string(m.Status)),
			zap.Int("saved", summary.Saved),
			zap.Int("qualified", summary.Qualified),
		)

		out := struct {
			MissionID string                `json:"mission_id"`
			Status    string                `json:"status"`
			Query     string                `json:"query"`
			Location  string                `json:"location,omitempty"`
			Summary   *model.MissionSummary `json:"summary"`
		}{
			MissionID: m.ID,
			Status:    string(m.Status),
			Query:     m.Query,
			Location:  m.Location,
			Summary:   summary,
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

// buildRunner assembles the mission pipeline from configuration.
func buildRunner(st store.Store, missionCfg mission.Config) (*mission.Runner, error) {
	source := mission.NewPlacesSource(cfg.Places.APIKey,
		mission.WithMaxResults(cfg.Places.MaxResults))

	var planner mission.Planner = mission.HeuristicPlanner{}
	if cfg.Anthropic.Key != "" && !missionNoLLM {
		planner = mission.NewAnthropicPlanner(
			anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model)
	}

	auditor := audit.New(audit.WithTimeouts(
		time.Duration(cfg.Audit.FetchTimeoutSecs)*time.Second,
		time.Duration(cfg.Audit.BodyTimeoutSecs)*time.Second,
	))

	tables := scoring.DefaultTables()
	if cfg.Scoring.TablesPath != "" {
		t, err := scoring.LoadTables(cfg.Scoring.TablesPath)
		if err != nil {
			return nil, err
		}
		tables = t
	}

	return mission.NewRunner(st, source, planner, auditor, scoring.NewEngine(tables), missionCfg), nil
}

func init() {
	missionCmd.Flags().IntVar(&missionMaxLeads, "max-leads", 0, "stop after this many qualified leads (default from config)")
	missionCmd.Flags().IntVar(&missionMinScore, "min-score", 0, "skip candidates scoring below this total (0 disables)")
	missionCmd.Flags().BoolVar(&missionNoLLM, "no-llm", false, "use the heuristic planner even when an Anthropic key is configured")
	rootCmd.AddCommand(missionCmd)
}
