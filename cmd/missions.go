package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadscout/internal/model"
)

var missionsCmd = &cobra.Command{
	Use:   "missions",
	Short: "Inspect mission history",
	Long:  "Commands for listing missions and viewing their event logs.",
}

// -- missions list --

var missionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past missions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		missions, err := st.ListMissions(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "missions list")
		}

		if len(missions) == 0 {
			fmt.Fprintln(os.Stderr, "No missions found.")
			return nil
		}

		formatMissionsList(os.Stdout, missions)
		return nil
	},
}

// -- missions show --

var missionsShowCmd = &cobra.Command{
	Use:   "show <mission-id>",
	Short: "Show one mission as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		m, err := st.GetMission(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "missions show")
		}
		if m == nil {
			return eris.Errorf("mission %s not found", args[0])
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	},
}

// -- missions events --

var missionsEventsCmd = &cobra.Command{
	Use:   "events <mission-id>",
	Short: "Show the event log of a mission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		events, err := st.ListEvents(ctx, args[0], limit)
		if err != nil {
			return eris.Wrap(err, "missions events")
		}

		if len(events) == 0 {
			fmt.Fprintln(os.Stderr, "No events found.")
			return nil
		}

		// Events come back newest first; replay them oldest first.
		for i := len(events) - 1; i >= 0; i-- {
			e := events[i]
			tool := ""
			if e.Tool != "" {
				tool = " [" + e.Tool + "]"
			}
			fmt.Printf("%s  %-8s%s %s\n",
				e.CreatedAt.Format("15:04:05"), e.Kind, tool, e.Message)
		}
		return nil
	},
}

func formatMissionsList(out io.Writer, missions []model.Mission) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tGOAL\tSTATUS\tSTARTED\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t----\t------\t-------\t--------")

	for _, m := range missions {
		dur := "-"
		if m.CompletedAt != nil {
			dur = m.CompletedAt.Sub(m.StartedAt).Round(time.Second).String()
		}

		goal := m.Goal
		if len(goal) > 40 {
			goal = goal[:37] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncateID(m.ID),
			goal,
			m.Status,
			m.StartedAt.Format("2006-01-02 15:04"),
			dur,
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	missionsListCmd.Flags().Int("limit", 20, "max number of missions to display")
	missionsEventsCmd.Flags().Int("limit", 200, "max number of events to display")

	missionsCmd.AddCommand(missionsListCmd)
	missionsCmd.AddCommand(missionsShowCmd)
	missionsCmd.AddCommand(missionsEventsCmd)
	rootCmd.AddCommand(missionsCmd)
}
