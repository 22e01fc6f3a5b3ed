package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadscout/internal/model"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect stored leads",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored leads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		minTotal, _ := cmd.Flags().GetInt("min-total")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := model.ListLeadsFilter{
			Status: model.LeadStatus(status),
			Limit:  limit,
		}
		if cmd.Flags().Changed("min-total") {
			filter.MinTotal = &minTotal
		}

		leads, err := st.ListLeads(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "leads list")
		}

		if len(leads) == 0 {
			fmt.Fprintln(os.Stderr, "No leads found.")
			return nil
		}

		formatLeadsList(os.Stdout, leads)
		return nil
	},
}

func formatLeadsList(out io.Writer, leads []model.Lead) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCITY\tPHONE\tWEBSITE\tSTATUS")
	_, _ = fmt.Fprintln(w, "--\t----\t----\t-----\t-------\t------")

	for _, l := range leads {
		name := l.Name
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		site := l.Website
		if len(site) > 35 {
			site = site[:32] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(l.ID), name, l.City, l.Phone, site, l.Status)
	}
	_ = w.Flush()
}

func init() {
	leadsListCmd.Flags().String("status", "", "filter by lead status (new, contacted, qualified, junk)")
	leadsListCmd.Flags().Int("min-total", 0, "only leads whose latest score total is at least this")
	leadsListCmd.Flags().Int("limit", 50, "max number of leads to display")

	leadsCmd.AddCommand(leadsListCmd)
	rootCmd.AddCommand(leadsCmd)
}
