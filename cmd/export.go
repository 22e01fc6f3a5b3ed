package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/pkg/notion"
)

var (
	exportStatus string
	exportLimit  int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export leads to a Notion database",
	Long:  "Pushes stored leads into the configured Notion database, creating or updating one page per lead by name.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("export"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		leads, err := st.ListLeads(ctx, model.ListLeadsFilter{
			Status: model.LeadStatus(exportStatus),
			Limit:  exportLimit,
		})
		if err != nil {
			return eris.Wrap(err, "export: list leads")
		}
		if len(leads) == 0 {
			fmt.Fprintln(os.Stderr, "No leads to export.")
			return nil
		}

		client := notion.NewClient(cfg.Notion.Token)

		var created, updated, failed int
		for _, l := range leads {
			page := notion.LeadPage{
				Name:     l.Name,
				Category: l.Category,
				City:     l.City,
				State:    l.State,
				Phone:    l.Phone,
				Email:    l.Email,
				Website:  l.Website,
				Status:   string(l.Status),
			}

			score, err := st.GetScore(ctx, l.ID)
			if err != nil {
				return eris.Wrap(err, "export: load score")
			}
			if score != nil {
				page.Total = score.Total
				page.Need = score.Need
				page.Value = score.Value
				page.Reachability = score.Reachability
				page.Reasons = score.Reasons
			}

			wasCreated, err := notion.UpsertLeadPage(ctx, client, cfg.Notion.DatabaseID, page)
			if err != nil {
				failed++
				zap.L().Warn("lead export failed",
					zap.String("lead", l.Name),
					zap.Error(err))
				continue
			}
			if wasCreated {
				created++
			} else {
				updated++
			}
		}

		zap.L().Info("export complete",
			zap.Int("created", created),
			zap.Int("updated", updated),
			zap.Int("failed", failed),
		)
		fmt.Printf("Exported %d leads (%d created, %d updated, %d failed)\n",
			created+updated, created, updated, failed)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportStatus, "status", "qualified", "only export leads with this status (empty for all)")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 500, "max number of leads to export")
	leadsCmd.AddCommand(exportCmd)
}
