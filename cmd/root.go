package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "leadscout",
	Short: "Local business lead discovery pipeline",
	Long:  "Searches business directories for leads, audits their websites, scores them on need, value, and reachability, and persists qualified leads with full dedup.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// initStore opens the configured store and runs migrations. Callers own the
// returned store and must Close it.
func initStore(ctx context.Context) (store.Store, error) {
	storeCfg := cfg.Store
	if storeCfg.Driver == "sqlite" && storeCfg.DatabaseURL == "" {
		storeCfg.DatabaseURL = "leadscout.db"
	}
	st, err := store.Open(ctx, storeCfg)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
