package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/relayops/modbalance/config"
	"github.com/relayops/modbalance/infra/store"
	"github.com/relayops/modbalance/pkg/export"
)

var reportRunID string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Re-export the tables of a stored run",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportRunID, "run", "", "run ID to export (latest when empty)")
	reportCmd.Flags().StringVar(&outputDir, "out", "", "override the output directory")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Store.Path == "" {
		return fmt.Errorf("store.path is not configured")
	}
	if outputDir != "" {
		cfg.Input.OutputDir = outputDir
	}

	st, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	schedule, weeks, err := st.LoadRun(reportRunID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Input.OutputDir, 0o755); err != nil {
		return err
	}
	sf, err := os.Create(filepath.Join(cfg.Input.OutputDir, "suggested_schedule.csv"))
	if err != nil {
		return err
	}
	defer func() { _ = sf.Close() }()
	if err := export.WriteScheduleCSV(sf, schedule); err != nil {
		return err
	}
	wf, err := os.Create(filepath.Join(cfg.Input.OutputDir, "week_comparison.csv"))
	if err != nil {
		return err
	}
	defer func() { _ = wf.Close() }()
	return export.WriteWeekComparisonCSV(wf, weeks)
}
