package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/relayops/modbalance/app"
	"github.com/relayops/modbalance/config"
	"github.com/relayops/modbalance/infra/logger"
)

var (
	instancesPath string
	weeksPath     string
	outputDir     string
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Run one optimization over the configured input tables",
	RunE:  runBalance,
}

func init() {
	balanceCmd.Flags().StringVar(&instancesPath, "instances", "", "override the instances input file")
	balanceCmd.Flags().StringVar(&weeksPath, "weeks", "", "override the weeks input file")
	balanceCmd.Flags().StringVar(&outputDir, "out", "", "override the output directory")
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if instancesPath != "" {
		cfg.Input.InstancesPath = instancesPath
	}
	if weeksPath != "" {
		cfg.Input.WeeksPath = weeksPath
	}
	if outputDir != "" {
		cfg.Input.OutputDir = outputDir
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}
