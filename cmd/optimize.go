package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gridwise/microdispatch/app"
	"github.com/gridwise/microdispatch/config"
	"github.com/gridwise/microdispatch/infra/logger"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Optimize one dispatch horizon and export the schedule",
	RunE:  runOptimize,
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()
	svc.Start(ctx)

	res, err := svc.Optimize(ctx)
	if err != nil {
		return err
	}

	logg := logger.New("optimize")
	s := res.Summary
	logg.Infof("run %s: total cost %.2f (fuel %.2f, carbon %.2f, curtailment %.2f), savings %.2f",
		res.RunID, s.TotalCost, s.FuelCost, s.CarbonCost, s.CurtailmentCost, s.Savings)
	if res.NotProvenOptimal {
		logg.Warnf("run %s: time limit reached, gap %.4g", res.RunID, res.Gap)
	}
	return nil
}
