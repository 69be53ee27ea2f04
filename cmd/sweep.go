package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gridwise/microdispatch/app"
	"github.com/gridwise/microdispatch/config"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Rank candidate asset sizes by optimized dispatch cost",
	RunE:  runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
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

	outcomes, err := svc.Sweep(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tBATTERY_KWH\tDIESEL_KW\tSOLAR_SCALE\tTOTAL_COST\tSAVINGS\tSTATUS")
	for i, o := range outcomes {
		status := "ok"
		cost, savings := "-", "-"
		if o.Err != nil {
			status = o.ErrText
		} else {
			cost = fmt.Sprintf("%.2f", o.Result.Summary.TotalCost)
			savings = fmt.Sprintf("%.2f", o.Result.Summary.Savings)
			if o.Result.NotProvenOptimal {
				status = fmt.Sprintf("gap %.4g", o.Result.Gap)
			}
		}
		fmt.Fprintf(tw, "%d\t%.0f\t%.0f\t%.2f\t%s\t%s\t%s\n",
			i+1, o.Candidate.BatteryCapacityKWh, o.Candidate.DieselCapacityKW,
			o.Candidate.SolarScale, cost, savings, status)
	}
	return tw.Flush()
}
