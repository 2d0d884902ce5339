// Command worker runs the sync, stats, settlement and maintenance jobs.
//
// Usage:
//
//	worker history backward --days 7 --maxDays 365
//	worker history forward --days 3 --loop --interval 600000
//	worker stats --status finished --limit 50
//	worker settle --limit 100
//	worker maintenance --loop
//	worker reference --maxPages 20
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &commonOptions{}
	root := &cobra.Command{
		Use:           "worker",
		Short:         "Football insights batch jobs",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().BoolVar(&opts.Loop, "loop", false, "Repeat the job until interrupted")
	root.PersistentFlags().IntVar(&opts.IntervalMS, "interval", 60000, "Delay between loop iterations in milliseconds")
	root.PersistentFlags().IntVar(&opts.MaxRequests, "maxRequests", 0, "Provider request budget per run (0 = unlimited)")

	root.AddCommand(historyCmd(opts))
	root.AddCommand(statsCmd(opts))
	root.AddCommand(settleCmd(opts))
	root.AddCommand(maintenanceCmd(opts))
	root.AddCommand(referenceCmd(opts))
	return root
}
