package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/football-insights/internal/domain/prediction"
	"github.com/riskibarqy/football-insights/internal/platform/scheduler"
	"github.com/riskibarqy/football-insights/internal/usecase"
	"github.com/spf13/cobra"
)

func historyCmd(common *commonOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Walk the provider match history in date blocks",
	}
	cmd.AddCommand(historyDirectionCmd(common, usecase.DirectionBackward))
	cmd.AddCommand(historyDirectionCmd(common, usecase.DirectionForward))
	return cmd
}

func historyDirectionCmd(common *commonOptions, direction string) *cobra.Command {
	opts := historyOptions{}
	short := "Sync older matches, block by block, back to --maxDays"
	if direction == usecase.DirectionForward {
		short = "Sync from today (or --startDate) forward up to --maxDays"
	}

	cmd := &cobra.Command{
		Use:   direction,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := opts.toInput()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			env, err := newWorkerEnv(ctx, true)
			if err != nil {
				return err
			}
			defer env.close()

			engine := env.container.NewHistorySyncService(env.container.NewSportsClient(), common.MaxRequests)
			driver := env.container.NewHistoryDriver(engine)
			run := driver.RunBackward
			if direction == usecase.DirectionForward {
				run = driver.RunForward
			}

			return runJob(ctx, cmd.OutOrStdout(), env, common, "history_"+direction, func(ctx context.Context) (any, error) {
				engine.SetRequestBudget(common.MaxRequests)
				return run(ctx, input)
			})
		},
	}

	cmd.Flags().IntVar(&opts.Days, "days", 7, "Days per date block")
	cmd.Flags().IntVar(&opts.PageSize, "pageSize", 30, "Matches per provider page")
	cmd.Flags().IntVar(&opts.MaxDays, "maxDays", 365, "How far from today the walk may go")
	cmd.Flags().StringVar(&opts.StartDate, "startDate", "", "First block anchor (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Competitions, "competitions", "", "Comma separated competition ids")
	cmd.Flags().StringVar(&opts.Teams, "teams", "", "Comma separated team ids")
	cmd.Flags().BoolVar(&opts.NoStats, "no-stats", false, "Skip per-match statistics")
	return cmd
}

func statsCmd(common *commonOptions) *cobra.Command {
	opts := statsOptions{}
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Import statistics for stored matches that lack them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := opts.toInput()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			env, err := newWorkerEnv(ctx, true)
			if err != nil {
				return err
			}
			defer env.close()

			engine := env.container.NewHistorySyncService(env.container.NewSportsClient(), common.MaxRequests)
			return runJob(ctx, cmd.OutOrStdout(), env, common, "stats_import", func(ctx context.Context) (any, error) {
				engine.SetRequestBudget(common.MaxRequests)
				return engine.ImportStats(ctx, input)
			})
		},
	}

	cmd.Flags().Int64Var(&opts.MatchID, "matchId", 0, "Import one match by provider id")
	cmd.Flags().StringVar(&opts.Status, "status", usecase.StatsStatusFinished, "finished|live|any")
	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "Maximum matches per run")
	return cmd
}

func settleCmd(common *commonOptions) *cobra.Command {
	opts := settleOptions{}
	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Settle prediction posts on finished matches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := opts.toInput()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			env, err := newWorkerEnv(ctx, false)
			if err != nil {
				return err
			}
			defer env.close()

			service := env.container.NewSettlementService()
			if postID := strings.TrimSpace(opts.PostID); postID != "" {
				return runJob(ctx, cmd.OutOrStdout(), env, common, "settle_post", func(ctx context.Context) (any, error) {
					return service.SettlePost(ctx, prediction.SystemActor, postID)
				})
			}
			return runJob(ctx, cmd.OutOrStdout(), env, common, "settle_finished", func(ctx context.Context) (any, error) {
				return service.SettleFinished(ctx, input)
			})
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 100, "Finished matches per run, newest first")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "Settlement workers (0 = SETTLEMENT_MAX_WORKERS)")
	cmd.Flags().Int64Var(&opts.MatchID, "matchId", 0, "Settle posts of one match only")
	cmd.Flags().StringVar(&opts.PostID, "postId", "", "Settle one post as the system actor")
	return cmd
}

func maintenanceCmd(common *commonOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "maintenance",
		Short: "Reconcile stats flags and purge expired tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			env, err := newWorkerEnv(ctx, false)
			if err != nil {
				return err
			}
			defer env.close()

			service := env.container.NewMaintenanceService()
			if !common.Loop {
				return runJob(ctx, cmd.OutOrStdout(), env, common, "maintenance", func(ctx context.Context) (any, error) {
					return service.RunOnce(ctx)
				})
			}
			return runMaintenanceTicks(ctx, env, service)
		},
	}
}

// runMaintenanceTicks runs one tick now and then every MAINTENANCE_INTERVAL
// until ctx is cancelled.
func runMaintenanceTicks(ctx context.Context, env *workerEnv, service *usecase.MaintenanceService) error {
	tick := func(ctx context.Context) error {
		_, err := service.RunOnce(ctx)
		return err
	}

	if err := scheduler.RunSafely(ctx, tick); err != nil {
		env.logger.ErrorContext(ctx, "maintenance tick failed", "error", err)
	}

	periodic := scheduler.NewPeriodic(env.logger)
	if err := periodic.Every(ctx, "maintenance", env.cfg.MaintenanceInterval, tick); err != nil {
		return fmt.Errorf("schedule maintenance: %w", err)
	}
	periodic.Start()
	env.logger.InfoContext(ctx, "maintenance scheduled", "interval", env.cfg.MaintenanceInterval.String())

	<-ctx.Done()
	service.Stop()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), env.cfg.MaintenanceInterval)
	defer cancel()
	periodic.Stop(stopCtx)
	return nil
}

func referenceCmd(common *commonOptions) *cobra.Command {
	var maxPages int
	cmd := &cobra.Command{
		Use:   "reference",
		Short: "Walk competitions, countries and teams",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			env, err := newWorkerEnv(ctx, true)
			if err != nil {
				return err
			}
			defer env.close()

			engine := env.container.NewHistorySyncService(env.container.NewSportsClient(), common.MaxRequests)
			return runJob(ctx, cmd.OutOrStdout(), env, common, "reference", func(ctx context.Context) (any, error) {
				engine.SetRequestBudget(common.MaxRequests)
				return engine.SyncReference(ctx, usecase.ReferenceSyncInput{MaxTeamPages: maxPages})
			})
		},
	}

	cmd.Flags().IntVar(&maxPages, "maxPages", 20, "Team pages per run")
	return cmd
}
