package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contacts-sync-service/internal/syncer"
	"contacts-sync-service/internal/usecase"

	"github.com/spf13/cobra"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Sync all accounts on a schedule",
	Long: `Run periodic sync for every configured account until interrupted.

The schedule is a cron expression, e.g. "@every 1h" or "0 */2 * * *".`,
	RunE: runDaemon,
}

var (
	daemonSchedule  string
	daemonRunOnBoot bool
)

func init() {
	daemonCmd.Flags().StringVar(&daemonSchedule, "schedule", "", "Cron schedule (default: $SYNC_SCHEDULE)")
	daemonCmd.Flags().BoolVar(&daemonRunOnBoot, "now", true, "Run a sync pass for every account at startup")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if daemonSchedule != "" {
		a.cfg.Schedule = daemonSchedule
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}

	targets := a.accounts.List()
	if len(targets) == 0 {
		return fmt.Errorf("no accounts configured, add one with `syncer account add`")
	}

	driver := syncer.NewDriver(usecase.NewSyncUseCase(a.directory, store, a.cfg.GroupTitle, a.logger), a.logger)
	scheduler := syncer.NewScheduler(driver, syncer.SchedulerConfig{
		Schedule:   a.cfg.Schedule,
		RetryBase:  a.cfg.RetryBase,
		MaxRetries: a.cfg.MaxRetries,
	}, a.logger)

	for _, account := range targets {
		if err := scheduler.Add(account); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start()
	a.logger.WithField("accounts", len(targets)).Info("Sync daemon started")

	if daemonRunOnBoot {
		for _, account := range targets {
			scheduler.Trigger(account)
		}
	}

	<-ctx.Done()
	a.logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := scheduler.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}

	a.logger.Info("Sync daemon exited")
	return nil
}
