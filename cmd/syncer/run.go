package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contacts-sync-service/internal/domain"
	"contacts-sync-service/internal/repository"
	"contacts-sync-service/internal/syncer"
	"contacts-sync-service/internal/usecase"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [account]",
	Short: "Run one sync pass",
	Long: `Run one sync pass for every configured account, or for the named one.

Example:
  syncer run                 # Sync all accounts
  syncer run alice           # Sync one account
  syncer run --dry-run       # Show what would be inserted
  syncer run --retry         # Retry transient failures with backoff`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

var (
	runDryRun bool
	runRetry  bool
)

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Do not write to the local contact store")
	runCmd.Flags().BoolVar(&runRetry, "retry", false, "Retry transient failures with exponential backoff")
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	targets := a.accounts.List()
	if len(args) == 1 {
		account, err := a.accounts.Get(args[0])
		if err != nil {
			return fmt.Errorf("account %q: %w", args[0], err)
		}
		targets = []domain.Account{account}
	}
	if len(targets) == 0 {
		return fmt.Errorf("no accounts configured, add one with `syncer account add`")
	}

	localStore, err := a.openStore()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed := 0
	for _, account := range targets {
		var store domain.LocalContactStore = localStore
		if runDryRun {
			store, err = dryRunStore(ctx, localStore, account)
			if err != nil {
				return err
			}
		}

		driver := syncer.NewDriver(usecase.NewSyncUseCase(a.directory, store, a.cfg.GroupTitle, a.logger), a.logger)

		start := time.Now()
		var result syncer.Result
		if runRetry {
			scheduler := syncer.NewScheduler(driver, syncer.SchedulerConfig{
				Schedule:   a.cfg.Schedule,
				RetryBase:  a.cfg.RetryBase,
				MaxRetries: a.cfg.MaxRetries,
			}, a.logger)
			result = scheduler.RunOnce(ctx, account)
		} else {
			result = driver.Run(ctx, account)
		}

		printOutcome(result.Outcome, time.Since(start), runDryRun)
		if result.Outcome.Status != domain.SyncCompleted {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d accounts did not complete", failed, len(targets))
	}
	return nil
}

// dryRunStore копирует известные идентификаторы в память, чтобы прогон ничего не писал на диск.
func dryRunStore(ctx context.Context, local *repository.LocalContactStore, account domain.Account) (*repository.MemoryContactStore, error) {
	contacts, err := local.ListContacts(ctx, account)
	if err != nil {
		return nil, err
	}

	store := repository.NewMemoryContactStore()
	for _, c := range contacts {
		store.Seed(account, c.SyncKey)
	}
	return store, nil
}

func printOutcome(outcome *domain.SyncOutcome, took time.Duration, dryRun bool) {
	verb := "inserted"
	if dryRun {
		verb = "would insert"
	}

	fmt.Printf("%s: %s (%s %d, skipped %d, failed %d, took %s)\n",
		outcome.Account, outcome.Status, verb, outcome.Inserted, outcome.Skipped, outcome.Failed,
		took.Round(time.Millisecond))
	if outcome.Err != nil {
		fmt.Printf("  error: %v\n", outcome.Err)
	}
}
