package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"contacts-sync-service/internal/domain"

	"github.com/robfig/cron/v3"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
)

// Runner выполняет один прогон синхронизации.
type Runner interface {
	Run(ctx context.Context, account domain.Account) Result
}

// SchedulerConfig - настройки планировщика.
type SchedulerConfig struct {
	Schedule   string
	RetryBase  time.Duration
	MaxRetries uint64
}

// Scheduler запускает синхронизацию каждой учетной записи по расписанию cron.
// Для одной учетной записи одновременно выполняется не больше одного прогона;
// разные учетные записи синхронизируются независимо.
type Scheduler struct {
	runner Runner
	config SchedulerConfig
	logger *logrus.Logger
	cron   *cron.Cron

	mu      sync.Mutex
	entries map[domain.Account]cron.EntryID
	wg      sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler создает планировщик.
func NewScheduler(runner Runner, config SchedulerConfig, logger *logrus.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(logger)
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner: runner,
		config: config,
		logger: logger,
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		entries: make(map[domain.Account]cron.EntryID),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add ставит учетную запись на периодическую синхронизацию.
func (s *Scheduler) Add(account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[account]; exists {
		return fmt.Errorf("account %s is already scheduled", account)
	}

	id, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.RunOnce(s.ctx, account)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", account, err)
	}
	s.entries[account] = id

	s.logger.WithFields(logrus.Fields{
		"account":  account.String(),
		"schedule": s.config.Schedule,
	}).Info("Account scheduled for sync")

	return nil
}

// Remove снимает учетную запись с расписания. Текущий прогон не прерывается.
func (s *Scheduler) Remove(account domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.entries[account]; exists {
		s.cron.Remove(id)
		delete(s.entries, account)
	}
}

// Trigger запускает внеплановый прогон через ту же цепочку, что и расписание,
// поэтому он не пересекается с плановым. Возвращает false, если учетной записи нет
// в расписании или планировщик уже остановлен.
func (s *Scheduler) Trigger(account domain.Account) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return false
	}
	id, exists := s.entries[account]
	if !exists {
		return false
	}

	job := s.cron.Entry(id).WrappedJob
	if job == nil {
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		job.Run()
	}()
	return true
}

// RunOnce выполняет прогон и повторяет его с экспоненциальной задержкой,
// пока ошибка временная и не исчерпаны попытки.
func (s *Scheduler) RunOnce(ctx context.Context, account domain.Account) Result {
	logEntry := s.logger.WithField("account", account.String())

	var result Result
	attempt := 0
	backoff := retry.WithMaxRetries(s.config.MaxRetries, retry.NewExponential(s.retryBase()))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		result = s.runner.Run(ctx, account)
		if result.RetrySoon {
			logEntry.WithError(result.Outcome.Err).WithField("attempt", attempt).Warn("Sync failed, will retry")
			return retry.RetryableError(result.Outcome.Err)
		}
		return nil
	})

	if err != nil && result.Outcome == nil {
		result = Result{
			Outcome: &domain.SyncOutcome{Account: account, Status: domain.SyncCanceled},
		}
	}

	logEntry.WithFields(logrus.Fields{
		"status":   result.Outcome.Status,
		"inserted": result.Outcome.Inserted,
		"skipped":  result.Outcome.Skipped,
		"attempts": attempt,
	}).Info("Scheduled sync finished")

	return result
}

// Start запускает расписание; не блокирует.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop отменяет текущие прогоны и ждет их завершения или истечения ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	// После отмены под мьютексом Trigger больше не добавляет прогонов в wg
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()

	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) retryBase() time.Duration {
	if s.config.RetryBase <= 0 {
		return time.Second
	}
	return s.config.RetryBase
}
