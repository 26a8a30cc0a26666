// Package syncer запускает синхронизацию контактов: одиночные прогоны и периодическое расписание.
package syncer

import (
	"context"
	"errors"

	"contacts-sync-service/internal/domain"

	"github.com/sirupsen/logrus"
)

// Result - результат прогона в терминах планировщика.
type Result struct {
	Outcome *domain.SyncOutcome

	// Retry: прогон не завершился и должен быть повторен.
	Retry bool

	// RetrySoon: ошибка временная, повтор возможен до следующего планового запуска.
	// Для отказа в доступе всегда false, чтобы не долбить справочник неверным паролем.
	RetrySoon bool
}

// Driver связывает сверку контактов с планировщиком.
type Driver struct {
	sync   domain.SyncUseCase
	logger *logrus.Logger
}

// NewDriver создает новый экземпляр Driver.
func NewDriver(sync domain.SyncUseCase, logger *logrus.Logger) *Driver {
	return &Driver{
		sync:   sync,
		logger: logger,
	}
}

// Run выполняет один прогон для учетной записи.
func (d *Driver) Run(ctx context.Context, account domain.Account) Result {
	outcome, err := d.sync.Run(ctx, account)
	if outcome == nil {
		outcome = &domain.SyncOutcome{Account: account, Status: domain.SyncFailed, Err: err}
	}
	if err != nil && outcome.Status != domain.SyncFailed {
		outcome.Status = domain.SyncFailed
		outcome.Err = err
	}

	result := Result{Outcome: outcome}
	if outcome.Status == domain.SyncFailed {
		result.Retry = true
		result.RetrySoon = !errors.Is(outcome.Err, domain.ErrAuthorization)
	}

	d.logger.WithFields(logrus.Fields{
		"account":    account.String(),
		"status":     outcome.Status,
		"retry":      result.Retry,
		"retry_soon": result.RetrySoon,
	}).Debug("Sync run finished")

	return result
}
