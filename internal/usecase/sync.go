package usecase

import (
	"context"
	"errors"
	"fmt"

	"contacts-sync-service/internal/domain"

	"github.com/sirupsen/logrus"
)

// SyncUseCase реализует сверку контактов справочника с локальным хранилищем устройства.
//
// Прогон не хранит состояния между вызовами и может выполняться параллельно для разных
// учетных записей. Для одной учетной записи одновременный запуск должен исключать вызывающий.
type SyncUseCase struct {
	directory  domain.RemoteDirectory
	store      domain.LocalContactStore
	groupTitle string
	logger     *logrus.Logger
}

// NewSyncUseCase создает новый экземпляр SyncUseCase.
func NewSyncUseCase(directory domain.RemoteDirectory, store domain.LocalContactStore, groupTitle string, logger *logrus.Logger) domain.SyncUseCase {
	return &SyncUseCase{
		directory:  directory,
		store:      store,
		groupTitle: groupTitle,
		logger:     logger,
	}
}

// Run выполняет один прогон синхронизации для учетной записи.
// Ошибка возвращается только для фатальных случаев, тогда outcome.Status == SyncFailed.
func (uc *SyncUseCase) Run(ctx context.Context, account domain.Account) (*domain.SyncOutcome, error) {
	logEntry := uc.logger.WithFields(logrus.Fields{
		"account":     account.String(),
		"group_title": uc.groupTitle,
	})
	outcome := &domain.SyncOutcome{Account: account}

	// 1. Находим или создаем группу
	groupID, err := uc.findOrCreateGroup(ctx, account, logEntry)
	if err != nil {
		if ctx.Err() != nil {
			return uc.cancel(outcome, logEntry, "during group resolution")
		}
		return uc.fail(outcome, logEntry, err)
	}
	logEntry = logEntry.WithField("group_id", groupID)

	// 2. Проверяем отмену
	if ctx.Err() != nil {
		return uc.cancel(outcome, logEntry, "after group resolution")
	}

	// 3. Получаем контакты коллег
	contacts, err := uc.directory.FetchByOffice(ctx, account)
	if err != nil {
		if ctx.Err() != nil {
			return uc.cancel(outcome, logEntry, "during fetch")
		}
		return uc.fail(outcome, logEntry, classifyFetchError(err))
	}
	logEntry.WithField("fetched", len(contacts)).Debug("Contacts fetched")

	// 4. Проверяем отмену
	if ctx.Err() != nil {
		return uc.cancel(outcome, logEntry, "after fetch")
	}

	// 5. Полностью вычисляем известные ключи до первой вставки
	known, err := uc.store.KnownIdentifiers(ctx, account)
	if err != nil {
		if ctx.Err() != nil {
			return uc.cancel(outcome, logEntry, "during known identifiers lookup")
		}
		return uc.fail(outcome, logEntry, ensureKind(err, domain.ErrStore))
	}
	logEntry.WithField("known", len(known)).Debug("Known contacts found")

	// 6. Добавляем недостающие контакты
	for _, contact := range contacts {
		if ctx.Err() != nil {
			return uc.cancel(outcome, logEntry, "during insertion")
		}

		if contact == nil || contact.UserName == "" {
			outcome.Failed++
			logEntry.WithError(domain.ErrInvalidContact).Warn("Skipping contact without user name")
			continue
		}

		contactEntry := logEntry.WithField("username", contact.UserName)
		if known.Contains(contact.UserName) {
			outcome.Skipped++
			contactEntry.Debug("Contact already exists")
			continue
		}

		// Ключ помечается до вставки: дубликат в том же ответе не вызовет второй попытки
		known.Add(contact.UserName)

		// 7. Ошибка одного контакта не прерывает прогон
		if err := uc.insertContact(ctx, account, groupID, contact); err != nil {
			outcome.Failed++
			contactEntry.WithError(err).Error("Failed to add contact")
			continue
		}
		outcome.Inserted++
		contactEntry.Debug("Contact added")
	}

	// 8. Итог
	outcome.Status = domain.SyncCompleted
	logEntry.WithFields(logrus.Fields{
		"inserted": outcome.Inserted,
		"skipped":  outcome.Skipped,
		"failed":   outcome.Failed,
	}).Info("Sync completed")

	return outcome, nil
}

// findOrCreateGroup выполняет ровно один поиск и не более одного создания группы.
func (uc *SyncUseCase) findOrCreateGroup(ctx context.Context, account domain.Account, logEntry *logrus.Entry) (string, error) {
	id, found, err := uc.store.FindGroup(ctx, uc.groupTitle, account)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGroupResolution, err)
	}
	if found {
		logEntry.WithField("group_id", id).Debug("Group found")
		return id, nil
	}

	logEntry.Debug("Group not found, creating")
	id, err = uc.store.CreateGroup(ctx, uc.groupTitle, account)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGroupResolution, err)
	}
	logEntry.WithField("group_id", id).Info("Group created")

	return id, nil
}

func (uc *SyncUseCase) insertContact(ctx context.Context, account domain.Account, groupID string, contact *domain.Contact) error {
	batch := BuildContactBatch(account, groupID, contact)
	if err := uc.store.InsertContactBatch(ctx, batch); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrContactInsert, contact.UserName, err)
	}
	return nil
}

func (uc *SyncUseCase) fail(outcome *domain.SyncOutcome, logEntry *logrus.Entry, err error) (*domain.SyncOutcome, error) {
	outcome.Status = domain.SyncFailed
	outcome.Err = err

	switch {
	case errors.Is(err, domain.ErrAuthorization):
		logEntry.WithError(err).Error("Directory rejected credentials")
	case errors.Is(err, domain.ErrConnectivity):
		logEntry.WithError(err).Warn("Directory is not accessible")
	default:
		logEntry.WithError(err).Error("Sync could not be completed")
	}

	return outcome, err
}

func (uc *SyncUseCase) cancel(outcome *domain.SyncOutcome, logEntry *logrus.Entry, stage string) (*domain.SyncOutcome, error) {
	outcome.Status = domain.SyncCanceled
	logEntry.WithFields(logrus.Fields{
		"stage":    stage,
		"inserted": outcome.Inserted,
	}).Info("Sync canceled")

	return outcome, nil
}

// classifyFetchError сводит ошибки справочника к двум классам; неизвестные считаются сетевыми.
func classifyFetchError(err error) error {
	if errors.Is(err, domain.ErrAuthorization) || errors.Is(err, domain.ErrConnectivity) {
		return err
	}
	return ensureKind(err, domain.ErrConnectivity)
}

func ensureKind(err, kind error) error {
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
