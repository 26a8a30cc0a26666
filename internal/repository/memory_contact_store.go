package repository

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"contacts-sync-service/internal/domain"
)

type groupKey struct {
	title   string
	account domain.Account
}

// MemoryContactStore - хранилище контактов устройства в памяти.
// Используется в тестах и для пробного прогона синхронизации без записи на диск.
type MemoryContactStore struct {
	mu       sync.Mutex
	groups   map[groupKey]string
	contacts map[domain.Account][]*StoredContact
	nextID   int

	// InsertHook вызывается перед применением каждого пакета; ошибка отменяет пакет.
	InsertHook func(batch *domain.ContactBatch) error
}

// NewMemoryContactStore создает пустое хранилище.
func NewMemoryContactStore() *MemoryContactStore {
	return &MemoryContactStore{
		groups:   make(map[groupKey]string),
		contacts: make(map[domain.Account][]*StoredContact),
	}
}

func (s *MemoryContactStore) FindGroup(_ context.Context, title string, account domain.Account) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.groups[groupKey{title: title, account: account}]
	return id, ok, nil
}

func (s *MemoryContactStore) CreateGroup(_ context.Context, title string, account domain.Account) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := groupKey{title: title, account: account}
	if _, exists := s.groups[key]; exists {
		return "", fmt.Errorf("%w: group %q already exists for %s", domain.ErrStore, title, account)
	}

	id := s.newID("group")
	s.groups[key] = id
	return id, nil
}

func (s *MemoryContactStore) KnownIdentifiers(_ context.Context, account domain.Account) (domain.IdentifierSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := make(domain.IdentifierSet, len(s.contacts[account]))
	for _, c := range s.contacts[account] {
		known.Add(c.SyncKey)
	}
	return known, nil
}

// InsertContactBatch проверяет весь пакет до изменения состояния, поэтому пакет применяется целиком или никак.
func (s *MemoryContactStore) InsertContactBatch(_ context.Context, batch *domain.ContactBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.InsertHook != nil {
		if err := s.InsertHook(batch); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStore, err)
		}
	}

	rows := make([]domain.DataRow, 0, len(batch.Rows))
	for _, row := range batch.Rows {
		if _, ok := dataColumns[row.Kind]; !ok {
			return fmt.Errorf("%w: unknown data kind %q for %s", domain.ErrStore, row.Kind, batch.SyncKey)
		}
		values := make(map[string]string, len(row.Values))
		for k, v := range row.Values {
			values[k] = v
		}
		rows = append(rows, domain.DataRow{Kind: row.Kind, Values: values})
	}

	s.contacts[batch.Account] = append(s.contacts[batch.Account], &StoredContact{
		ID:      s.newID("raw"),
		SyncKey: batch.SyncKey,
		Rows:    rows,
	})
	return nil
}

// ListContacts возвращает контакты учетной записи в порядке вставки.
func (s *MemoryContactStore) ListContacts(_ context.Context, account domain.Account) ([]*StoredContact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*StoredContact, len(s.contacts[account]))
	copy(out, s.contacts[account])
	return out, nil
}

// Seed добавляет контакт в обход синхронизации.
func (s *MemoryContactStore) Seed(account domain.Account, syncKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.contacts[account] = append(s.contacts[account], &StoredContact{ID: s.newID("raw"), SyncKey: syncKey})
}

// GroupCount возвращает количество созданных групп.
func (s *MemoryContactStore) GroupCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.groups)
}

func (s *MemoryContactStore) newID(prefix string) string {
	s.nextID++
	return prefix + "-" + strconv.Itoa(s.nextID)
}
