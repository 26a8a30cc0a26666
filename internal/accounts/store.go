// Package accounts хранит учетные записи устройства и их пароли в YAML-файле.
package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"contacts-sync-service/internal/domain"

	"gopkg.in/yaml.v3"
)

type entry struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Password string `yaml:"password"`
}

type document struct {
	Accounts []entry `yaml:"accounts"`
}

// Store - файл учетных записей. Реализует domain.CredentialProvider.
type Store struct {
	mu          sync.RWMutex
	path        string
	accountType string
	entries     []entry
}

// Open читает файл учетных записей; отсутствующий файл означает пустой список.
func Open(path, accountType string) (*Store, error) {
	s := &Store{path: path, accountType: accountType}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse accounts file: %w", err)
	}
	for i := range doc.Accounts {
		if doc.Accounts[i].Type == "" {
			doc.Accounts[i].Type = accountType
		}
	}
	s.entries = doc.Accounts

	return s, nil
}

// List возвращает учетные записи в порядке добавления.
func (s *Store) List() []domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Account, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, domain.Account{Name: e.Name, Type: e.Type})
	}
	return out
}

// Get возвращает учетную запись по имени.
func (s *Store) Get(name string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.Name == name {
			return domain.Account{Name: e.Name, Type: e.Type}, nil
		}
	}
	return domain.Account{}, domain.ErrAccountNotFound
}

// Password возвращает пароль учетной записи.
func (s *Store) Password(account domain.Account) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.Name == account.Name && e.Type == account.Type {
			return e.Password, nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrAccountNotFound, account)
}

// Add добавляет учетную запись. Несколько учетных записей различаются по имени пользователя.
func (s *Store) Add(name, password string) (domain.Account, error) {
	if name == "" {
		return domain.Account{}, domain.ErrInvalidUserName
	}
	if password == "" {
		return domain.Account{}, domain.ErrEmptyPassword
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.Name == name {
			return domain.Account{}, domain.ErrAccountAlreadyExists
		}
	}

	entries := append(append([]entry(nil), s.entries...), entry{Name: name, Type: s.accountType, Password: password})
	if err := s.save(entries); err != nil {
		return domain.Account{}, err
	}
	s.entries = entries

	return domain.Account{Name: name, Type: s.accountType}, nil
}

// Remove удаляет учетную запись. Контакты на устройстве не трогаются.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Name != name {
			entries = append(entries, e)
		}
	}
	if len(entries) == len(s.entries) {
		return domain.ErrAccountNotFound
	}

	if err := s.save(entries); err != nil {
		return err
	}
	s.entries = entries
	return nil
}

// save записывает файл через временный файл и rename, права 0600: внутри пароли.
func (s *Store) save(entries []entry) error {
	data, err := yaml.Marshal(document{Accounts: entries})
	if err != nil {
		return fmt.Errorf("failed to encode accounts: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create accounts directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write accounts file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace accounts file: %w", err)
	}

	return nil
}
