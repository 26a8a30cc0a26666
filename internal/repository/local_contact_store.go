package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"contacts-sync-service/internal/domain"

	"github.com/oklog/ulid/v2"
)

// Колонки data1/data2 для каждого вида части записи.
var dataColumns = map[string][2]string{
	domain.KindStructuredName:  {domain.FieldGivenName, domain.FieldFamilyName},
	domain.KindEmail:           {domain.FieldAddress, ""},
	domain.KindPhone:           {domain.FieldNumber, ""},
	domain.KindOrganization:    {domain.FieldDepartment, ""},
	domain.KindGroupMembership: {domain.FieldGroupID, ""},
}

// StoredContact - контакт, сохраненный на устройстве, со всеми частями записи.
type StoredContact struct {
	ID      string
	SyncKey string
	Rows    []domain.DataRow
}

// Value возвращает значение поля части записи заданного вида.
func (c *StoredContact) Value(kind, field string) string {
	for _, row := range c.Rows {
		if row.Kind == kind {
			return row.Values[field]
		}
	}
	return ""
}

// LocalContactStore реализует хранилище контактов устройства в SQLite.
type LocalContactStore struct {
	db *sql.DB
}

// NewLocalContactStore создает новый экземпляр LocalContactStore.
func NewLocalContactStore(db *sql.DB) *LocalContactStore {
	return &LocalContactStore{db: db}
}

// FindGroup ищет группу по названию и учетной записи.
func (s *LocalContactStore) FindGroup(ctx context.Context, title string, account domain.Account) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM groups WHERE title = ? AND account_name = ? AND account_type = ?`,
		title, account.Name, account.Type).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: failed to find group: %v", domain.ErrStore, err)
	}

	return id, true, nil
}

// CreateGroup создает видимую группу и возвращает ее идентификатор.
func (s *LocalContactStore) CreateGroup(ctx context.Context, title string, account domain.Account) (string, error) {
	id := ulid.Make().String()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO groups (id, title, account_name, account_type, visible) VALUES (?, ?, ?, ?, 1)`,
		id, title, account.Name, account.Type)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create group: %v", domain.ErrStore, err)
	}

	return id, nil
}

// KnownIdentifiers возвращает ключи синхронизации всех контактов учетной записи.
func (s *LocalContactStore) KnownIdentifiers(ctx context.Context, account domain.Account) (domain.IdentifierSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sync_key FROM raw_contacts WHERE account_name = ? AND account_type = ?`,
		account.Name, account.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query sync keys: %v", domain.ErrStore, err)
	}
	defer rows.Close()

	known := make(domain.IdentifierSet)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%w: failed to scan sync key: %v", domain.ErrStore, err)
		}
		known.Add(key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate sync keys: %v", domain.ErrStore, err)
	}

	return known, nil
}

// InsertContactBatch атомарно записывает базовую запись контакта и все ее части.
func (s *LocalContactStore) InsertContactBatch(ctx context.Context, batch *domain.ContactBatch) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", domain.ErrStore, err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// 1. Базовая запись
	rawID := ulid.Make().String()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO raw_contacts (id, account_name, account_type, sync_key, created_at) VALUES (?, ?, ?, ?, ?)`,
		rawID, batch.Account.Name, batch.Account.Type, batch.SyncKey, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("%w: failed to insert raw contact %s: %v", domain.ErrStore, batch.SyncKey, err)
	}

	// 2. Части записи со ссылкой на базовую
	for _, row := range batch.Rows {
		cols := dataColumns[row.Kind]
		_, err = tx.ExecContext(ctx,
			`INSERT INTO contact_data (raw_contact_id, kind, data1, data2) VALUES (?, ?, ?, ?)`,
			rawID, row.Kind, row.Values[cols[0]], row.Values[cols[1]])
		if err != nil {
			return fmt.Errorf("%w: failed to insert %s of %s: %v", domain.ErrStore, row.Kind, batch.SyncKey, err)
		}
	}

	// 3. Коммитим транзакцию
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit contact %s: %v", domain.ErrStore, batch.SyncKey, err)
	}

	return nil
}

// ListContacts возвращает все контакты учетной записи вместе с частями записи.
func (s *LocalContactStore) ListContacts(ctx context.Context, account domain.Account) ([]*StoredContact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.sync_key, d.kind, d.data1, d.data2
		FROM raw_contacts r
		LEFT JOIN contact_data d ON d.raw_contact_id = r.id
		WHERE r.account_name = ? AND r.account_type = ?
		ORDER BY r.sync_key, r.id, d.id`,
		account.Name, account.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list contacts: %v", domain.ErrStore, err)
	}
	defer rows.Close()

	var contacts []*StoredContact
	var current *StoredContact
	for rows.Next() {
		var id, syncKey string
		var kind, data1, data2 sql.NullString
		if err := rows.Scan(&id, &syncKey, &kind, &data1, &data2); err != nil {
			return nil, fmt.Errorf("%w: failed to scan contact: %v", domain.ErrStore, err)
		}

		if current == nil || current.ID != id {
			current = &StoredContact{ID: id, SyncKey: syncKey}
			contacts = append(contacts, current)
		}
		if !kind.Valid {
			continue
		}

		cols := dataColumns[kind.String]
		values := map[string]string{}
		if cols[0] != "" {
			values[cols[0]] = data1.String
		}
		if cols[1] != "" {
			values[cols[1]] = data2.String
		}
		current.Rows = append(current.Rows, domain.DataRow{Kind: kind.String, Values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate contacts: %v", domain.ErrStore, err)
	}

	return contacts, nil
}
