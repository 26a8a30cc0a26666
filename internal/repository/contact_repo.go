package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"contacts-sync-service/internal/domain"
)

const contactColumns = `user_name, first_name, last_name, mail, phone, location`

// ContactRepository реализует взаимодействие со справочником контактов в PostgreSQL.
type ContactRepository struct {
	db *sql.DB
}

// NewContactRepository создает новый экземпляр ContactRepository.
func NewContactRepository(db *sql.DB) domain.ContactRepository {
	return &ContactRepository{
		db: db,
	}
}

// GetByUserName возвращает контакт по имени пользователя.
func (r *ContactRepository) GetByUserName(ctx context.Context, userName string) (*domain.Contact, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE user_name = $1`, userName)

	contact, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return contact, nil
}

// GetByLocation возвращает все контакты офиса, упорядоченные по имени пользователя.
func (r *ContactRepository) GetByLocation(ctx context.Context, location string) ([]*domain.Contact, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE location = $1 ORDER BY user_name`, location)
	if err != nil {
		return nil, fmt.Errorf("failed to get contacts by location: %w", err)
	}
	defer rows.Close()

	contacts := make([]*domain.Contact, 0)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}

	return contacts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*domain.Contact, error) {
	var c domain.Contact
	if err := row.Scan(&c.UserName, &c.FirstName, &c.LastName, &c.Mail, &c.Phone, &c.Location); err != nil {
		return nil, err
	}
	return &c, nil
}
