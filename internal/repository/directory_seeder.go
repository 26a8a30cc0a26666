package repository

import (
	"context"
	"database/sql"
	"fmt"

	"contacts-sync-service/internal/domain"
)

// DirectorySeeder наполняет справочник в PostgreSQL: контакты и хеши паролей.
// Используется нагрузочным тестом и интеграционными тестами.
type DirectorySeeder struct {
	db *sql.DB
}

func NewDirectorySeeder(db *sql.DB) *DirectorySeeder {
	return &DirectorySeeder{db: db}
}

// Upsert создает или обновляет контакты и их пароли одной транзакцией.
// Пустой passwordHash оставляет учетные данные без изменений.
func (s *DirectorySeeder) Upsert(ctx context.Context, contacts []*domain.Contact, passwordHash string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, c := range contacts {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO contacts (`+contactColumns+`) VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (user_name) DO UPDATE SET
			   first_name = EXCLUDED.first_name,
			   last_name  = EXCLUDED.last_name,
			   mail       = EXCLUDED.mail,
			   phone      = EXCLUDED.phone,
			   location   = EXCLUDED.location`,
			c.UserName, c.FirstName, c.LastName, c.Mail, c.Phone, c.Location)
		if err != nil {
			return fmt.Errorf("failed to upsert contact %s: %w", c.UserName, err)
		}

		if passwordHash == "" {
			continue
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO credentials (user_name, password_hash) VALUES ($1, $2)
			 ON CONFLICT (user_name) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
			c.UserName, passwordHash)
		if err != nil {
			return fmt.Errorf("failed to upsert credentials %s: %w", c.UserName, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Truncate удаляет все данные справочника.
func (s *DirectorySeeder) Truncate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `TRUNCATE credentials, contacts`); err != nil {
		return fmt.Errorf("failed to truncate directory: %w", err)
	}
	return nil
}
