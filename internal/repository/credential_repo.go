package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"contacts-sync-service/internal/domain"
)

// CredentialRepository реализует чтение хешей паролей из PostgreSQL.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository создает новый экземпляр CredentialRepository.
func NewCredentialRepository(db *sql.DB) domain.CredentialRepository {
	return &CredentialRepository{db: db}
}

// GetPasswordHash возвращает bcrypt-хеш пароля пользователя.
func (r *CredentialRepository) GetPasswordHash(ctx context.Context, userName string) (string, error) {
	var hash string
	err := r.db.QueryRowContext(ctx,
		`SELECT password_hash FROM credentials WHERE user_name = $1`, userName).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to get credentials: %w", err)
	}

	return hash, nil
}
