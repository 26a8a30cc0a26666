package domain

import "context"

// Contact представляет запись справочника сотрудников.
// UserName является ключом синхронизации и не может быть пустым.
type Contact struct {
	UserName  string `json:"userName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Mail      string `json:"mail"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`
}

// ContactRepository определяет контракт для работы с хранилищем справочника.
type ContactRepository interface {
	GetByUserName(ctx context.Context, userName string) (*Contact, error)
	GetByLocation(ctx context.Context, location string) ([]*Contact, error)
}

// CredentialRepository определяет контракт для проверки учетных данных пользователей справочника.
type CredentialRepository interface {
	GetPasswordHash(ctx context.Context, userName string) (string, error)
}
