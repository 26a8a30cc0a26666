package domain

import "context"

// SearchUseCase определяет бизнес-логику поиска по справочнику.
type SearchUseCase interface {
	Authenticate(ctx context.Context, userName, password string) error
	GetMy(ctx context.Context, userName string) (*Contact, error)
	GetContact(ctx context.Context, userName string) (*Contact, error)
	GetCoworkers(ctx context.Context, userName string) ([]*Contact, error)
	Search(ctx context.Context, userName string, locations []string) ([]*Contact, error)
}

// SyncUseCase определяет бизнес-логику синхронизации контактов на устройстве.
type SyncUseCase interface {
	Run(ctx context.Context, account Account) (*SyncOutcome, error)
}
