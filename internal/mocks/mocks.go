// Package mocks содержит testify-моки доменных интерфейсов.
package mocks

import (
	"context"

	"contacts-sync-service/internal/domain"

	"github.com/stretchr/testify/mock"
)

type ContactRepository struct {
	mock.Mock
}

func (m *ContactRepository) GetByUserName(ctx context.Context, userName string) (*domain.Contact, error) {
	args := m.Called(ctx, userName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contact), args.Error(1)
}

func (m *ContactRepository) GetByLocation(ctx context.Context, location string) ([]*domain.Contact, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Contact), args.Error(1)
}

type CredentialRepository struct {
	mock.Mock
}

func (m *CredentialRepository) GetPasswordHash(ctx context.Context, userName string) (string, error) {
	args := m.Called(ctx, userName)
	return args.String(0), args.Error(1)
}

type RemoteDirectory struct {
	mock.Mock
}

func (m *RemoteDirectory) FetchByOffice(ctx context.Context, account domain.Account) ([]*domain.Contact, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Contact), args.Error(1)
}

type LocalContactStore struct {
	mock.Mock
}

func (m *LocalContactStore) FindGroup(ctx context.Context, title string, account domain.Account) (string, bool, error) {
	args := m.Called(ctx, title, account)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *LocalContactStore) CreateGroup(ctx context.Context, title string, account domain.Account) (string, error) {
	args := m.Called(ctx, title, account)
	return args.String(0), args.Error(1)
}

func (m *LocalContactStore) KnownIdentifiers(ctx context.Context, account domain.Account) (domain.IdentifierSet, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.IdentifierSet), args.Error(1)
}

func (m *LocalContactStore) InsertContactBatch(ctx context.Context, batch *domain.ContactBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

type SearchUseCase struct {
	mock.Mock
}

func (m *SearchUseCase) Authenticate(ctx context.Context, userName, password string) error {
	args := m.Called(ctx, userName, password)
	return args.Error(0)
}

func (m *SearchUseCase) GetMy(ctx context.Context, userName string) (*domain.Contact, error) {
	args := m.Called(ctx, userName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contact), args.Error(1)
}

func (m *SearchUseCase) GetContact(ctx context.Context, userName string) (*domain.Contact, error) {
	args := m.Called(ctx, userName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contact), args.Error(1)
}

func (m *SearchUseCase) GetCoworkers(ctx context.Context, userName string) ([]*domain.Contact, error) {
	args := m.Called(ctx, userName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Contact), args.Error(1)
}

func (m *SearchUseCase) Search(ctx context.Context, userName string, locations []string) ([]*domain.Contact, error) {
	args := m.Called(ctx, userName, locations)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Contact), args.Error(1)
}

type SyncUseCase struct {
	mock.Mock
}

func (m *SyncUseCase) Run(ctx context.Context, account domain.Account) (*domain.SyncOutcome, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncOutcome), args.Error(1)
}
