package usecase

import (
	"context"
	"strings"

	"contacts-sync-service/internal/domain"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
)

// SearchUseCase реализует бизнес-логику поиска по справочнику.
type SearchUseCase struct {
	contactRepo    domain.ContactRepository
	credentialRepo domain.CredentialRepository
}

// NewSearchUseCase создает новый экземпляр SearchUseCase.
func NewSearchUseCase(contactRepo domain.ContactRepository, credentialRepo domain.CredentialRepository) domain.SearchUseCase {
	return &SearchUseCase{
		contactRepo:    contactRepo,
		credentialRepo: credentialRepo,
	}
}

// Authenticate сверяет пароль с bcrypt-хешем пользователя.
func (uc *SearchUseCase) Authenticate(ctx context.Context, userName, password string) error {
	if userName == "" || password == "" {
		return domain.ErrInvalidCredentials
	}

	hash, err := uc.credentialRepo.GetPasswordHash(ctx, userName)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return domain.ErrInvalidCredentials
	}

	return nil
}

// GetMy возвращает контакт текущего пользователя.
func (uc *SearchUseCase) GetMy(ctx context.Context, userName string) (*domain.Contact, error) {
	return uc.GetContact(ctx, userName)
}

// GetContact возвращает контакт по имени пользователя.
func (uc *SearchUseCase) GetContact(ctx context.Context, userName string) (*domain.Contact, error) {
	if userName == "" {
		return nil, domain.ErrInvalidUserName
	}

	return uc.contactRepo.GetByUserName(ctx, userName)
}

// GetCoworkers возвращает контакты всех людей из того же офиса, что и пользователь.
func (uc *SearchUseCase) GetCoworkers(ctx context.Context, userName string) ([]*domain.Contact, error) {
	location, err := uc.locationOfUser(ctx, userName)
	if err != nil {
		return nil, err
	}

	return uc.contactRepo.GetByLocation(ctx, location)
}

// Search ищет контакты по списку офисов.
// Если офисы не заданы, используется офис текущего пользователя.
func (uc *SearchUseCase) Search(ctx context.Context, userName string, locations []string) ([]*domain.Contact, error) {
	unique := uniqueLocations(locations)
	if len(unique) == 0 {
		location, err := uc.locationOfUser(ctx, userName)
		if err != nil {
			return nil, err
		}
		unique = []string{location}
	}

	all := make([]*domain.Contact, 0)
	for _, location := range unique {
		contacts, err := uc.contactRepo.GetByLocation(ctx, location)
		if err != nil {
			return nil, err
		}
		all = append(all, contacts...)
	}

	return all, nil
}

func (uc *SearchUseCase) locationOfUser(ctx context.Context, userName string) (string, error) {
	contact, err := uc.GetContact(ctx, userName)
	if err != nil {
		return "", err
	}
	if contact.Location == "" {
		return "", domain.ErrInvalidLocation
	}

	return contact.Location, nil
}

// uniqueLocations нормализует названия офисов (пробелы, NFC) и убирает повторы, сохраняя порядок.
func uniqueLocations(locations []string) []string {
	seen := make(map[string]struct{}, len(locations))
	result := make([]string, 0, len(locations))
	for _, location := range locations {
		normalized := norm.NFC.String(strings.TrimSpace(location))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}
