package domain

import (
	"context"
	"fmt"
)

// Account представляет учетную запись на устройстве.
// Пара Name+Type разделяет данные локального хранилища между учетными записями.
type Account struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

func (a Account) String() string {
	return fmt.Sprintf("%s/%s", a.Type, a.Name)
}

// SyncGroup представляет группу контактов, в которую попадают синхронизированные записи.
type SyncGroup struct {
	ID      string
	Title   string
	Account Account
}

// Виды частей записи контакта в локальном хранилище.
const (
	KindStructuredName  = "structured_name"
	KindEmail           = "email"
	KindPhone           = "phone"
	KindOrganization    = "organization"
	KindGroupMembership = "group_membership"
)

// Ключи значений внутри частей записи.
const (
	FieldGivenName  = "given_name"
	FieldFamilyName = "family_name"
	FieldAddress    = "address"
	FieldNumber     = "number"
	FieldDepartment = "department"
	FieldGroupID    = "group_id"
)

// DataRow - одна часть записи контакта (имя, почта, телефон и т.д.).
type DataRow struct {
	Kind   string
	Values map[string]string
}

// ContactBatch описывает атомарную запись одного контакта.
// Базовая запись задается полями Account и SyncKey, остальные части - Rows.
type ContactBatch struct {
	Account Account
	SyncKey string
	Rows    []DataRow
}

// IdentifierSet - множество ключей синхронизации, уже присутствующих на устройстве.
type IdentifierSet map[string]struct{}

// Contains проверяет наличие ключа в множестве.
func (s IdentifierSet) Contains(key string) bool {
	_, ok := s[key]
	return ok
}

// Add добавляет ключ в множество.
func (s IdentifierSet) Add(key string) {
	s[key] = struct{}{}
}

// SyncStatus - итоговое состояние одного прогона синхронизации.
type SyncStatus string

const (
	SyncCompleted SyncStatus = "completed"
	SyncCanceled  SyncStatus = "canceled"
	SyncFailed    SyncStatus = "failed"
)

// SyncOutcome представляет результат прогона синхронизации для одной учетной записи.
type SyncOutcome struct {
	Account  Account
	Status   SyncStatus
	Inserted int
	Skipped  int
	Failed   int
	Err      error
}

// RemoteDirectory определяет контракт удаленного справочника.
type RemoteDirectory interface {
	FetchByOffice(ctx context.Context, account Account) ([]*Contact, error)
}

// LocalContactStore определяет контракт локального хранилища контактов на устройстве.
type LocalContactStore interface {
	FindGroup(ctx context.Context, title string, account Account) (string, bool, error)
	CreateGroup(ctx context.Context, title string, account Account) (string, error)
	KnownIdentifiers(ctx context.Context, account Account) (IdentifierSet, error)
	InsertContactBatch(ctx context.Context, batch *ContactBatch) error
}

// CredentialProvider выдает пароль учетной записи для обращения к справочнику.
type CredentialProvider interface {
	Password(account Account) (string, error)
}
