package usecase_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"contacts-sync-service/internal/database"
	"contacts-sync-service/internal/domain"
	"contacts-sync-service/internal/mocks"
	"contacts-sync-service/internal/repository"
	"contacts-sync-service/internal/usecase"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const groupTitle = "Coworkers"

var alice = domain.Account{Name: "alice", Type: "contacts.sync"}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func contact(userName string) *domain.Contact {
	return &domain.Contact{
		UserName:  userName,
		FirstName: userName + "-first",
		LastName:  userName + "-last",
		Mail:      userName + "@example.com",
		Phone:     "380441234567",
		Location:  "Kyiv",
	}
}

func syncKeys(t *testing.T, store *repository.MemoryContactStore, account domain.Account) []string {
	t.Helper()
	stored, err := store.ListContacts(context.Background(), account)
	require.NoError(t, err)

	keys := make([]string, 0, len(stored))
	for _, c := range stored {
		keys = append(keys, c.SyncKey)
	}
	return keys
}

func TestSyncUseCase_Run_EmptyStore_InsertsAll(t *testing.T) {
	ctx := context.Background()
	directory := &mocks.RemoteDirectory{}
	store := repository.NewMemoryContactStore()
	uc := usecase.NewSyncUseCase(directory, store, groupTitle, quietLogger())

	directory.On("FetchByOffice", mock.Anything, alice).
		Return([]*domain.Contact{contact("alice"), contact("bob"), contact("carol")}, nil)

	outcome, err := uc.Run(ctx, alice)

	require.NoError(t, err)
	assert.Equal(t, domain.SyncCompleted, outcome.Status)
	assert.Equal(t, 3, outcome.Inserted)
	assert.Equal(t, 0, outcome.Skipped)
	assert.Equal(t, 0, outcome.Failed)
	assert.Equal(t, 1, store.GroupCount())
	assert.Equal(t, []string{"alice", "bob", "carol"}, syncKeys(t, store, alice))
	directory.AssertExpectations(t)
}

func TestSyncUseCase_Run_ExistingContact_Skipped(t *testing.T) {
	ctx := context.Background()
	directory := &mocks.RemoteDirectory{}
	store := repository.NewMemoryContactStore()
	store.Seed(alice, "alice")
	uc := usecase.NewSyncUseCase(directory, store, groupTitle, quietLogger())

	directory.On("FetchByOffice", mock.Anything, alice).
		Return([]*domain.Contact{contact("alice"), contact("bob")}, nil)

	outcome, err := uc.Run(ctx, alice)

	require.NoError(t, err)
	assert.Equal(t, domain.SyncCompleted, outcome.Status)
	assert.Equal(t, 1, outcome.Inserted)
	assert.Equal(t, 1, outcome.Skipped)
	assert.Equal(t, []string{"alice", "bob"}, syncKeys(t, store, alice))
}

func TestSyncUseCase_Run_SecondRunInsertsNothing(t *testing.T) {
	ctx := context.Background()
	directory := &mocks.RemoteDirectory{}
	store := repository.NewMemoryContactStore()
	uc := usecase.NewSyncUseCase(directory, store, groupTitle, quietLogger())

	directory.On("FetchByOffice", mock.Anything, alice).
		Return([]*domain.Contact{contact("alice"), contact("bob"), contact("carol")}, nil)

	first, err := uc.Run(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Inserted)

	second, err := uc.Run(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncCompleted, second.Status)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 3, second.Skipped)
	assert.Equal(t, 1, store.GroupCount())
	assert.Len(t, syncKeys(t, store, alice), 3)
}

func TestSyncUseCase_Run_DuplicateUserName_InsertedOnce(t *testing.T) {
	ctx := context.Background()
	directory := &mocks.RemoteDirectory{}
	store := repository.NewMemoryContactStore()
	uc := usecase.NewSyncUseCase(directory, store, groupTitle, quietLogger())

	attempts := 0
	store.InsertHook = func(batch *domain.ContactBatch) error {
		if batch.SyncKey == "bob" {
			attempts++
		}
		return nil
	}

	directory.On("FetchByOffice", mock.Anything, alice).
		Return([]*domain.Contact{contact("bob"), contact("carol"), contact("bob")}, nil)

	outcome, err := uc.Run(ctx, alice)

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 2, outcome.Inserted)
	assert.Equal(t, 1, outcome.Skipped)
	assert.Equal(t, []string{"bob", "carol"}, syncKeys(t, store, alice))
}

func TestSyncUseCase_Run_DuplicateAfterFailedInsert_NotRetried(t *testing.T) {
	ctx := context.Background()
	directory := &mocks.RemoteDirectory{}
	store := repository.NewMemoryContactStore()
	uc := usecase.NewSyncUseCase(directory, store, groupTitle, quietLogger())

	attempts := 0
	store.InsertHook = func(batch *domain.ContactBatch) error {
		attempts++
		return errors.New("disk full")
	}

	directory.On("FetchByOffice", mock.Anything, alice).
		Return([]*domain.Contact{contact("bob"), contact("bob")}, nil)

	outcome, err := uc.Run(ctx, alice)

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, outcome.Failed)
	assert.Equal(t, 1, outcome.Skipped)
}

func TestSyncUseCase_Run_InsertFailure_DoesNotStopRun(t *testing.T) {
	ctx := context.Background()
	directory := &mocks.RemoteDirectory{}
	store := repository.NewMemoryContactStore()
	uc := usecase.NewSyncUseCase(directory, store, groupTitle, quietLogger())

	store.InsertHook = func(batch *domain.ContactBatch) error {
		if batch.SyncKey == "bob" {
			return errors.New("constraint violation")
		}
		return nil
	}

	directory.On("FetchByOffice", mock.Anything, alice).
		Return([]*domain.Contact{contact("alice"), contact("bob"), contact("carol"), contact("dave")}, nil)

	outcome, err := uc.Run(ctx, alice)

	require.NoError(t, err)
	assert.Equal(t, domain.SyncCompleted, outcome.Status)
	assert.Equal(t, 3, outcome.Inserted)
	assert.Equal(t, 1, outcome.Failed)
	assert.NoError(t, outcome.Err)

	// Ни одной части записи bob не попало в хранилище
	assert.Equal(t, []string{"alice", "carol", "dave"}, syncKeys(t, store, alice))
}

func TestSyncUseCase_Run_InsertErrorIsContactLocal(t *testing.T) {
	ctx := context.Background()
	directory := &mocks.RemoteDirectory{}
	store := &mocks.LocalContactStore{}
	uc := usecase.NewSyncUseCase(directory, store, groupTitle, quietLogger())

	store.On("FindGroup", mock.Anything, groupTitle, alice).Return("g1", true, nil)
	directory.On("FetchByOffice", mock.Anything, alice).
		Return([]*domain.Contact{contact("bob"), contact("carol")}, nil)
	store.On("KnownIdentifiers", mock.Anything, alice).Return(domain.IdentifierSet{}, nil)
	store.On("InsertContactBatch", mock.Anything, mock.MatchedBy(func(b *domain.ContactBatch) bool {
		return b.SyncKey == "bob"
	})).Return(domain.ErrStore).Once()
	store.On("InsertContactBatch", mock.Anything, mock.MatchedBy(func(b *domain.ContactBatch) bool {
		return b.SyncKey == "carol"
	})).Return(nil).Once()

	outcome, err := uc.Run(ctx, alice)

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Inserted)
	assert.Equal(t, 1, outcome.Failed)
	store.AssertNotCalled(t, "CreateGroup", mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestSyncUseCase_Run_ContactWithoutUserName_Counted(t *testing.T) {
	ctx := context.Background()
	directory := &mocks.RemoteDirectory{}
	store := repository.NewMemoryContactStore()
	uc := usecase.NewSyncUseCase(directory, store, groupTitle, quietLogger())

	directory.On("FetchByOffice", mock.Anything, alice).
		Return([]*domain.Contact{contact(""), nil, contact("bob")}, nil)

	outcome, err := uc.Run(ctx, alice)

	require.NoError(t, err)
	assert.Equal(t, domain.SyncCompleted, outcome.Status)
	assert.Equal(t, 1, outcome.Inserted)
	assert.Equal(t, 2, outcome.Failed)
}

func TestSyncUseCase_Run_PhoneFormatted(t *testing.T) {
	ctx := context.Background()
	directory := &mocks.RemoteDirectory{}
	store := repository.NewMemoryContactStore()
	uc := usecase.NewSyncUseCase(directory, store, groupTitle, quietLogger())

	directory.On("FetchByOffice", mock.Anything, alice).
		Return([]*domain.Contact{contact("bob")}, nil)

	_, err := uc.Run(ctx, alice)
	require.NoError(t, err)

	stored, err := store.ListContacts(ctx, alice)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	bob := stored[0]
	assert.Equal(t, "+380441234567", bob.Value(domain.KindPhone, domain.FieldNumber))
	assert.Equal(t, "bob-first", bob.Value(domain.KindStructuredName, domain.FieldGivenName))
	assert.Equal(t, "bob-last", bob.Value(domain.KindStructuredName, domain.FieldFamilyName))
	assert.Equal(t, "bob@example.com", bob.Value(domain.KindEmail, domain.FieldAddress))
	assert.Equal(t, "Kyiv", bob.Value(domain.KindOrganization, domain.FieldDepartment))
	assert.NotEmpty(t, bob.Value(domain.KindGroupMembership, domain.FieldGroupID))
}

func TestSyncUseCase_Run_AuthorizationError(t *testing.T) {
	ctx := context.Background()
	directory := &mocks.RemoteDirectory{}
	store := &mocks.LocalContactStore{}
	uc := usecase.NewSyncUseCase(directory, store, groupTitle, quietLogger())

	authErr := &domain.DirectoryError{Operation: "fetch_coworkers", StatusCode: 401, Err: domain.ErrAuthorization}

	store.On("FindGroup", mock.Anything, groupTitle, alice).Return("", false, nil)
	store.On("CreateGroup", mock.Anything, groupTitle, alice).Return("g1", nil)
	directory.On("FetchByOffice", mock.Anything, alice).Return(nil, authErr)

	outcome, err := uc.Run(ctx, alice)

	assert.ErrorIs(t, err, domain.ErrAuthorization)
	assert.NotErrorIs(t, err, domain.ErrConnectivity)
	assert.Equal(t, domain.SyncFailed, outcome.Status)
	assert.ErrorIs(t, outcome.Err, domain.ErrAuthorization)
	store.AssertNotCalled(t, "KnownIdentifiers", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "InsertContactBatch", mock.Anything, mock.Anything)
}

func TestSyncUseCase_Run_UnknownFetchError_IsConnectivity(t *testing.T) {
	ctx := context.Background()
	directory := &mocks.RemoteDirectory{}
	store := repository.NewMemoryContactStore()
	uc := usecase.NewSyncUseCase(directory, store, groupTitle, quietLogger())

	directory.On("FetchByOffice", mock.Anything, alice).Return(nil, errors.New("connection reset"))

	outcome, err := uc.Run(ctx, alice)

	assert.ErrorIs(t, err, domain.ErrConnectivity)
	assert.True(t, domain.IsRunFatal(err))
	assert.Equal(t, domain.SyncFailed, outcome.Status)
	assert.Empty(t, syncKeys(t, store, alice))
}

func TestSyncUseCase_Run_GroupResolutionFailure(t *testing.T) {
	ctx := context.Background()
	directory := &mocks.RemoteDirectory{}
	store := &mocks.LocalContactStore{}
	uc := usecase.NewSyncUseCase(directory, store, groupTitle, quietLogger())

	store.On("FindGroup", mock.Anything, groupTitle, alice).Return("", false, nil)
	store.On("CreateGroup", mock.Anything, groupTitle, alice).Return("", domain.ErrStore)

	outcome, err := uc.Run(ctx, alice)

	assert.ErrorIs(t, err, domain.ErrGroupResolution)
	assert.Equal(t, domain.SyncFailed, outcome.Status)
	directory.AssertNotCalled(t, "FetchByOffice", mock.Anything, mock.Anything)
	store.AssertNumberOfCalls(t, "CreateGroup", 1)
}

func TestSyncUseCase_Run_KnownIdentifiersFailure(t *testing.T) {
	ctx := context.Background()
	directory := &mocks.RemoteDirectory{}
	store := &mocks.LocalContactStore{}
	uc := usecase.NewSyncUseCase(directory, store, groupTitle, quietLogger())

	store.On("FindGroup", mock.Anything, groupTitle, alice).Return("g1", true, nil)
	directory.On("FetchByOffice", mock.Anything, alice).Return([]*domain.Contact{contact("bob")}, nil)
	store.On("KnownIdentifiers", mock.Anything, alice).Return(nil, errors.New("database is locked"))

	outcome, err := uc.Run(ctx, alice)

	assert.ErrorIs(t, err, domain.ErrStore)
	assert.Equal(t, domain.SyncFailed, outcome.Status)
	store.AssertNotCalled(t, "InsertContactBatch", mock.Anything, mock.Anything)
}

func TestSyncUseCase_Run_CanceledDuringFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	directory := &mocks.RemoteDirectory{}
	store := repository.NewMemoryContactStore()
	uc := usecase.NewSyncUseCase(directory, store, groupTitle, quietLogger())

	inserts := 0
	store.InsertHook = func(*domain.ContactBatch) error {
		inserts++
		return nil
	}

	directory.On("FetchByOffice", mock.Anything, alice).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.Canceled)

	outcome, err := uc.Run(ctx, alice)

	require.NoError(t, err)
	assert.Equal(t, domain.SyncCanceled, outcome.Status)
	assert.Equal(t, 0, inserts)
	assert.Equal(t, 1, store.GroupCount())
}

func TestSyncUseCase_Run_CanceledAfterFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	directory := &mocks.RemoteDirectory{}
	store := &mocks.LocalContactStore{}
	uc := usecase.NewSyncUseCase(directory, store, groupTitle, quietLogger())

	store.On("FindGroup", mock.Anything, groupTitle, alice).Return("g1", true, nil)
	directory.On("FetchByOffice", mock.Anything, alice).
		Run(func(mock.Arguments) { cancel() }).
		Return([]*domain.Contact{contact("bob")}, nil)

	outcome, err := uc.Run(ctx, alice)

	require.NoError(t, err)
	assert.Equal(t, domain.SyncCanceled, outcome.Status)
	store.AssertNotCalled(t, "KnownIdentifiers", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "InsertContactBatch", mock.Anything, mock.Anything)
}

func TestSyncUseCase_Run_CanceledBetweenInserts_KeepsInserted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	directory := &mocks.RemoteDirectory{}
	store := repository.NewMemoryContactStore()
	uc := usecase.NewSyncUseCase(directory, store, groupTitle, quietLogger())

	store.InsertHook = func(batch *domain.ContactBatch) error {
		if batch.SyncKey == "bob" {
			cancel()
		}
		return nil
	}

	directory.On("FetchByOffice", mock.Anything, alice).
		Return([]*domain.Contact{contact("alice"), contact("bob"), contact("carol")}, nil)

	outcome, err := uc.Run(ctx, alice)

	require.NoError(t, err)
	assert.Equal(t, domain.SyncCanceled, outcome.Status)
	assert.Equal(t, 2, outcome.Inserted)
	assert.Equal(t, []string{"alice", "bob"}, syncKeys(t, store, alice))
}

func TestSyncUseCase_Run_CanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	directory := &mocks.RemoteDirectory{}
	store := repository.NewMemoryContactStore()
	uc := usecase.NewSyncUseCase(directory, store, groupTitle, quietLogger())

	outcome, err := uc.Run(ctx, alice)

	require.NoError(t, err)
	assert.Equal(t, domain.SyncCanceled, outcome.Status)
	directory.AssertNotCalled(t, "FetchByOffice", mock.Anything, mock.Anything)
}

func openSQLiteStore(t *testing.T) *repository.LocalContactStore {
	t.Helper()
	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "contacts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewLocalContactStore(db)
}

// cancelingStore отменяет контекст прогона перед чтением известных ключей.
type cancelingStore struct {
	*repository.LocalContactStore
	cancel context.CancelFunc
}

func (s *cancelingStore) KnownIdentifiers(ctx context.Context, account domain.Account) (domain.IdentifierSet, error) {
	s.cancel()
	return s.LocalContactStore.KnownIdentifiers(ctx, account)
}

func TestSyncUseCase_Run_CanceledDuringGroupResolution_SQLite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	directory := &mocks.RemoteDirectory{}
	store := openSQLiteStore(t)
	uc := usecase.NewSyncUseCase(directory, store, groupTitle, quietLogger())

	outcome, err := uc.Run(ctx, alice)

	require.NoError(t, err)
	assert.Equal(t, domain.SyncCanceled, outcome.Status)
	assert.NoError(t, outcome.Err)
	directory.AssertNotCalled(t, "FetchByOffice", mock.Anything, mock.Anything)
}

func TestSyncUseCase_Run_CanceledDuringKnownIdentifiers_SQLite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	directory := &mocks.RemoteDirectory{}
	sqlite := openSQLiteStore(t)
	uc := usecase.NewSyncUseCase(directory, &cancelingStore{LocalContactStore: sqlite, cancel: cancel}, groupTitle, quietLogger())

	directory.On("FetchByOffice", mock.Anything, alice).Return([]*domain.Contact{contact("bob")}, nil)

	outcome, err := uc.Run(ctx, alice)

	require.NoError(t, err)
	assert.Equal(t, domain.SyncCanceled, outcome.Status)
	assert.Equal(t, 0, outcome.Inserted)

	known, err := sqlite.KnownIdentifiers(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, known)
}

func TestSyncUseCase_Run_AccountsAreIsolated(t *testing.T) {
	ctx := context.Background()
	bob := domain.Account{Name: "bob", Type: "contacts.sync"}

	directory := &mocks.RemoteDirectory{}
	store := repository.NewMemoryContactStore()
	store.Seed(alice, "carol")
	uc := usecase.NewSyncUseCase(directory, store, groupTitle, quietLogger())

	directory.On("FetchByOffice", mock.Anything, mock.Anything).
		Return([]*domain.Contact{contact("carol")}, nil)

	outcome, err := uc.Run(ctx, bob)

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Inserted)
	assert.Equal(t, []string{"carol"}, syncKeys(t, store, bob))
	assert.Equal(t, []string{"carol"}, syncKeys(t, store, alice))
}
