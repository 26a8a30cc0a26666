package domain

import (
	"errors"
	"fmt"
)

// Domain errors (для бизнес-логики)
var (
	// Validation errors
	ErrInvalidUserName = errors.New("invalid user name")
	ErrInvalidLocation = errors.New("invalid location")
	ErrInvalidContact  = errors.New("contact has no user name")

	// Directory errors
	ErrContactNotFound    = errors.New("contact not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Sync errors: фатальные для прогона
	ErrGroupResolution = errors.New("contacts group could not be resolved")
	ErrAuthorization   = errors.New("directory rejected credentials")
	ErrConnectivity    = errors.New("directory is not reachable")
	ErrStore           = errors.New("local contact store failed")

	// Sync errors: локальные для одного контакта
	ErrContactInsert = errors.New("contact could not be inserted")

	// Account errors
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrEmptyPassword        = errors.New("password cannot be empty")
)

// DirectoryError возвращается клиентом справочника.
// Err - класс ошибки (ErrAuthorization или ErrConnectivity), Cause - исходная причина;
// errors.Is находит обе.
type DirectoryError struct {
	Operation  string
	StatusCode int
	Err        error
	Cause      error
}

func (e *DirectoryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("directory: %s failed (status %d): %v: %v", e.Operation, e.StatusCode, e.Err, e.Cause)
	}
	return fmt.Sprintf("directory: %s failed (status %d): %v", e.Operation, e.StatusCode, e.Err)
}

func (e *DirectoryError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// IsRunFatal сообщает, прерывает ли ошибка весь прогон синхронизации.
func IsRunFatal(err error) bool {
	return errors.Is(err, ErrGroupResolution) ||
		errors.Is(err, ErrAuthorization) ||
		errors.Is(err, ErrConnectivity) ||
		errors.Is(err, ErrStore)
}

// HTTPError для ответов API
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error HTTPError `json:"error"`
}

// Маппинг domain ошибок в HTTP ошибки
var ErrorMapping = map[error]HTTPError{
	ErrContactNotFound:    {Code: "NOT_FOUND", Message: "contact not found"},
	ErrInvalidUserName:    {Code: "INVALID_REQUEST", Message: "user name is required"},
	ErrInvalidLocation:    {Code: "INVALID_REQUEST", Message: "location is empty"},
	ErrInvalidCredentials: {Code: "UNAUTHORIZED", Message: "invalid credentials"},
}

// ToHTTPError преобразует domain ошибку в HTTP ошибку
func ToHTTPError(err error) (HTTPError, bool) {
	for domainErr, httpErr := range ErrorMapping {
		if errors.Is(err, domainErr) {
			return httpErr, true
		}
	}
	return HTTPError{}, false
}
