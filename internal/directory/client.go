package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"contacts-sync-service/internal/domain"
)

const userAgent = "contacts-syncer/1.0"

// HTTPClient реализует domain.RemoteDirectory поверх HTTP API справочника.
// Безопасен для параллельного использования.
type HTTPClient struct {
	baseURL     string
	credentials domain.CredentialProvider
	httpClient  *http.Client
}

// NewHTTPClient создает клиента справочника.
func NewHTTPClient(baseURL string, credentials domain.CredentialProvider, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		credentials: credentials,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithHTTPClient подменяет http.Client (для тестов и своих таймаутов).
func (c *HTTPClient) WithHTTPClient(client *http.Client) *HTTPClient {
	c.httpClient = client
	return c
}

// FetchByOffice возвращает контакты людей из того же офиса, что и владелец учетной записи.
func (c *HTTPClient) FetchByOffice(ctx context.Context, account domain.Account) ([]*domain.Contact, error) {
	password, err := c.credentials.Password(account)
	if err != nil {
		return nil, &domain.DirectoryError{Operation: "fetch_coworkers", Err: domain.ErrAuthorization, Cause: err}
	}

	var contacts []*domain.Contact
	if err := c.get(ctx, "fetch_coworkers", "/coworkers", account.Name, password, &contacts); err != nil {
		return nil, err
	}

	return contacts, nil
}

// VerifyCredentials проверяет логин и пароль запросом собственного контакта.
func (c *HTTPClient) VerifyCredentials(ctx context.Context, userName, password string) (*domain.Contact, error) {
	var contact domain.Contact
	if err := c.get(ctx, "verify_credentials", "/my", userName, password, &contact); err != nil {
		return nil, err
	}

	return &contact, nil
}

func (c *HTTPClient) get(ctx context.Context, op, path, userName, password string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &domain.DirectoryError{Operation: op, Err: domain.ErrConnectivity, Cause: err}
	}
	req.SetBasicAuth(userName, password)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.DirectoryError{Operation: op, Err: domain.ErrConnectivity, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return newDirectoryError(op, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &domain.DirectoryError{
			Operation:  op,
			StatusCode: resp.StatusCode,
			Err:        domain.ErrConnectivity,
			Cause:      fmt.Errorf("decode response: %w", err),
		}
	}

	return nil
}

// newDirectoryError классифицирует ответ: 401/403 - отказ в доступе, остальное - недоступность.
func newDirectoryError(op string, statusCode int, body []byte) *domain.DirectoryError {
	kind := domain.ErrConnectivity
	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		kind = domain.ErrAuthorization
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}

	return &domain.DirectoryError{
		Operation:  op,
		StatusCode: statusCode,
		Err:        kind,
		Cause:      errors.New(msg),
	}
}
