package handler

import (
	"errors"
	"net/http"

	"contacts-sync-service/internal/domain"

	"github.com/labstack/echo/v4"
)

// Вспомогательные функции преобразования доменных моделей в ответы API

func toAPIContacts(contacts []*domain.Contact) []domain.Contact {
	result := make([]domain.Contact, 0, len(contacts))
	for _, contact := range contacts {
		if contact != nil {
			result = append(result, *contact)
		}
	}
	return result
}

func toErrorResponse(code, message string) domain.ErrorResponse {
	return domain.ErrorResponse{
		Error: domain.HTTPError{
			Code:    code,
			Message: message,
		},
	}
}

func getHTTPStatusCode(err error) int {
	switch {
	// Not Found errors (404)
	case errors.Is(err, domain.ErrContactNotFound):
		return http.StatusNotFound

	// Bad Request errors (400) - валидация
	case errors.Is(err, domain.ErrInvalidUserName), errors.Is(err, domain.ErrInvalidLocation):
		return http.StatusBadRequest

	// Unauthorized (401)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized

	default:
		return http.StatusInternalServerError
	}
}

// respondError отвечает ошибкой в формате API
func respondError(c echo.Context, err error) error {
	if httpErr, exists := domain.ToHTTPError(err); exists {
		return c.JSON(getHTTPStatusCode(err), domain.ErrorResponse{Error: httpErr})
	}
	return c.JSON(http.StatusInternalServerError, toErrorResponse("INTERNAL_ERROR", "internal server error"))
}
