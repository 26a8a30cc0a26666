package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"contacts-sync-service/internal/domain"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

const principalKey = "principal"

// LoggingMiddleware добавляет структурированное логирование
func LoggingMiddleware(logger *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Выполняем запрос
			err := next(c)
			if err != nil {
				// Отдаем ошибку echo сразу, чтобы в лог попал итоговый статус
				c.Error(err)
			}

			// Логируем детали запроса
			latency := time.Since(start)
			status := c.Response().Status

			entry := logger.WithFields(logrus.Fields{
				"method":     c.Request().Method,
				"uri":        c.Request().URL.Path,
				"status":     status,
				"latency":    latency,
				"user_agent": c.Request().UserAgent(),
				"ip":         c.RealIP(),
				"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
			})

			if err != nil {
				entry = entry.WithField("error", err.Error())
			}

			if status >= 500 {
				entry.Error("Server error")
			} else if status >= 400 {
				entry.Warn("Client error")
			} else {
				entry.Info("Request processed")
			}

			return nil
		}
	}
}

// BasicAuthMiddleware проверяет логин и пароль по справочнику и сохраняет имя пользователя в контексте.
func BasicAuthMiddleware(searchUseCase domain.SearchUseCase, logger *logrus.Logger) echo.MiddlewareFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm: "contacts",
		Validator: func(userName, password string, c echo.Context) (bool, error) {
			err := searchUseCase.Authenticate(c.Request().Context(), userName, password)
			if err == nil {
				c.Set(principalKey, userName)
				return true, nil
			}

			if errors.Is(err, domain.ErrInvalidCredentials) {
				logger.WithField("user", userName).Warn("Invalid credentials")
				return false, nil
			}

			logger.WithError(err).WithField("user", userName).Error("Failed to check credentials")
			return false, err
		},
	})
}

// HTTPErrorHandler отдает ошибки echo (401, 404 маршрута, 429) в формате API.
func HTTPErrorHandler(logger *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		response := toErrorResponse("INTERNAL_ERROR", "internal server error")

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			response = toErrorResponse(errorCode(status), fmt.Sprint(he.Message))
		} else if httpErr, exists := domain.ToHTTPError(err); exists {
			status = getHTTPStatusCode(err)
			response = domain.ErrorResponse{Error: httpErr}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, response)
		}
		if err != nil {
			logger.WithError(err).Error("Failed to send error response")
		}
	}
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "INVALID_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		return "INTERNAL_ERROR"
	}
}

func principal(c echo.Context) string {
	userName, _ := c.Get(principalKey).(string)
	return userName
}
