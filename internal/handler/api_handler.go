package handler

import (
	"net/http"

	"contacts-sync-service/internal/domain"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type APIHandler struct {
	*SearchHandler
	auth echo.MiddlewareFunc
}

func NewAPIHandler(searchUseCase domain.SearchUseCase, logger *logrus.Logger) *APIHandler {
	return &APIHandler{
		SearchHandler: NewSearchHandler(searchUseCase, logger),
		auth:          BasicAuthMiddleware(searchUseCase, logger),
	}
}

// RegisterHandlers регистрирует маршруты API. /health доступен без авторизации.
func RegisterHandlers(e *echo.Echo, h *APIHandler) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.GET("/my", h.GetMy, h.auth)
	e.GET("/coworkers", h.GetCoworkers, h.auth)
	e.GET("/search", h.GetSearch, h.auth)
	e.GET("/contacts/:username", h.GetContact, h.auth)
}
