package handler

import (
	"net/http"

	"contacts-sync-service/internal/domain"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	"github.com/sirupsen/logrus"
)

// SearchHandler обрабатывает HTTP-запросы поиска по справочнику.
type SearchHandler struct {
	*BaseHandler
	searchUseCase domain.SearchUseCase
}

// NewSearchHandler создает новый экземпляр SearchHandler.
func NewSearchHandler(searchUseCase domain.SearchUseCase, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{
		BaseHandler:   NewBaseHandler(logger),
		searchUseCase: searchUseCase,
	}
}

// GetMy возвращает контакт текущего пользователя.
func (h *SearchHandler) GetMy(c echo.Context) error {
	logEntry := h.logRequest(c, "get_my")
	logEntry.Debug("Searching contact of current user")

	contact, err := h.searchUseCase.GetMy(c.Request().Context(), principal(c))
	if err != nil {
		logEntry.WithError(err).Warn("Failed to get contact of current user")
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, contact)
}

// GetContact возвращает контакт по имени пользователя.
func (h *SearchHandler) GetContact(c echo.Context) error {
	userName := c.Param("username")
	logEntry := h.logRequest(c, "get_contact").WithField("username", userName)
	logEntry.Debug("Searching contact")

	contact, err := h.searchUseCase.GetContact(c.Request().Context(), userName)
	if err != nil {
		logEntry.WithError(err).Warn("Failed to get contact")
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, contact)
}

// GetCoworkers возвращает контакты всех людей из офиса текущего пользователя.
func (h *SearchHandler) GetCoworkers(c echo.Context) error {
	logEntry := h.logRequest(c, "get_coworkers")
	logEntry.Debug("Searching coworkers")

	contacts, err := h.searchUseCase.GetCoworkers(c.Request().Context(), principal(c))
	if err != nil {
		logEntry.WithError(err).Error("Failed to get coworkers")
		return respondError(c, err)
	}

	logEntry.WithField("contacts_count", len(contacts)).Info("Coworkers found")
	return c.JSON(http.StatusOK, toAPIContacts(contacts))
}

// GetSearch ищет контакты по офисам из параметра locations.
// Без параметра используется офис текущего пользователя.
func (h *SearchHandler) GetSearch(c echo.Context) error {
	var locations []string
	if err := runtime.BindQueryParameter("form", true, false, "locations", c.QueryParams(), &locations); err != nil {
		h.logger.WithError(err).Warn("Failed to bind search parameters")
		return c.JSON(http.StatusBadRequest, toErrorResponse("INVALID_REQUEST", err.Error()))
	}

	logEntry := h.logRequest(c, "search").WithField("locations", locations)
	logEntry.Debug("Searching contacts")

	contacts, err := h.searchUseCase.Search(c.Request().Context(), principal(c), locations)
	if err != nil {
		logEntry.WithError(err).Error("Failed to search contacts")
		return respondError(c, err)
	}

	logEntry.WithField("contacts_count", len(contacts)).Info("Contacts found")
	return c.JSON(http.StatusOK, toAPIContacts(contacts))
}
