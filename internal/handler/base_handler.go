package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// BaseHandler - общая часть обработчиков справочника: логгер запросов.
type BaseHandler struct {
	logger *logrus.Logger
}

func NewBaseHandler(logger *logrus.Logger) *BaseHandler {
	return &BaseHandler{
		logger: logger,
	}
}

// logRequest возвращает запись лога с полями запроса. principal пуст для /health,
// request_id берется из заголовка ответа, выставленного middleware RequestID.
func (h *BaseHandler) logRequest(c echo.Context, operation string) *logrus.Entry {
	return h.logger.WithFields(logrus.Fields{
		"operation":  operation,
		"method":     c.Request().Method,
		"path":       c.Request().URL.Path,
		"ip":         c.RealIP(),
		"user_agent": c.Request().UserAgent(),
		"principal":  principal(c),
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
	})
}
