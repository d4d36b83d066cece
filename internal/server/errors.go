package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"storefront-api/internal/apperror"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// errorHandler renders every failure as {"error", "code"}. Persistence
// failures are logged with their cause and reported without it.
func errorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := classify(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}

func classify(err error) (int, errorResponse) {
	var httpErr *echo.HTTPError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, errorResponse{Error: "request timed out", Code: "timeout"}
	case errors.As(err, &httpErr):
		return httpErr.Code, errorResponse{
			Error: fmt.Sprint(httpErr.Message),
			Code:  strings.ReplaceAll(strings.ToLower(http.StatusText(httpErr.Code)), " ", "_"),
		}
	}

	kind, ok := apperror.KindOf(err)
	if !ok || kind == apperror.ErrPersistence {
		return http.StatusInternalServerError, errorResponse{
			Error: "internal server error",
			Code:  apperror.ErrPersistence.Code(),
		}
	}
	return kind.Status(), errorResponse{Error: apperror.Message(err), Code: kind.Code()}
}
