package delivery_http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"tweetbot-service/internal/custom_errors"
	ports "tweetbot-service/internal/domain/ports/output"
)

type errorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, custom_errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, custom_errors.ErrPostNotFound):
		return http.StatusNotFound
	case errors.Is(err, custom_errors.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, custom_errors.ErrLockUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, custom_errors.ErrPublishTransport),
		errors.Is(err, custom_errors.ErrMediaProviderError),
		errors.Is(err, custom_errors.ErrNoMediaFound):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorHandler(log ports.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := statusFor(err)
		msg := err.Error()

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
		} else if code == http.StatusInternalServerError {
			log.Error("Request failed",
				slog.String("method", c.Request().Method),
				slog.String("path", c.Path()),
				slog.String("error", err.Error()))
			msg = "internal error"
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, errorResponse{Error: msg})
		}
		if err != nil {
			log.Error("Failed to write error response", slog.String("error", err.Error()))
		}
	}
}
