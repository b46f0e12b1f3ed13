package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/observability"
	apperrors "github.com/spec-kit/account-service/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware renders every error in the fixed envelope
// {success:false, error:<status title>, detail:<message|fields>}.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				status, code, title, detail := normalizeError(err)
				if metrics != nil {
					metrics.RecordError(c.Path(), c.Method(), code)
				}
				if status >= 500 {
					logger.Error("request failed", zap.Error(err))
				}
				payload := fiber.Map{
					"success": false,
					"error":   title,
				}
				if detail != nil {
					payload["detail"] = detail
				}
				c.Status(status)
				_ = c.JSON(payload)
				err = nil
			}
		}()
		return c.Next()
	}
}

func normalizeError(err error) (status int, code, title string, detail any) {
	// Router-level errors (404, 405) arrive as *fiber.Error.
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, "HTTP_ERROR", apperrors.StatusTitle(fiberErr.Code), fiberErr.Message
	}

	domainErr := apperrors.ToDomainError(err)
	if domainErr.Direct {
		return domainErr.HTTPStatus, domainErr.Code, domainErr.Message, nil
	}
	return domainErr.HTTPStatus, domainErr.Code, domainErr.Title(), domainErr.Detail()
}
