package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/framehouse/agency-console/internal/auth"
	"github.com/framehouse/agency-console/internal/observability"
	apperrors "github.com/framehouse/agency-console/pkg/util"
)

// RegisterMiddlewares attaches the middlewares that run ahead of the session
// gateway, so gateway rejections and redirects are rendered, logged and counted too.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestDeadline(timeout))
	}
	renderer := &errorRenderer{logger: logger, metrics: metrics}
	app.Use(renderer.Handle)
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(noStoreAccountResponses)
}

func requestDeadline(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// noStoreAccountResponses keeps responses that carry session cookies or
// account data out of shared caches.
func noStoreAccountResponses(c *fiber.Ctx) error {
	err := c.Next()
	_, admitted := auth.SessionFromContext(c)
	if admitted || auth.Classify(c.Path()).Class == auth.RouteAPIAuth {
		c.Set(fiber.HeaderCacheControl, "no-store")
	}
	return err
}

// errorRenderer turns handler errors and panics into the JSON error envelope.
// The request id is echoed in the body so a user report can be matched to the log line.
type errorRenderer struct {
	logger  *zap.Logger
	metrics *observability.Metrics
}

func (r *errorRenderer) Handle(c *fiber.Ctx) (err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("panic recovered", zap.Any("panic", p), zap.ByteString("stack", debug.Stack()))
			err = apperrors.NewInternalError(nil)
		}
		if err != nil {
			r.render(c, apperrors.ToDomainError(err))
			err = nil
		}
	}()
	return c.Next()
}

func (r *errorRenderer) render(c *fiber.Ctx, domainErr *apperrors.DomainError) {
	requestID := c.GetRespHeader(observability.RequestIDHeader)
	r.metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)

	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	if requestID != "" {
		body["request_id"] = requestID
	}
	if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
		r.logger.Error("request failed",
			zap.String("request_id", requestID),
			zap.String("path", c.Path()),
			zap.Error(domainErr),
		)
	}
	c.Status(domainErr.HTTPStatus)
	_ = c.JSON(fiber.Map{"error": body})
}
