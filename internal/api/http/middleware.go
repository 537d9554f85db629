package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/spec-kit/mente-aberta-api/internal/auth"
	"github.com/spec-kit/mente-aberta-api/internal/observability"
	apperrors "github.com/spec-kit/mente-aberta-api/pkg/util"
)

// MiddlewareConfig bundles global middleware settings.
type MiddlewareConfig struct {
	Logger      *zap.Logger
	Timeout     time.Duration
	CORSOrigins string
	// Prometheus is optional; when set HTTP metrics are served at /metrics.
	Prometheus *fiberprometheus.FiberPrometheus
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, cfg MiddlewareConfig) {
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	if cfg.Prometheus != nil {
		cfg.Prometheus.RegisterAt(app, "/metrics")
		app.Use(cfg.Prometheus.Middleware)
	}
	app.Use(observability.RequestLogger(cfg.Logger, auth.UserID))
	app.Use(errorHandlingMiddleware(cfg.Logger))
}

// ErrorHandler renders errors that escape the middleware chain.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		writeError(c, logger, err)
		return nil
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				writeError(c, logger, err)
				err = nil
			}
		}()
		return c.Next()
	}
}

func writeError(c *fiber.Ctx, logger *zap.Logger, err error) {
	domainErr := apperrors.ToDomainError(err)
	errBody := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		errBody["details"] = domainErr.Details
	}
	if domainErr.HTTPStatus >= 500 {
		logger.Error("request failed",
			zap.String("path", c.Path()),
			zap.String("code", domainErr.Code),
			zap.Error(domainErr),
		)
	}
	_ = c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": errBody})
}
