package http

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/spec-kit/mente-aberta-api/internal/access"
	"github.com/spec-kit/mente-aberta-api/internal/api/http/handlers"
	"github.com/spec-kit/mente-aberta-api/internal/auth"
	"github.com/spec-kit/mente-aberta-api/internal/config"
	"github.com/spec-kit/mente-aberta-api/internal/events"
	"github.com/spec-kit/mente-aberta-api/internal/observability"
	"github.com/spec-kit/mente-aberta-api/internal/persistence"
	"github.com/spec-kit/mente-aberta-api/internal/repository"
	"github.com/spec-kit/mente-aberta-api/internal/service"
)

// ServerOptions carries the process-wide handles the API is built from.
type ServerOptions struct {
	Config       *config.Config
	Logger       *zap.Logger
	Postgres     *persistence.Postgres
	Redis        *persistence.Redis
	Cache        *cache.Cache[string]
	Repositories repository.Repositories
	// Registerer receives domain and HTTP metrics. Nil disables metrics.
	Registerer prometheus.Registerer
}

// Server is the assembled HTTP application and the services behind it.
type Server struct {
	App           *fiber.App
	Dispatcher    events.Dispatcher
	Notifications *service.NotificationService
}

// NewServer wires services, handlers, middleware and routes.
func NewServer(opts ServerOptions) *Server {
	cfg := opts.Config
	logger := opts.Logger
	repos := opts.Repositories

	var metrics *observability.Metrics
	var prom *fiberprometheus.FiberPrometheus
	if opts.Registerer != nil {
		metrics = observability.NewMetrics(opts.Registerer)
		prom = fiberprometheus.NewWithRegistry(opts.Registerer, cfg.App.Name, "http", "", nil)
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	resolver := access.NewResolver(cfg.Access.AdminEmails, cfg.Access.TesterEmails)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	denylist := auth.NewDenylist(opts.Cache)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          repos.Users,
		PasswordResetRepo: repos.PasswordResets,
		Tokens:            tokens,
		Denylist:          denylist,
		Resolver:          resolver,
		Dispatcher:        dispatcher,
		Metrics:           metrics,
		Logger:            logger,
	})
	inviteService := service.NewInviteService(*cfg, service.InviteDependencies{
		InviteRepo: repos.InviteCodes,
		Tokens:     tokens,
		Resolver:   resolver,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	feedbackService := service.NewFeedbackService(repos.Feedback, dispatcher)
	profileService := service.NewProfileService(repos.Users, resolver)
	testerService := service.NewTesterService(repos.Users, resolver, logger)
	notificationService := service.NewNotificationService(logger, *cfg)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: ErrorHandler(logger),
	})
	RegisterMiddlewares(app, MiddlewareConfig{
		Logger:      logger,
		Timeout:     cfg.App.RequestTimeout(),
		CORSOrigins: cfg.App.CORSOrigins,
		Prometheus:  prom,
	})
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, opts.Postgres, opts.Redis),
		Auth:           handlers.NewAuthHandler(authService, authService),
		Invites:        handlers.NewInvitesHandler(inviteService),
		Me:             handlers.NewMeHandler(profileService, feedbackService),
		Admin:          handlers.NewAdminHandler(inviteService, testerService, feedbackService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, repos.Users, resolver, denylist),
		InviteLimiter:  NewRateLimiter(cfg.RateLimit.InvitePerMinute, cfg.RateLimit.InviteBurst),
	})

	return &Server{
		App:           app,
		Dispatcher:    dispatcher,
		Notifications: notificationService,
	}
}
