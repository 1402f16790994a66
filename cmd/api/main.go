package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/framehouse/agency-console/internal/api/http"
	"github.com/framehouse/agency-console/internal/api/http/handlers"
	"github.com/framehouse/agency-console/internal/auth"
	"github.com/framehouse/agency-console/internal/config"
	"github.com/framehouse/agency-console/internal/events"
	"github.com/framehouse/agency-console/internal/observability"
	"github.com/framehouse/agency-console/internal/persistence"
	"github.com/framehouse/agency-console/internal/repository"
	"github.com/framehouse/agency-console/internal/repository/memory"
	"github.com/framehouse/agency-console/internal/service"
)

type accountStores struct {
	staff    repository.StaffRepository
	clients  repository.ClientRepository
	agencies repository.AgencyRepository
	tokens   repository.AccountTokenRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrMissingSessionSecret) {
			log.Fatalf("refusing to start: %v", err)
		}
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	stores := openStores(ctx, cfg, pg, logger)

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher(logger)
	service.NewNotificationService(dispatcher, logger, cfg.Notification).RegisterHandlers()

	identities := service.NewIdentityStore(cfg.Auth, service.IdentityDependencies{
		StaffRepo:    stores.staff,
		ClientRepo:   stores.clients,
		AttemptsRepo: repository.NewLoginAttemptRepository(redis.ClientHandle()),
	}, logger)
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Identities: identities,
		StaffRepo:  stores.staff,
		ClientRepo: stores.clients,
		TokenRepo:  stores.tokens,
		Dispatcher: dispatcher,
	}, logger)
	accountService := service.NewAccountService(cfg.Auth, service.AccountDependencies{
		StaffRepo:   stores.staff,
		ClientRepo:  stores.clients,
		AgencyRepo:  stores.agencies,
		AuthService: authService,
		Dispatcher:  dispatcher,
	}, logger)

	if created, err := accountService.EnsureBootstrapAdmin(ctx, cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminPassword); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	} else if created {
		logger.Info("bootstrap admin created")
	}

	codec, err := auth.NewSessionCodec(cfg.Auth.SessionSecret, cfg.Auth.SessionIssuer)
	if err != nil {
		logger.Fatal("failed to init session codec", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readinessChecks(pg, redis)),
		Auth:     handlers.NewAuthHandler(authService, auth.NewSessionLifecycle(codec, cfg.Auth.CookieSecure)),
		Settings: handlers.NewSettingsHandler(accountService),
		Pages:    handlers.NewPagesHandler(),
		Gateway:  auth.NewGateway(codec),
		Metrics:  metrics,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// openStores picks the Postgres repositories, or in-memory ones for a
// development run without POSTGRES_DSN.
func openStores(ctx context.Context, cfg *config.Config, pg *persistence.Postgres, logger *zap.Logger) accountStores {
	pool := pg.PoolHandle()
	if pool == nil {
		if cfg.App.Env != "development" {
			logger.Fatal("POSTGRES_DSN is required outside development")
		}
		logger.Warn("using in-memory account stores; data is lost on restart")
		staff := memory.NewStaffRepository()
		clients := memory.NewClientRepository()
		return accountStores{
			staff:    staff,
			clients:  clients,
			agencies: memory.NewAgencyRepository(),
			tokens:   memory.NewAccountTokenRepository(staff, clients),
		}
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	return accountStores{
		staff:    repository.NewStaffRepository(pool),
		clients:  repository.NewClientRepository(pool),
		agencies: repository.NewAgencyRepository(pool),
		tokens:   repository.NewAccountTokenRepository(pool),
	}
}

func readinessChecks(pg *persistence.Postgres, redis *persistence.Redis) map[string]handlers.Pinger {
	checks := map[string]handlers.Pinger{"redis": redis}
	if pg.PoolHandle() != nil {
		checks["postgres"] = pg
	}
	return checks
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
