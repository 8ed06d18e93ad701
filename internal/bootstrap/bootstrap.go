package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/skillmart/internal/app/auth"
	appControllers "github.com/yigit/skillmart/internal/app/controllers"
	appMigrations "github.com/yigit/skillmart/internal/app/migrations"
	appRepos "github.com/yigit/skillmart/internal/app/repositories"
	appRoutes "github.com/yigit/skillmart/internal/app/routes"
	appServices "github.com/yigit/skillmart/internal/app/services"
	"github.com/yigit/skillmart/internal/app/wizards"
	"github.com/yigit/skillmart/internal/config"
	"github.com/yigit/skillmart/internal/db"
	appMiddleware "github.com/yigit/skillmart/internal/middleware"
	pkgAuth "github.com/yigit/skillmart/internal/pkg/auth"
	"github.com/yigit/skillmart/internal/pkg/cache"
	"github.com/yigit/skillmart/internal/pkg/email"
	"github.com/yigit/skillmart/internal/pkg/filestorage"
	"github.com/yigit/skillmart/internal/pkg/helpers"
	"github.com/yigit/skillmart/internal/pkg/logger"
	"github.com/yigit/skillmart/internal/pkg/marketplace"
	"github.com/yigit/skillmart/internal/pkg/reporting"
	"github.com/yigit/skillmart/internal/pkg/upload"
)

// uploadsRoute is where local-mode uploads are served
const uploadsRoute = "/uploads"

// Infrastructure holds the connections opened at startup. Nil members are not in use.
type Infrastructure struct {
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Reporter reporting.Reporter
}

// Close releases every open connection
func (i *Infrastructure) Close() {
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
	if i.DB != nil {
		i.DB.Close()
	}
	if i.Reporter != nil {
		i.Reporter.Close()
	}
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Cache          cache.Cache
	Marketplace    *marketplace.Client
	Uploader       upload.Uploader
	Mailer         email.EmailService
	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService
	WizardService  *appServices.WizardService
	Sweeper        *appServices.SessionSweeper
	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  prettyLog,
		Service: "skillmart-portal",
		Caller:  logLevel == logger.DebugLevel,
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupInfrastructure opens the database (when sessions live in postgres), runs the
// migrations, connects redis when enabled and creates the error reporter.
func SetupInfrastructure(cfg *config.Config, lgr zerolog.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{
		Reporter: reporting.New(reporting.Config{
			Token:       cfg.Rollbar.Token,
			Environment: cfg.Rollbar.Environment,
			CodeVersion: cfg.Rollbar.CodeVersion,
		}),
	}

	if strings.ToLower(cfg.Wizard.Store) == "postgres" {
		pool, err := setupDatabase(cfg, lgr)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.DB = pool
	} else {
		lgr.Warn().Msg("Wizard sessions are kept in memory and will not survive a restart")
	}

	if cfg.Redis.Enabled {
		client, err := db.NewRedis(cfg)
		if err != nil {
			// Caching is an optimization; the portal works without it
			lgr.Error().Err(err).Msg("Redis unavailable, continuing without cache")
		} else {
			lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established.")
			infra.Redis = client
		}
	}

	return infra, nil
}

func setupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	dbPool, err := db.NewPostgresPool(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		dbPool.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := appMigrations.NewMigrator(dbPool).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		dbPool.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, infra *Infrastructure, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	if infra.DB != nil {
		deps.Repos = appRepos.NewRepositories(infra.DB)
	} else {
		deps.Repos = appRepos.NewMemoryRepositories()
	}

	if infra.Redis != nil {
		deps.Cache = cache.NewRedisCache(infra.Redis, "skillmart:")
	} else {
		deps.Cache = cache.Noop{}
	}

	deps.Marketplace = marketplace.NewClient(marketplace.Config{
		BaseURL:         cfg.Upstream.BaseURL,
		Timeout:         helpers.ParseDuration(cfg.Upstream.Timeout, 10*time.Second),
		AIReviewTimeout: helpers.ParseDuration(cfg.Upstream.AIReviewTimeout, time.Minute),
		UploadTimeout:   helpers.ParseDuration(cfg.Upstream.UploadTimeout, 5*time.Minute),
	}, &http.Client{})

	if strings.ToLower(cfg.Uploads.Mode) == "local" {
		storage, err := filestorage.NewLocalStorage(cfg.Uploads.StoragePath, strings.TrimRight(cfg.Server.PublicURL, "/")+uploadsRoute)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to initialize file storage")
			return nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
		deps.Uploader = storage
	} else {
		deps.Uploader = deps.Marketplace
	}

	emailCfg := email.Config{
		Provider:    cfg.Email.Provider,
		FromName:    cfg.Email.FromName,
		FromEmail:   cfg.Email.FromEmail,
		SMTPHost:    cfg.Email.SMTPHost,
		SMTPPort:    cfg.Email.SMTPPort,
		SMTPUser:    cfg.Email.SMTPUser,
		SMTPPass:    cfg.Email.SMTPPass,
		UseTLS:      cfg.Email.SMTPUseTLS,
		SendGridKey: cfg.Email.SendGridKey,
		PublicURL:   cfg.Server.PublicURL,
	}
	transport, err := email.NewTransport(emailCfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize email transport: %w", err)
	}
	deps.Mailer = email.NewEmailService(transport, emailCfg)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenIssuer: cfg.JWT.Issuer,
	})
	deps.AuthzService = appAuth.NewAuthorizationService()
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	// Initialize services
	deps.WizardService = appServices.NewWizardService(
		deps.Repos.Sessions,
		wizards.NewRegistry(),
		deps.AuthzService,
		deps.Marketplace,
		appServices.NewAIReviewService(deps.Marketplace),
		appServices.NewUploadService(deps.Uploader),
		appServices.NewSubmitters(deps.Marketplace, deps.Marketplace, deps.Repos.Decisions, deps.Mailer),
	)
	deps.WizardService.SetUploadExpiry(2 * helpers.ParseDuration(cfg.Upstream.UploadTimeout, 5*time.Minute))
	deps.Sweeper = appServices.NewSessionSweeper(
		deps.Repos.Sessions,
		helpers.ParseDuration(cfg.Wizard.SessionTTL, 72*time.Hour),
		helpers.ParseDuration(cfg.Wizard.SweepInterval, 15*time.Minute),
	)

	listingTTL := helpers.ParseDuration(cfg.Cache.ListingTTL, 30*time.Second)
	referenceTTL := helpers.ParseDuration(cfg.Cache.ReferenceTTL, time.Hour)

	deps.Controllers = appRoutes.Controllers{
		Wizard: appControllers.NewWizardController(deps.WizardService),
		Upload: appControllers.NewUploadController(deps.WizardService),
		Catalog: appControllers.NewCatalogController(
			appServices.NewCourseService(deps.Marketplace, deps.Cache, listingTTL),
			appServices.NewReferenceService(deps.Marketplace, deps.Cache, referenceTTL),
		),
		Admin:     appControllers.NewAdminController(appServices.NewRegistrationService(deps.Marketplace)),
		Dashboard: appControllers.NewDashboardController(appServices.NewDashboardService(deps.Marketplace)),
		Health:    appControllers.NewHealthController(healthChecks(infra, deps.Marketplace)...),
	}

	return deps, nil
}

func healthChecks(infra *Infrastructure, api *marketplace.Client) []appControllers.HealthCheck {
	var checks []appControllers.HealthCheck
	if infra.DB != nil {
		checks = append(checks, appControllers.HealthCheck{Name: "postgres", Probe: infra.DB.Ping})
	}
	if infra.Redis != nil {
		checks = append(checks, appControllers.HealthCheck{
			Name:     "redis",
			Optional: true,
			Probe:    func(ctx context.Context) error { return infra.Redis.Ping(ctx).Err() },
		})
	}
	checks = append(checks, appControllers.HealthCheck{
		Name:     "ai-review",
		Optional: true,
		Probe: func(ctx context.Context) error {
			if !api.AIHealthy(ctx) {
				return fmt.Errorf("AI review service is not healthy")
			}
			return nil
		},
	})
	return checks
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, reporter reporting.Reporter, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register request validators: %w", err)
	}

	router := gin.New()
	router.MaxMultipartMemory = int64(cfg.Uploads.MaxMemoryMB) << 20
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	router.Use(appMiddleware.RequestLogger(), appMiddleware.Recovery(reporter))

	appRoutes.SetupSwagger(router, cfg.Server.PublicURL)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	if _, ok := deps.Uploader.(*filestorage.LocalStorage); ok {
		router.Static(uploadsRoute, cfg.Uploads.StoragePath)
		lgr.Info().Str("path", cfg.Uploads.StoragePath).Msg("Static file serving configured for uploads directory")
	}

	return router, nil
}
