package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appAuth "github.com/yigit/projecthub/internal/app/auth"
	appControllers "github.com/yigit/projecthub/internal/app/controllers"
	appMigrations "github.com/yigit/projecthub/internal/app/migrations"
	"github.com/yigit/projecthub/internal/app/models/dto"
	appRepos "github.com/yigit/projecthub/internal/app/repositories"
	appRoutes "github.com/yigit/projecthub/internal/app/routes"
	appServices "github.com/yigit/projecthub/internal/app/services"
	"github.com/yigit/projecthub/internal/config"
	"github.com/yigit/projecthub/internal/db"
	appMiddleware "github.com/yigit/projecthub/internal/middleware"
	pkgAuth "github.com/yigit/projecthub/internal/pkg/auth"
	"github.com/yigit/projecthub/internal/pkg/logger"
	"github.com/yigit/projecthub/internal/pkg/metrics"
	"github.com/yigit/projecthub/internal/pkg/validation"
	"github.com/yigit/projecthub/internal/pkg/websocket"
	"github.com/yigit/projecthub/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService    appServices.IAuthService
	UserService    appServices.IUserService
	TeamService    appServices.ITeamService
	ProjectService appServices.IProjectService
	ReviewService  appServices.IReviewService
	StatsService   appServices.IStatsService
	ExportService  appServices.IExportService
	ScopeService   appServices.IScopeService
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService
	Hub            *websocket.Hub
	WSHandler      *websocket.Handler
	Recorder       *websocket.Recorder
	Metrics        *metrics.Metrics
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
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool).Up(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	if err := validation.RegisterWithGin(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	deps.Repos = appRepos.NewRepositories(dbPool)
	deps.Metrics = metrics.New()

	deps.Hub = websocket.NewHub(lgr.With().Str("component", "websocket").Logger())
	deps.WSHandler = websocket.NewHandler(deps.Hub, cfg.Server.AllowedOrigins, lgr)
	deps.Recorder = websocket.NewRecorder(deps.Hub, lgr.With().Str("component", "audit").Logger(), func(e *websocket.Event) {
		deps.Metrics.ObserveEvent(e.Entity, string(e.Type))
	})

	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.UserRepository)
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.JWTService, lgr)
	deps.UserService = appServices.NewUserService(deps.Repos.UserRepository, deps.Repos.TeamRepository, deps.Hub, lgr)
	deps.TeamService = appServices.NewTeamService(deps.Repos.TeamRepository, deps.Repos.ProjectRepository, deps.Repos.UserRepository, deps.Hub, lgr)
	deps.ProjectService = appServices.NewProjectService(deps.Repos.ProjectRepository, deps.Repos.TeamRepository, deps.Repos.UserRepository, deps.Hub, lgr)
	deps.ReviewService = appServices.NewReviewService(deps.Repos.ReviewRepository, deps.Repos.TeamRepository, deps.Hub, lgr)
	deps.ScopeService = appServices.NewScopeService(deps.Repos.ScopeRepository, lgr)
	statsService := appServices.NewStatsService(deps.Repos.UserRepository, deps.Repos.TeamRepository, lgr)
	deps.StatsService = statsService
	deps.ExportService = appServices.NewExportService(statsService, appServices.ExportConfig{
		SheetName:      cfg.Export.SheetName,
		FilenamePrefix: cfg.Export.FilenamePrefix,
	}, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.AuthzService)

	pageSize := cfg.Admin.DefaultPageSize
	deps.Controllers = appRoutes.Controllers{
		Auth:    appControllers.NewAuthController(deps.AuthService, deps.AuthzService, lgr),
		User:    appControllers.NewUserController(deps.UserService, pageSize, lgr),
		Team:    appControllers.NewTeamController(deps.TeamService, pageSize, lgr),
		Project: appControllers.NewProjectController(deps.ProjectService, deps.ScopeService, pageSize, lgr),
		Review:  appControllers.NewReviewController(deps.ReviewService, lgr),
		Stats:   appControllers.NewStatsController(deps.StatsService, deps.ExportService, deps.Metrics, pageSize, lgr),
	}

	return deps, nil
}

// SeedDefaults creates the configured admin account and default scope
func SeedDefaults(ctx context.Context, cfg *config.Config, deps *Dependencies) error {
	return seed.CreateDefaultData(ctx, deps.Repos.UserRepository, deps.ScopeService, seed.Options{
		AdminName:     cfg.Admin.SeedName,
		AdminEmail:    cfg.Admin.SeedEmail,
		AdminPassword: cfg.Admin.SeedPassword,
		DefaultScope:  cfg.Admin.DefaultScope,
	}, deps.Logger)
}

// Pinger reports database health
type Pinger interface {
	Ping(ctx context.Context) error
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, database Pinger, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		appMiddleware.Recovery(),
		appMiddleware.RequestLogger(deps.Metrics),
		appMiddleware.CORS(cfg.Server.AllowedOrigins),
		appMiddleware.Timeout(cfg.Server.RequestTimeout),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.WSHandler)

	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	router.GET("/health", healthHandler(database))

	return router
}

func healthHandler(database Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if database != nil {
			if err := database.Ping(ctx); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("Health check failed")
				c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(
					dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Database unavailable").
						WithSeverity(dto.ErrorSeverityCritical),
				))
				return
			}
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
	}
}
