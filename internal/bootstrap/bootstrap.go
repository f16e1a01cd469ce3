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
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appAuth "github.com/KNyathi/thesis-review-system-sub002/internal/app/auth"
	appControllers "github.com/KNyathi/thesis-review-system-sub002/internal/app/controllers"
	appMigrations "github.com/KNyathi/thesis-review-system-sub002/internal/app/migrations"
	appRepos "github.com/KNyathi/thesis-review-system-sub002/internal/app/repositories"
	appRoutes "github.com/KNyathi/thesis-review-system-sub002/internal/app/routes"
	appServices "github.com/KNyathi/thesis-review-system-sub002/internal/app/services"
	"github.com/KNyathi/thesis-review-system-sub002/internal/config"
	"github.com/KNyathi/thesis-review-system-sub002/internal/db"
	appMiddleware "github.com/KNyathi/thesis-review-system-sub002/internal/middleware"
	pkgAuth "github.com/KNyathi/thesis-review-system-sub002/internal/pkg/auth"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/filestorage"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/helpers"
	"github.com/KNyathi/thesis-review-system-sub002/internal/pkg/logger"
	"github.com/KNyathi/thesis-review-system-sub002/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos            *appRepos.Repositories
	Services         *appServices.Services
	AuthController   *appControllers.AuthController
	UserController   *appControllers.UserController
	ThesisController *appControllers.ThesisController
	TopicController  *appControllers.TopicController
	ReviewController *appControllers.ReviewController
	AuthMiddleware   *appMiddleware.AuthMiddleware
	JWTService       *pkgAuth.JWTService
	AuthzService     *appAuth.AuthorizationService
	FileStorage      *filestorage.LocalStorage
	Logger           zerolog.Logger
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

// SetupDatabase establishes the database connection, runs migrations and
// seeds the default accounts.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes repositories, services and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	baseURL := "http://localhost:" + cfg.Server.Port
	fileStorageBaseURL := baseURL + "/uploads"
	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, fileStorageBaseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	registry, err := appAuth.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build role registry: %w", err)
	}
	deps.AuthzService = appAuth.NewAuthorizationService(appAuth.NewResolver(registry))

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Services = appServices.NewServices(
		deps.Repos,
		database,
		deps.JWTService,
		deps.FileStorage,
		deps.AuthzService,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.Services.AuthService, lgr)
	deps.UserController = appControllers.NewUserController(deps.Services.UserService, deps.Services.AssignmentService, lgr)
	deps.ThesisController = appControllers.NewThesisController(deps.Services.ThesisService, lgr)
	deps.TopicController = appControllers.NewTopicController(deps.Services.TopicService, lgr)
	deps.ReviewController = appControllers.NewReviewController(deps.Services.ReviewService, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.UserController,
		deps.ThesisController,
		deps.TopicController,
		deps.ReviewController,
		deps.AuthMiddleware,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
