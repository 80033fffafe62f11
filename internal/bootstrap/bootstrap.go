package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appControllers "github.com/selvaalegre/portal/internal/app/controllers"
	appMigrations "github.com/selvaalegre/portal/internal/app/migrations"
	"github.com/selvaalegre/portal/internal/app/models/dto"
	appRepos "github.com/selvaalegre/portal/internal/app/repositories"
	appRoutes "github.com/selvaalegre/portal/internal/app/routes"
	appServices "github.com/selvaalegre/portal/internal/app/services"
	"github.com/selvaalegre/portal/internal/config"
	"github.com/selvaalegre/portal/internal/db"
	appMiddleware "github.com/selvaalegre/portal/internal/middleware"
	pkgAuth "github.com/selvaalegre/portal/internal/pkg/auth"
	"github.com/selvaalegre/portal/internal/pkg/email"
	"github.com/selvaalegre/portal/internal/pkg/filestorage"
	"github.com/selvaalegre/portal/internal/pkg/logger"
	"github.com/selvaalegre/portal/internal/pkg/validation"
	"github.com/selvaalegre/portal/internal/seed"
	schema "github.com/selvaalegre/portal/migrations"
)

// DefaultConfigPath is where the YAML configuration is looked up.
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Dependencies holds all the application dependencies
type Dependencies struct {
	UserService        appServices.UserService
	AuthService        appServices.AuthService
	CalendarService    appServices.CalendarService
	EventService       appServices.EventService
	RequestService     appServices.RequestService
	PetService         appServices.PetService
	VehicleService     appServices.VehicleService
	PublicationService appServices.PublicationService
	MessageService     appServices.MessageService
	DashboardService   appServices.DashboardService

	AuthController        *appControllers.AuthController
	UserController        *appControllers.UserController
	CalendarController    *appControllers.CalendarController
	RequestController     *appControllers.RequestController
	RegistryController    *appControllers.RegistryController
	PublicationController *appControllers.PublicationController
	MessageController     *appControllers.MessageController
	DashboardController   *appControllers.DashboardController

	AuthMiddleware *appMiddleware.AuthMiddleware
	PollLimiter    *appMiddleware.RateLimiter
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	FileStorage    *filestorage.LocalStorage
	Notifier       email.Notifier
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  strings.ToLower(cfg.Logging.Format) == "text",
		Service: "portal",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// MigrationSource returns the on-disk migrations directory when it exists and the embedded schema otherwise.
func MigrationSource(cfg *config.Config) (fs.FS, string) {
	dir := cfg.Database.MigrationsDir
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir), dir
		}
	}
	return schema.FS, "embedded"
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	source, name := MigrationSource(cfg)
	lgr.Info().Str("source", name).Msg("Running database migrations...")
	applied, err := appMigrations.NewMigrator(dbPool).Migrate(ctx, source)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Strs("applied", applied).Msg("Database migrations successfully applied.")

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	var err error
	// Must match the static file serving path in the server package.
	fileStorageBaseURL := strings.TrimRight(cfg.Server.PublicBaseURL, "/") + "/uploads"
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, fileStorageBaseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	var urls dto.URLFunc = deps.FileStorage.URL

	deps.Notifier = email.NewNotifier(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   cfg.Server.PublicBaseURL,
	}, lgr)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  cfg.AccessTokenTTL(),
		RefreshTokenExp: cfg.RefreshTokenTTL(),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	repos := deps.Repos
	deps.UserService = appServices.NewUserService(repos.UserRepository, repos.TokenRepository, deps.FileStorage, deps.Notifier, lgr)
	deps.AuthService = appServices.NewAuthService(repos.UserRepository, repos.TokenRepository, deps.JWTService, urls, lgr)
	deps.EventService = appServices.NewEventService(repos.EventRepository, urls, lgr)
	deps.CalendarService = appServices.NewCalendarService(repos.EventRepository, cfg.WeekStart(), urls)
	deps.RequestService = appServices.NewRequestService(repos.RequestRepository, deps.Notifier, urls, lgr)
	deps.PetService = appServices.NewPetService(repos.PetRepository, deps.FileStorage, lgr)
	deps.VehicleService = appServices.NewVehicleService(repos.VehicleRepository, lgr)
	deps.PublicationService = appServices.NewPublicationService(repos.PublicationRepository, deps.FileStorage, lgr)
	deps.MessageService = appServices.NewMessageService(repos.MessageRepository, repos.UserRepository, urls, lgr)
	deps.DashboardService = appServices.NewDashboardService(
		repos.UserRepository,
		deps.EventService,
		deps.RequestService,
		deps.MessageService,
		deps.PublicationService,
		urls,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, repos.UserRepository)
	deps.PollLimiter = appMiddleware.NewRateLimiter(cfg.Messaging.PollRatePerSecond, cfg.Messaging.PollBurst)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.UserController = appControllers.NewUserController(deps.UserService, lgr)
	deps.CalendarController = appControllers.NewCalendarController(deps.CalendarService, deps.EventService, cfg.Location(), lgr)
	deps.RequestController = appControllers.NewRequestController(deps.RequestService, lgr)
	deps.RegistryController = appControllers.NewRegistryController(deps.PetService, deps.VehicleService, lgr)
	deps.PublicationController = appControllers.NewPublicationController(deps.PublicationService, lgr)
	deps.MessageController = appControllers.NewMessageController(deps.MessageService, lgr)
	deps.DashboardController = appControllers.NewDashboardController(deps.DashboardService, dbPool)

	return deps, nil
}

// EnsureSuperuser provisions the configured bootstrap administrator.
func EnsureSuperuser(ctx context.Context, cfg *config.Config, deps *Dependencies) error {
	_, err := seed.EnsureSuperuser(ctx, deps.Repos.UserRepository, deps.UserService, seed.Superuser{
		Username: cfg.Bootstrap.SuperuserUsername,
		Email:    cfg.Bootstrap.SuperuserEmail,
		Password: cfg.Bootstrap.SuperuserPassword,
		Unit:     cfg.Bootstrap.SuperuserUnit,
	}, deps.Logger)
	return err
}

// RegisterValidators adds the custom binding tags to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return validation.RegisterCustomValidators(v)
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))
	router.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.UserController,
		deps.CalendarController,
		deps.RequestController,
		deps.RegistryController,
		deps.PublicationController,
		deps.MessageController,
		deps.DashboardController,
		deps.AuthMiddleware,
		deps.PollLimiter,
	)

	return router, nil
}
