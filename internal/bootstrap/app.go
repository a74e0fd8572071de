package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"hippo-backend/internal/access"
	"hippo-backend/internal/applications"
	googleauth "hippo-backend/internal/auth"
	"hippo-backend/internal/candidates"
	"hippo-backend/internal/documents"
	"hippo-backend/internal/eligibility"
	"hippo-backend/internal/exports"
	"hippo-backend/internal/files"
	"hippo-backend/internal/regions"
	"hippo-backend/internal/services/health"
	"hippo-backend/internal/shared/config"
	"hippo-backend/internal/shared/server"
	"hippo-backend/internal/shared/server/middleware"
	"hippo-backend/internal/shared/storage/db"
	"hippo-backend/internal/shared/storage/object"
	localstore "hippo-backend/internal/shared/storage/object/local"
	s3store "hippo-backend/internal/shared/storage/object/s3"
	"hippo-backend/internal/users"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Redis  *redis.Client
	Store  object.ObjectStore

	RegionsService      *regions.Service
	AccessService       *access.Service
	UsersService        *users.Service
	CandidatesService   *candidates.Service
	DocumentsService    *documents.Service
	ApplicationsService *applications.Service
	ExportsService      *exports.Service
	FilesService        *files.Service
	GoogleAuth          *googleauth.GoogleService
}

// defaultRegions seeds the in-memory backend with the regions the
// initial migration inserts.
var defaultRegions = []regions.Region{
	{ID: "bel", Name: "Белгородская область"},
	{ID: "vor", Name: "Воронежская область"},
	{ID: "kur", Name: "Курская область"},
	{ID: "tam", Name: "Тамбовская область"},
	{ID: "nnov", Name: "Нижегородская область"},
	{ID: "lip", Name: "Липецкая область"},
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Redis:  buildRedis(ctx, cfg),
		Store:  store,
	}
	buildServices(app)

	deps := server.RouterDeps{
		Config:             cfg,
		Access:             app.AccessService,
		AccessHandler:      access.NewHandler(app.AccessService),
		ApplicationHandler: applications.NewHandler(app.ApplicationsService),
		CandidateHandler:   candidates.NewHandler(app.CandidatesService),
		DocumentHandler:    documents.NewHandler(app.DocumentsService),
		ExportHandler:      exports.NewHandler(app.ExportsService),
		FileHandler:        files.NewHandler(app.FilesService),
		RegionHandler:      regions.NewHandler(app.RegionsService),
		UserHandler:        users.NewHandler(app.UsersService),
		Health:             health.NewService(pinger(sqlDB)),
		GoogleAuth:         app.GoogleAuth,
	}
	if app.Redis != nil {
		deps.RateLimiter = middleware.NewRedisRateLimiter(app.Redis, "hippo")
	}
	app.Router = server.NewRouter(deps)

	return app, nil
}

// Close releases the database and redis connections.
func (a *App) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.DefaultServerOptions()
	opts.MaxOpenConns = cfg.DBMaxOpenConns
	opts.MaxIdleConns = cfg.DBMaxIdleConns
	opts.ConnMaxLifetime = cfg.DBConnMaxLife
	opts.PingTimeout = cfg.DBConnectTimeout
	opts.StatementTimeout = cfg.DBStmtTimeout

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if isDevLike(cfg.Env) {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:   cfg.AWSRegion,
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			KMSKeyID: cfg.SSEKMSKeyID,
			Endpoint: cfg.S3Endpoint,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildRedis connects when REDIS_URL is set. OAuth state and rate limits
// fall back to process memory on failure.
func buildRedis(ctx context.Context, cfg config.Config) *redis.Client {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil
	}
	client, err := googleauth.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Printf("bootstrap: redis unavailable; using in-memory oauth state and rate limits: %v", err)
		return nil
	}
	return client
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func pinger(sqlDB *sql.DB) health.Pinger {
	if sqlDB == nil {
		return nil
	}
	return sqlDB
}

func buildServices(app *App) {
	var (
		regionRepo    regions.Repo
		accessRepo    access.Repo
		userRepo      users.Repo
		candidateRepo candidates.Repo
		docRepo       documents.DocumentsRepo
		appRepo       applications.Repo
	)
	if app.DB != nil {
		regionRepo = &regions.PGRepo{DB: app.DB}
		accessRepo = &access.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
		candidateRepo = &candidates.PGRepo{DB: app.DB}
		docRepo = &documents.PGRepo{DB: app.DB}
		appRepo = &applications.PGRepo{DB: app.DB}
	} else {
		seed := make([]regions.Region, 0, len(defaultRegions))
		for _, r := range defaultRegions {
			r.IsActive = true
			r.PaymentNote = regions.DefaultPaymentNote
			seed = append(seed, r)
		}
		regionRepo = regions.NewMemoryRepo(seed...)
		accessRepo = access.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
		candidateRepo = candidates.NewMemoryRepo()
		docRepo = documents.NewMemoryRepo()
		appRepo = applications.NewMemoryRepo()
	}

	regionSvc := regions.NewService(regionRepo, app.Store)
	userSvc := users.NewService(userRepo, regionSvc)
	candidateSvc := candidates.NewService(candidateRepo, regionSvc, userSvc)
	docSvc := &documents.Service{Store: app.Store, Repo: docRepo, Candidates: candidateSvc}
	evaluator := eligibility.Evaluator{UnknownAge: eligibility.ParseUnknownAgePolicy(app.Config.GuardianUnknownAge)}
	appSvc := applications.NewService(appRepo, app.Store, candidateSvc, docSvc, evaluator)

	var gas exports.Sender
	if c := exports.NewGASClient(app.Config.GASExportURL, app.Config.GASExportSecret); c != nil {
		gas = c
	}

	var states googleauth.StateStore
	if app.Redis != nil {
		states = googleauth.NewRedisStateStore(app.Redis, "hippo")
	}

	app.RegionsService = regionSvc
	app.AccessService = access.NewService(accessRepo, regionSvc, app.Config.SuperAdminIDs)
	app.UsersService = userSvc
	app.CandidatesService = candidateSvc
	app.DocumentsService = docSvc
	app.ApplicationsService = appSvc
	app.ExportsService = exports.NewService(appSvc, app.Store, gas)
	app.FilesService = files.NewService(app.Store, appSvc)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		states,
		userSvc,
	)
}
