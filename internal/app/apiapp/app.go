package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vjzest/PropCIDBack/internal/config"
	s3infra "github.com/vjzest/PropCIDBack/internal/infra/s3"
	"github.com/vjzest/PropCIDBack/internal/jobs/sweeper"
	pgrepo "github.com/vjzest/PropCIDBack/internal/repo/postgres"
	redrepo "github.com/vjzest/PropCIDBack/internal/repo/redis"
	authsvc "github.com/vjzest/PropCIDBack/internal/services/auth"
	buildersvc "github.com/vjzest/PropCIDBack/internal/services/builders"
	storysvc "github.com/vjzest/PropCIDBack/internal/services/stories"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	sweeper    *sweeper.Sweeper
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, cfg, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	storyRepo := pgrepo.NewStoryRepo(pool)
	userRepo := pgrepo.NewUserRepo(pool)
	builderRepo := pgrepo.NewBuilderRepo(pool)

	storage := storysvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	storyService := storysvc.NewService(storyRepo, storage, storysvc.Config{
		TTL:           cfg.Stories.TTL,
		MaxUploadSize: cfg.Stories.MaxUploadSize,
		AuthorImage:   cfg.Stories.AuthorImage,
	}, log)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(userRepo, sessionRepo, jwtManager, cfg.Auth.SessionTTL)
	builderService := buildersvc.NewService(builderRepo, storage)

	storySweeper := sweeper.New(storyRepo, storage, cfg.Stories.SweepInterval, log)

	RegisterRoutes(r, Dependencies{
		AuthService:    authService,
		StoryService:   storyService,
		BuilderService: builderService,
		Logger:         log,
		Config:         cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		sweeper:    storySweeper,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// RunSweeper blocks until ctx is cancelled, removing expired stories on the
// configured interval.
func (a *App) RunSweeper(ctx context.Context) {
	a.sweeper.RunLoop(ctx)
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
