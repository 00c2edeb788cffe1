package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"blogsphere/docs"
	"blogsphere/internal/app"
	"blogsphere/internal/cache"
	"blogsphere/internal/config"
	"blogsphere/internal/db"
	"blogsphere/internal/logging"
	"blogsphere/internal/repository/memory"
	"blogsphere/internal/service"
	"blogsphere/internal/storage"
)

// @title Blog Platform API
// @version 1.0
// @description Blogging platform API with posts, threaded comments, an admin dashboard and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file")
	resetDB := pflag.Bool("reset-db", os.Getenv("RESET_DB") == "true", "drop all tables before migrating")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.New(os.Stderr, "error", "text").Error(context.Background(), "load config", "error", err)
		os.Exit(1)
	}

	format := "text"
	if cfg.Environment == config.EnvProduction {
		format = "json"
	}
	log := logging.New(os.Stdout, cfg.LogLevel, format)

	if err := run(cfg, log, *resetDB); err != nil {
		log.Error(context.Background(), "server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logging.Logger, resetDB bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg, log, resetDB)
	if err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		log.Warn(ctx, "redis unavailable, running without cache", "addr", cfg.RedisAddr, "error", err)
	}

	var assets service.AssetStorer
	if cfg.S3AccessKey != "" {
		uploader, err := storage.NewS3Uploader(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return err
		}
		assets = storage.NewAssetStore(uploader)
	} else {
		log.Warn(ctx, "S3_ACCESS_KEY not set, file uploads are disabled")
	}

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := app.New(app.Deps{
		Config: cfg,
		Logger: log,
		Cache:  cacheClient,
		Repos:  repos,
		Assets: assets,
	})

	addr := ":" + cfg.ServerPort
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "server listening", "addr", addr, "env", cfg.Environment, "db", cfg.DBDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openRepositories(ctx context.Context, cfg *config.Config, log logging.Logger, resetDB bool) (app.Repositories, error) {
	if cfg.DBDriver == "memory" {
		log.Warn(ctx, "using in-memory storage, data is lost on restart")
		return app.MemoryRepositories(memory.New()), nil
	}

	dsn := cfg.MySQLDSN
	if cfg.DBDriver == "postgres" {
		dsn = cfg.PostgresDSN
	}
	gormDB, err := db.Open(cfg.DBDriver, dsn, cfg.Debug())
	if err != nil {
		return app.Repositories{}, err
	}

	if resetDB {
		log.Warn(ctx, "dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			return app.Repositories{}, err
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		return app.Repositories{}, err
	}
	return app.SQLRepositories(gormDB), nil
}
