package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"opscurator/internal/api"
	"opscurator/internal/auth"
	"opscurator/internal/catalog"
	"opscurator/internal/config"
	"opscurator/internal/domain"
	"opscurator/internal/executor"
	"opscurator/internal/hosted"
	"opscurator/internal/logging"
	"opscurator/internal/repository"
	"opscurator/internal/service"
	"opscurator/internal/session"
)

const sessionGCInterval = 10 * time.Minute

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func loadCatalog(dir string) ([]*domain.Lab, error) {
	if dir == "" {
		return catalog.LoadEmbedded()
	}
	return catalog.Load(dir)
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// 1. infrastructure
	repo, err := repository.NewSQLiteRepository(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to open sqlite repository: %w", err)
	}
	defer repo.Close()

	var sessions *session.Store
	if cfg.Sessions.Dir == "" {
		sessions, err = session.OpenInMemory(logger)
	} else {
		sessions, err = session.Open(cfg.Sessions.Dir, logger)
	}
	if err != nil {
		return err
	}
	defer sessions.Close()

	secret := cfg.Sessions.Secret
	if secret == "" {
		if secret, err = auth.RandomSecret(); err != nil {
			return err
		}
		logger.Warn("no session secret configured; issued tokens will not survive a restart")
	}
	tokens := auth.NewTokenIssuer(secret, cfg.GetTokenTTL())

	var mirror service.ProfileMirror
	if cfg.Hosted.Enabled {
		client, err := hosted.NewClient(hosted.Config{
			URL:     cfg.Hosted.URL,
			APIKey:  cfg.Hosted.APIKey,
			Table:   cfg.Hosted.Table,
			Timeout: cfg.GetHostedTimeout(),
		}, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		mirror = service.NewMirrorMonitor(client)
		logger.Info("hosted profile mirror enabled", zap.String("url", cfg.Hosted.URL))
	}

	exec := executor.NewPatternExecutor(cfg.GetRunDelay(), logger)

	// 2. services
	labSvc := service.NewLabService(repo, exec, mirror, logger)
	labs, err := loadCatalog(cfg.Catalog.Dir)
	if err != nil {
		return err
	}
	if err := labSvc.SeedCatalog(ctx, labs); err != nil {
		return err
	}

	handler := api.NewHandler(api.Services{
		Auth:      service.NewAuthService(repo, sessions, tokens, mirror, cfg.Auth.AdminEmails, cfg.Auth.BcryptCost, logger),
		Labs:      labSvc,
		Progress:  service.NewProgressService(repo, mirror, logger),
		Community: service.NewCommunityService(repo, logger),
		Admin:     service.NewAdminService(repo),
		Health:    service.NewHealthService(repo, mirror, filepath.Dir(cfg.Database.Path)),
	}, cfg.Server.AllowedOrigins, logger)

	// 3. web server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(api.RequestLogger(logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	api.RegisterRoutes(e, handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api server listening", zap.String("address", cfg.Server.Address))
		if err := e.Start(cfg.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("echo server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return sessions.RunGC(gctx, sessionGCInterval)
	})

	return g.Wait()
}
