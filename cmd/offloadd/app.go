package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mediakit/offload/internal/handlers"
	"github.com/mediakit/offload/internal/logger"
	"github.com/mediakit/offload/internal/mediaapi"
	"github.com/mediakit/offload/internal/repository"
	"github.com/mediakit/offload/internal/repository/postgres"
	"github.com/mediakit/offload/internal/service/auth"
	"github.com/mediakit/offload/internal/service/lifecycle"
	"github.com/mediakit/offload/internal/service/preset"
	"github.com/mediakit/offload/internal/service/resolver"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := repository.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Host size presets and offload mode
	presets, err := preset.Parse(c.Presets)
	if err != nil {
		return nil, fmt.Errorf("error while parsing size presets. Err: %w", err)
	}
	mode, err := lifecycle.ParseMode(c.OffloadMode)
	if err != nil {
		return nil, err
	}

	// Initialize media API client with its token cache
	apiConfig := mediaapi.Config{
		BaseURL:      c.APIBaseURL,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
	}
	tokenCache := mediaapi.NewTokenCache(apiConfig, logger)
	client := mediaapi.NewClient(apiConfig, tokenCache, logger)

	// Initialize services
	lifecycleService := lifecycle.NewService(
		lifecycle.Config{UploadRoot: c.UploadRoot, Mode: mode},
		client,
		storage,
		presets,
		logger,
	)
	urlResolver, err := resolver.New(
		resolver.Config{MediaBaseURL: c.MediaBaseURL, LocalBaseURL: c.LocalBaseURL},
		presets,
	)
	if err != nil {
		return nil, err
	}
	tokenManager, err := auth.New(auth.Config{SecretKey: c.SecretKey})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	mux := handlers.NewRouter(
		lifecycleService,
		storage.Asset(),
		urlResolver,
		tokenManager,
		logger,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
