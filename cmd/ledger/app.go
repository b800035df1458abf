package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nkiryanov/ledger/internal/db"
	"github.com/nkiryanov/ledger/internal/handlers"
	"github.com/nkiryanov/ledger/internal/logger"
	"github.com/nkiryanov/ledger/internal/repository"
	"github.com/nkiryanov/ledger/internal/repository/memory"
	"github.com/nkiryanov/ledger/internal/repository/postgres"
	"github.com/nkiryanov/ledger/internal/service/account"
	"github.com/nkiryanov/ledger/internal/service/transfer"
)

type ServerApp struct {
	ListenAddr      string
	Handler         http.Handler
	ShutdownTimeout time.Duration

	logger logger.Logger
	close  func()
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Initialize storage: postgres if configured, memory otherwise
	var storage repository.Storage
	closeStorage := func() {}

	switch c.DatabaseDSN {
	case "":
		logger.Warn("Database is not configured, ledger is kept in memory and will be lost on stop")
		storage = memory.NewStorage()
	default:
		pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
		}
		storage = postgres.NewStorage(pool, postgres.WithLockTimeout(c.LockTimeout))
		closeStorage = pool.Close
	}

	// Initialize services
	accountService := account.NewService(storage, logger.With("service", "account"))
	transferEngine := transfer.NewEngine(storage, logger.With("service", "transfer"))

	mux := handlers.NewRouter(
		accountService,
		transferEngine,
		logger,
		handlers.RouterConfig{CORSOrigin: c.CORSOrigin},
	)

	return &ServerApp{
		ListenAddr:      c.ListenAddr,
		Handler:         mux,
		ShutdownTimeout: c.ShutdownTimeout,
		logger:          logger,
		close:           closeStorage,
	}, nil
}

// Close releases storage resources
func (s *ServerApp) Close() {
	s.close()
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          s.logger.StdLogger(),
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
