// Package server runs the journal daemon: the HTTP API with the recording
// websocket, and the gRPC health service. It handles graceful shutdown on
// SIGINT, SIGTERM and SIGQUIT.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/rooznegar/internal/bootstrap"
	"github.com/dmitrijs2005/rooznegar/internal/config"
	"github.com/dmitrijs2005/rooznegar/internal/logging"
	"github.com/dmitrijs2005/rooznegar/internal/server/auth"
	gs "github.com/dmitrijs2005/rooznegar/internal/server/grpc"
	hs "github.com/dmitrijs2005/rooznegar/internal/server/handler/http"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	services *bootstrap.Services
	handler  http.Handler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	services, err := bootstrap.Build(ctx, c, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("app init error: %w", err)
	}
	return newApp(c, services), nil
}

func newApp(c *config.Config, services *bootstrap.Services) *App {
	logger := services.Logger.With("module", "app")
	issuer := auth.NewIssuer(auth.DefaultValidity)

	router := hs.NewRouter(
		&hs.SessionHandler{Session: services.Gate, Tokens: issuer},
		&hs.EntryHandler{
			Entries:     services.Entries,
			Archiver:    services.Archiver,
			Location:    c.Location(),
			Suggestions: services.Vocabulary.Tags(),
		},
		&hs.RecordHandler{
			Tokens:    issuer,
			Recorders: services.Recorder,
			Pipeline:  services.Pipeline,
			Logger:    services.Logger.With("module", "record"),
		},
		issuer,
		services.Logger.With("module", "http"),
	)

	return &App{config: c, logger: logger, services: services, handler: router}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "HTTP shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.HealthAddr, app.logger, app.services.Storage.DB())
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a signal arrives or a server fails,
// then releases storage.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return app.services.Close()
}
