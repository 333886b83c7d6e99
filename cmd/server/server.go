package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

const readHeaderTimeout = 10 * time.Second

// startHTTPServer serves router until ctx is done or the listener fails,
// then runs shutdown.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", app.config.Server.Port))
	if err != nil {
		app.shutdown(nil)
		return fmt.Errorf("failed to listen: %w", err)
	}
	return app.serve(ctx, listener, router)
}

func (app *application) serve(ctx context.Context, listener net.Listener, router http.Handler) error {
	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", "addr", listener.Addr().String())
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		app.logger.Info("shutting down server...")
	case err := <-serveErr:
		if err != nil {
			app.logger.Error("server failed", "error", err)
			runErr = err
		}
	}

	if err := app.shutdown(server); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// shutdown stops HTTP, then cron, then the worker, then closes the
// database, all within the configured shutdown timeout. Tasks still queued
// are dropped.
func (app *application) shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout())
	defer cancel()

	var errs []error

	if server != nil {
		if err := server.Shutdown(ctx); err != nil {
			app.logger.Error("server shutdown failed", "error", err)
			errs = append(errs, fmt.Errorf("server shutdown failed: %w", err))
		}
	}

	if app.scheduler != nil {
		if err := app.scheduler.Stop(ctx); err != nil {
			app.logger.Warn("scheduler shutdown incomplete", "error", err)
			errs = append(errs, err)
		}
	}

	if app.worker != nil {
		stopped := make(chan struct{})
		go func() {
			app.worker.Stop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			app.logger.Warn("background task still running at shutdown deadline")
			errs = append(errs, fmt.Errorf("worker did not stop in time: %w", ctx.Err()))
		}
	}
	if app.queue != nil {
		app.queue.Close()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
	return errors.Join(errs...)
}
