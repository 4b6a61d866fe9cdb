package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agorahq/agora/internal/database"
	"github.com/agorahq/agora/internal/notification"
	"github.com/agorahq/agora/internal/realtime"
	"github.com/agorahq/agora/internal/redis"
	"github.com/agorahq/agora/internal/rest"
	"github.com/agorahq/agora/internal/setup"
	"github.com/agorahq/agora/internal/setup/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// RESTLogDir specifies where REST server log files are stored.
const RESTLogDir = "logs/api_logs"

// Fallback server timeouts used when the config leaves them unset.
const (
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)

func main() {
	app, err := setup.InitializeApp(context.Background(), telemetry.ServiceAPI, RESTLogDir)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Cleanup(context.Background())

	if err := run(app); err != nil {
		app.Logger.Error("REST server exited with error", zap.Error(err))
	}
}

func run(app *setup.App) error {
	cfg := &app.Config.API

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	hub := realtime.NewHub(app.Logger)

	// With fanout enabled every instance publishes through redis and
	// forwards the bus into its local hub.
	var publisher realtime.Publisher = hub

	if cfg.Notification.RedisFanout {
		client, err := app.RedisManager.GetClient(redis.RealtimeDBIndex)
		if err != nil {
			return fmt.Errorf("failed to get realtime redis client: %w", err)
		}

		bus := realtime.NewBus(client, "", app.Logger)
		publisher = bus

		go func() {
			if err := bus.Forward(ctx, hub); err != nil {
				app.Logger.Error("Realtime bus stopped", zap.Error(err))
			}
		}()
	}

	dispatcher := notification.NewDispatcher(
		app.DB.Model().Notification(),
		publisher,
		notification.Config{
			QueueSize:    cfg.Notification.QueueSize,
			BatchSize:    cfg.Notification.BatchSize,
			TickInterval: cfg.Notification.TickInterval(),
		},
		notification.NewMetrics(registry),
		app.Logger,
	)

	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		dispatcher.Run(ctx)
	}()

	services := database.NewService(
		app.DB.DB(), app.DB.Model(), dispatcher, cfg.Notification.ReputationThrottle(), app.Logger,
	)

	handler, err := rest.NewServer(services, hub, registry, app.Logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to create REST server: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       seconds(cfg.Server.ReadTimeout, DefaultReadTimeout),
		ReadHeaderTimeout: seconds(cfg.Server.ReadTimeout, DefaultReadTimeout),
		WriteTimeout:      seconds(cfg.Server.WriteTimeout, DefaultWriteTimeout),
	}

	serverErr := make(chan error, 1)
	go func() {
		app.Logger.Info("REST server started", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
	case err := <-serverErr:
		cancel()
		<-dispatcherDone
		return fmt.Errorf("failed to serve: %w", err)
	}

	app.Logger.Info("Shutting down REST server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(), seconds(cfg.Server.ShutdownTimeout, DefaultShutdownTimeout),
	)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Stopping the dispatcher flushes whatever the last requests queued
	cancel()
	<-dispatcherDone

	app.Logger.Info("Server gracefully stopped")

	return nil
}

func seconds(value int, fallback time.Duration) time.Duration {
	if value <= 0 {
		return fallback
	}
	return time.Duration(value) * time.Second
}
