package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/clinic-admin/patient-service/internal/auth"
	"github.com/clinic-admin/patient-service/internal/config"
	"github.com/clinic-admin/patient-service/internal/db"
	httpserver "github.com/clinic-admin/patient-service/internal/http"
	"github.com/clinic-admin/patient-service/internal/logger"
	"github.com/clinic-admin/patient-service/internal/messaging"
	"github.com/clinic-admin/patient-service/internal/metrics"
	"github.com/clinic-admin/patient-service/internal/patient"
	"github.com/clinic-admin/patient-service/internal/telemetry"
	"github.com/clinic-admin/patient-service/internal/web"
)

func main() {
	logger.SetupDefault(os.Stdout, os.Getenv("LOG_LEVEL"))

	if err := run(); err != nil {
		slog.Error("patient-service stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.PathFromEnv())
	if err != nil {
		return err
	}

	ctx := context.Background()

	provider, err := telemetry.InitProvider(ctx, telemetry.LoadConfig())
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to shut down telemetry", slog.Any("error", err))
		}
	}()

	otelMetrics, err := telemetry.InitMetrics()
	if err != nil {
		return err
	}

	database, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close()

	// The app starts without the database; requests report the outage.
	if err := db.Ping(ctx, database, 5*time.Second); err != nil {
		slog.Warn("database not reachable at startup", slog.Any("error", err))
	}

	var publisher messaging.PublisherInterface
	if cfg.Messaging.RabbitMQURL != "" {
		p, err := messaging.NewPublisher(cfg.Messaging.RabbitMQURL)
		if err != nil {
			slog.Warn("RabbitMQ unavailable, events will not be published", slog.Any("error", err))
		} else {
			defer p.Close()
			publisher = p
		}
	} else {
		slog.Info("RABBITMQ_URL not set, events will not be published")
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	service := patient.NewService(patient.NewRepository(database), publisher, otelMetrics)

	router := httpserver.SetupRouter(httpserver.RouterDeps{
		DB:       database,
		Patients: service,
		Renderer: renderer,
		Sessions: auth.NewSessionStore(auth.SessionConfig{
			Secret:       []byte(cfg.Session.Secret),
			MaxAge:       cfg.Session.MaxAge,
			CookieSecure: cfg.Session.CookieSecure,
		}),
		Credentials: auth.Credentials{Username: cfg.Auth.Username, Password: cfg.Auth.Password},
		Metrics:     otelMetrics,
		HTTPMetrics: metrics.NewCollector(registry),
		Gatherer:    registry,
		Logger:      slog.Default(),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("patient-service starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	slog.Info("shutting down patient-service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("patient-service stopped gracefully")
	return nil
}
