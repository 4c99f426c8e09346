package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/clinic-admin/patient-service/internal/config"
	"github.com/clinic-admin/patient-service/internal/db"
	"github.com/clinic-admin/patient-service/internal/logger"
	"github.com/clinic-admin/patient-service/internal/patient"
)

func main() {
	out := flag.String("out", patient.ExportFilename, "path of the xlsx file to write")
	timeout := flag.Duration("timeout", 10*time.Minute, "maximum time for the export")
	flag.Parse()

	logger.SetupDefault(os.Stdout, os.Getenv("LOG_LEVEL"))
	slog.Info("patient export job starting", slog.String("out", *out))

	cfg, err := config.Load(config.PathFromEnv())
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	database, err := db.Connect(cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// Offline copy, no events or metrics.
	service := patient.NewService(patient.NewRepository(database), nil, nil)

	wb, err := service.ExportPatients(ctx)
	if err != nil {
		slog.Error("export failed", slog.Any("error", err))
		os.Exit(1)
	}

	if err := os.WriteFile(*out, wb.Data, 0o644); err != nil {
		slog.Error("failed to write export", slog.String("out", *out), slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("patient export job finished", slog.String("out", *out), slog.Int("rows", wb.Rows))
}
