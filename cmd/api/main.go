package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/nfseaudit/internal/audit"
	"github.com/MrJamesThe3rd/nfseaudit/internal/config"
	"github.com/MrJamesThe3rd/nfseaudit/internal/database"
	"github.com/MrJamesThe3rd/nfseaudit/internal/document"
	documentStore "github.com/MrJamesThe3rd/nfseaudit/internal/document/store"
	"github.com/MrJamesThe3rd/nfseaudit/internal/export"
	auditHttp "github.com/MrJamesThe3rd/nfseaudit/internal/http"
	auditHandler "github.com/MrJamesThe3rd/nfseaudit/internal/http/audit"
	documentHandler "github.com/MrJamesThe3rd/nfseaudit/internal/http/document"
	sequenceHandler "github.com/MrJamesThe3rd/nfseaudit/internal/http/sequence"
	"github.com/MrJamesThe3rd/nfseaudit/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Setup(os.Stdout, cfg.App.LogLevel, cfg.App.LogFormat)

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	var (
		auditService    = audit.NewService(cfg.Audit.Workers).WithGapLimit(cfg.Audit.GapLimit)
		documentService = document.NewService(documentStore.New(db))
		exportService   = export.NewService()
	)

	var (
		auditH    = auditHandler.NewHandler(auditService, exportService, cfg.RateTableNamed, cfg.Server.MaxUploadSize)
		sequenceH = sequenceHandler.NewHandler(cfg.Audit.GapLimit, cfg.Server.MaxUploadSize)
		documentH = documentHandler.NewHandler(documentService, auditService, cfg.RateTableNamed, cfg.Server.MaxUploadSize)
	)

	router := auditHttp.New(auditHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		JWTSecret:      cfg.Auth.JWTSecret,
	}, auditH, sequenceH, documentH)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	slog.Info("starting server", "port", server.Addr, "rate_table", cfg.Audit.RateTable)

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
