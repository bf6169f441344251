package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/accounts"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/auth"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/config"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/http/handlers"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/metrics"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/middleware"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/notify"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/server"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage/postgres"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage/sqlite"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/uploads"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/pkg/logging"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		logging.Setup()
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))
	logger := slog.Default()

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("init database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	m := metrics.New()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	notifier := notify.NewNotifier(newMailer(cfg, logger), newAlerter(cfg, logger), m, logger, cfg.PublicBaseURL)
	accountService := accounts.NewService(store, tokens, notifier, logger)

	if cfg.Admin.Enabled() {
		acct, created, err := accountService.BootstrapAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password)
		switch {
		case err != nil:
			logger.Error("bootstrap admin", "error", err)
		case created:
			logger.Info("created admin account", "username", acct.Username)
		}
	}

	deps := &handlers.Deps{
		Store:         store,
		Accounts:      accountService,
		Tokens:        tokens,
		Notifier:      notifier,
		Uploads:       uploads.New(cfg.UploadDir),
		Guard:         middleware.NewGuard(tokens, store, cfg.CookieSecure, logger),
		Logger:        logger,
		SecureCookies: cfg.CookieSecure,
	}
	if cfg.Google.Enabled() {
		deps.Google = auth.NewGoogleProvider(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
	}
	srv := server.New(cfg, deps, m)

	go func() {
		logger.Info("mess manager listening", "addr", cfg.HTTPAddress())
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("graceful shutdown error", "error", err)
	}
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	driver, dsn, err := cfg.DatabaseDriver()
	if err != nil {
		return nil, err
	}
	switch driver {
	case "postgres":
		s, err := postgres.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := sqlite.New(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

func newMailer(cfg config.Config, logger *slog.Logger) notify.Mailer {
	if !cfg.SMTP.Enabled() {
		logger.Warn("SMTP_HOST not set; emails will only be logged")
		return notify.LogMailer{Logger: logger}
	}
	return notify.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
}

func newAlerter(cfg config.Config, logger *slog.Logger) notify.Alerter {
	if !cfg.TelegramEnabled() {
		return nil
	}
	alerter, err := notify.NewTelegramAlerter(cfg.TelegramBotToken, cfg.TelegramAdminChatID)
	if err != nil {
		logger.Warn("telegram alerts disabled", "error", err)
		return nil
	}
	return alerter
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found; relying on existing environment")
	}
}
