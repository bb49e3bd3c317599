package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	roulette "github.com/Ashenafi-pixel/simple-roulette"
	"github.com/Ashenafi-pixel/simple-roulette/auth"
	"github.com/Ashenafi-pixel/simple-roulette/config"
	"github.com/Ashenafi-pixel/simple-roulette/notify"
	"github.com/Ashenafi-pixel/simple-roulette/platform"
	"github.com/Ashenafi-pixel/simple-roulette/preset"
	"github.com/Ashenafi-pixel/simple-roulette/server"
	"github.com/Ashenafi-pixel/simple-roulette/spin"
	"github.com/Ashenafi-pixel/simple-roulette/wheel"
)

func main() {
	// .env in the working directory, then the project root
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if cfg.AppID == "" {
		logger.Error("APP_ID is not set; wallet sign-in will not identify this app")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := roulette.GetDB()
	if err != nil {
		return err
	}

	var (
		store   wheel.Store
		history spin.History
	)
	if db != nil {
		defer db.Close()
		store = wheel.NewSQLStore(db, "default")
		history = spin.NewSQLHistory(db)
		logger.Info("using database storage")
	} else {
		store = wheel.NewFileStore(cfg.DataDir)
		history = spin.NewResultsStore(cfg.DataDir)
		logger.Info("using file storage", "data_dir", cfg.DataDir)
	}

	w := wheel.New(nil)
	switch items, err := store.Load(ctx); {
	case err == nil:
		if err := w.Replace(items); err != nil {
			logger.Warn("saved wheel items rejected; using defaults", "error", err)
		}
	case errors.Is(err, wheel.ErrNoSavedItems):
	default:
		logger.Warn("failed to restore wheel items; using defaults", "error", err)
	}

	presets := preset.NewRegistry()
	if n, err := presets.LoadDir(cfg.PresetsDir); err != nil {
		logger.Warn("some preset files were skipped", "dir", cfg.PresetsDir, "loaded", n, "error", err)
	}
	if db != nil {
		if n, err := presets.LoadDB(ctx, db); err != nil {
			logger.Warn("some stored presets were skipped", "loaded", n, "error", err)
		}
	}

	gate := auth.NewGate(
		platform.NewClient(cfg.WalletBridgeURL, cfg.AppID, nil),
		auth.NewSessionStore(auth.NewKV(cfg.DataDir)),
		auth.GateConfig{
			Statement: cfg.AuthStatement,
			MaxAge:    cfg.SessionMaxAge,
			Logger:    logger,
		},
	)

	spinner := spin.NewSpinner(w, wheel.CryptoSource{}, spin.RealClock(), cfg.Spin, logger)
	defer spinner.Close()

	deps := server.Deps{
		Wheel:   w,
		Spinner: spinner,
		Gate:    gate,
		Store:   store,
		History: history,
		Presets: presets,
		DB:      db,
		Logger:  logger,
	}
	if cfg.WebhookURL != "" {
		deps.Notifier = notify.NewClient(cfg.WebhookURL, cfg.WebhookSecret)
	}
	return server.New(cfg, deps).Run(ctx)
}
