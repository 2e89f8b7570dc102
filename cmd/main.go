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

	"github.com/Dosada05/league-simulator/brackets"
	"github.com/Dosada05/league-simulator/calculators"
	"github.com/Dosada05/league-simulator/config"
	"github.com/Dosada05/league-simulator/db"
	"github.com/Dosada05/league-simulator/handlers"
	"github.com/Dosada05/league-simulator/metrics"
	"github.com/Dosada05/league-simulator/random"
	"github.com/Dosada05/league-simulator/repositories"
	api "github.com/Dosada05/league-simulator/routes"
	"github.com/Dosada05/league-simulator/services"
	"github.com/Dosada05/league-simulator/storage"
	"github.com/go-chi/chi/v5"
)

const (
	demoTeams          = 34
	demoPlayersPerTeam = 18
	shutdownTimeout    = 15 * time.Second
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}

func run(logger *slog.Logger) error {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("calculator_profile", cfg.CalculatorProfile))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Хранилище: Postgres или память
	var store repositories.Store
	if cfg.DatabaseURL != "" {
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			} else {
				logger.Info("database connection closed")
			}
		}()
		if err := db.Migrate(ctx, dbConn); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
		store = repositories.NewPostgresStore(dbConn)
		logger.Info("database connection established")
	} else {
		store = repositories.NewMemoryStore()
		logger.Warn("DATABASE_URL not set, using in-memory store")
	}

	profile, err := calculators.LoadProfile(cfg.CalculatorProfilesPath, cfg.CalculatorProfile)
	if err != nil {
		return err
	}
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("calculator profile %q: %w", cfg.CalculatorProfile, err)
	}
	calc := calculators.NewBundle(profile)

	src := random.New()
	if cfg.HasRandomSeed {
		src = random.NewSeeded(cfg.RandomSeed)
		logger.Info("deterministic random source", slog.Uint64("seed", cfg.RandomSeed))
	}

	// Архив сезонов (Cloudflare R2), если настроен
	var archiver services.SeasonArchiver
	r2 := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
		Endpoint:        cfg.R2Endpoint,
	}
	if r2.Enabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, r2)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		archiver = storage.NewSeasonArchiver(uploader)
		logger.Info("season archive enabled", slog.String("bucket", cfg.R2BucketName))
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)

	recorder := metrics.NewRecorder()

	// Инициализация сервисов
	seasonService := services.NewSeasonService(store, nil, src, logger)
	authService := services.NewAuthService(store)
	matchService := services.NewMatchService(
		store,
		calc,
		src,
		services.NewPostRoundProcessor(calc, src, logger),
		services.NewPostSeasonProcessor(calc, src, nil, logger),
		wsHub,
		archiver,
		recorder,
		logger,
	)

	if err := prepareLeague(ctx, store, seasonService, cfg.SeedOnEmpty, logger); err != nil {
		return err
	}

	if cfg.AutoPlayInterval > 0 {
		go autoPlay(ctx, matchService, cfg.AutoPlayInterval, logger)
	}

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		handlers.NewSeasonHandler(seasonService),
		handlers.NewMatchHandler(matchService),
		handlers.NewWebSocketHandler(wsHub, logger),
		recorder.Handler(),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
	if err := server.Shutdown(shutdownCtx); err != nil {
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("failed to force close server", slog.Any("error", closeErr))
		}
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server shutdown complete")
	return nil
}

// prepareLeague bootstraps the first season when the store has none, seeding
// demo teams first when asked to and the store is empty.
func prepareLeague(ctx context.Context, store repositories.Store, seasons services.SeasonService, seedOnEmpty bool, logger *slog.Logger) error {
	clock, err := seasons.Clock(ctx)
	if err == nil {
		logger.Info("league loaded", slog.Int("season", clock.Season), slog.Int("round", clock.Round))
		return nil
	}
	if !errors.Is(err, services.ErrSeasonNotInitialised) {
		return err
	}

	teams, err := store.Repos().Teams.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list teams: %w", err)
	}
	if len(teams) == 0 {
		if !seedOnEmpty {
			logger.Warn("store is empty and SEED_ON_EMPTY is off, league not bootstrapped")
			return nil
		}
		if err := seasons.SeedDemoLeague(ctx, demoTeams, demoPlayersPerTeam); err != nil {
			return err
		}
	}
	if _, err := seasons.Bootstrap(ctx); err != nil {
		return fmt.Errorf("failed to bootstrap league: %w", err)
	}
	return nil
}

// autoPlay plays a round every interval. Rounds waiting on a manager stay
// paused until the manager answers.
func autoPlay(ctx context.Context, matches services.MatchService, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Info("round scheduler started", slog.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := matches.PlayRound(ctx)
			switch {
			case err != nil:
				logger.Error("scheduler: round failed", slog.Any("error", err))
			case !res.Finished:
				logger.Info("scheduler: round waiting on managers", slog.Int("pauses", len(res.Pauses)))
			default:
				logger.Info("scheduler: round played", slog.Int("season", res.Clock.Season), slog.Int("round", res.Clock.Round))
			}
		}
	}
}
