package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alexnjoya/mindlink/internal/catalog"
	"github.com/alexnjoya/mindlink/internal/config"
	"github.com/alexnjoya/mindlink/internal/database"
	"github.com/alexnjoya/mindlink/internal/handlers"
	"github.com/alexnjoya/mindlink/internal/logging"
	"github.com/alexnjoya/mindlink/internal/repository"
	"github.com/alexnjoya/mindlink/internal/security"
	"github.com/alexnjoya/mindlink/internal/service"
	"github.com/alexnjoya/mindlink/internal/store"
)

const sweepInterval = time.Hour

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("database connection established", zap.String("type", db.Dialect.Name()))

	if err := db.RunMigrations(ctx, database.MigrationsFS(cfg.MigrationsPath), logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	games, err := catalog.Load(cfg.GameCatalogPath)
	if err != nil {
		return err
	}
	logger.Info("game catalog loaded", zap.Int("games", len(games.List())))

	sessions, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer sessions.Close()

	reports, err := service.NewReportService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, logger)
	if err != nil {
		return err
	}

	// Initialize services
	repo := repository.NewGameSessionRepository(db)
	gameService := service.NewGameService(sessions, repo, games, reports, logger, newRand(cfg.RandomSeed), cfg.SessionTTL)
	statsService := service.NewStatsService(repo, time.UTC)

	var verifier *security.TokenVerifier
	if cfg.GuestMode() {
		logger.Warn("JWT_SECRET not set, running in guest mode")
	} else {
		verifier = security.NewTokenVerifier(cfg.JWTSecret)
	}
	// Session starts are limited to 30 per minute per IP
	limiter := security.NewRateLimiter(30, time.Minute)
	middleware := handlers.NewMiddleware(verifier, limiter, logger)

	handler := handlers.Routes(
		middleware,
		handlers.NewGameHandler(gameService, logger),
		handlers.NewStatsHandler(statsService, logger),
		handlers.NewStreamHandler(gameService, logger, cfg.AllowedOrigins),
		handlers.Health(db, logger),
	)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return limiter.Run(gctx, sweepInterval)
	})

	g.Go(func() error {
		return sweepSessions(gctx, gameService, logger)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openStore picks the live session store named by SESSION_STORE
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.SessionStore {
	case "redis":
		s, err := store.NewRedisStore(ctx, store.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.SessionTTL,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("using redis session store", zap.String("addr", cfg.RedisAddr))
		return s, nil
	case "memory", "":
		logger.Info("using in-memory session store")
		return store.NewMemoryStore(cfg.SessionTTL), nil
	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.SessionStore)
	}
}

// newRand seeds the engines' random source. A zero seed picks a random one.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// sweepSessions periodically expires live sessions and abandons stale records
func sweepSessions(ctx context.Context, games *service.GameService, logger *zap.Logger) error {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := games.Sweep(ctx); err != nil {
				logger.Error("error sweeping sessions", zap.Error(err))
			}
		}
	}
}
