package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shayanv/portefeuille/internal/clients/yahoo"
	"github.com/shayanv/portefeuille/internal/config"
	"github.com/shayanv/portefeuille/internal/database"
	"github.com/shayanv/portefeuille/internal/modules/history"
	"github.com/shayanv/portefeuille/internal/modules/holdings"
	"github.com/shayanv/portefeuille/internal/modules/projection"
	"github.com/shayanv/portefeuille/internal/modules/risk"
	"github.com/shayanv/portefeuille/internal/scheduler"
	"github.com/shayanv/portefeuille/internal/server"
	"github.com/shayanv/portefeuille/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info"})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("holdings", cfg.HoldingsPath).Msg("Starting portfolio risk service")

	// The holdings file is foundational input: a malformed line is fatal,
	// with every bad line reported at once.
	positions, err := holdings.ParseFile(cfg.HoldingsPath)
	if err != nil {
		var parseErrs holdings.ParseErrors
		if errors.As(err, &parseErrs) {
			for _, pe := range parseErrs {
				log.Error().Int("line", pe.Line).Str("raw", pe.Raw).Err(pe.Err).Msg("Invalid holdings line")
			}
		}
		log.Fatal().Err(err).Msg("Failed to parse holdings file")
	}
	log.Info().Int("positions", len(positions)).Msg("Holdings loaded")

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Wire the quantitative pipeline
	quotes := yahoo.NewClient(cfg.FetchTimeout, log)
	cache := history.NewCache(db.Conn(), log)
	provider := history.NewProvider(quotes, cache, log)

	holdingsService := holdings.NewService(quotes, log)
	riskService := risk.NewService(provider, risk.Config{LookbackDays: cfg.LookbackDays}, log)
	projectionEngine := projection.NewEngine(projection.Config{
		Simulations:  cfg.Simulations,
		HorizonYears: cfg.HorizonYears,
	}, nil, log)

	// Nightly cache refresh after European close
	sched := scheduler.New(log)
	tickers := make([]string, 0, len(positions))
	for _, pos := range positions {
		tickers = append(tickers, pos.Ticker)
	}
	refreshJob := history.NewRefreshJob(provider, tickers, cfg.LookbackDays, 10*time.Minute, log)
	if err := sched.AddJob("30 22 * * MON-FRI", refreshJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register refresh job")
	}
	sched.Start()
	defer sched.Stop()

	// Warm the cache in the background so the first risk request does not
	// pay for every fetch.
	go func() {
		if err := sched.RunNow(refreshJob); err != nil {
			log.Warn().Err(err).Msg("Initial cache warm-up failed")
		}
	}()

	srv := server.New(server.Config{
		Port:       cfg.Port,
		Log:        log,
		Cfg:        cfg,
		Positions:  positions,
		Holdings:   holdingsService,
		Risk:       riskService,
		Projection: projectionEngine,
		DevMode:    cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
