// Command server runs the trading terminal backend: the order-entry core,
// the dashboard views and the live market-data feed behind one HTTP API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantdesk/terminal/internal/clients/platform"
	"github.com/quantdesk/terminal/internal/config"
	"github.com/quantdesk/terminal/internal/database"
	"github.com/quantdesk/terminal/internal/events"
	"github.com/quantdesk/terminal/internal/marketdata"
	"github.com/quantdesk/terminal/internal/modules/backtest"
	"github.com/quantdesk/terminal/internal/modules/options"
	"github.com/quantdesk/terminal/internal/modules/orders"
	"github.com/quantdesk/terminal/internal/modules/portfolio"
	"github.com/quantdesk/terminal/internal/modules/social"
	"github.com/quantdesk/terminal/internal/modules/ticker"
	"github.com/quantdesk/terminal/internal/scheduler"
	"github.com/quantdesk/terminal/internal/server"
	"github.com/quantdesk/terminal/pkg/logger"
)

// shutdownTimeout bounds the graceful drain on exit.
const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info"})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.DevMode})
	logger.SetGlobalLogger(log)

	log.Info().Int("port", cfg.Port).Bool("dev_mode", cfg.DevMode).Msg("Starting trading terminal")

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("Failed to create data directory")
	}

	db, err := database.New(cfg.DatabasePath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	bus := events.NewBus(log)
	client := platform.NewClient(cfg.BackendURL, log)

	// Order-entry core. A backend failure here degrades to an empty (or
	// cached) registry; the hourly refresh job heals it.
	registry := orders.NewRegistry(
		orders.NewPlatformTypeLoader(client),
		orders.NewSQLDescriptorCache(db.Conn(), log),
		log,
	)
	bootCtx, cancelBoot := context.WithTimeout(context.Background(), time.Minute)
	if err := registry.Load(bootCtx); err != nil {
		log.Warn().Err(err).Msg("Initial registry load failed")
	}
	cancelBoot()

	orderRepo := orders.NewOrderRepository(db.Conn(), log)
	orderService := orders.NewService(client, registry, orderRepo, bus, cfg.UserID, log)

	// Live market data.
	feed := marketdata.NewFeed(cfg.BackendWSURL, bus, log)
	if err := feed.Start(); err != nil {
		log.Warn().Err(err).Msg("Market data feed not connected yet")
	}
	defer feed.Stop()

	// Background maintenance.
	jobs := scheduler.New(log)
	if err := jobs.Register(scheduler.RegistryRefreshSpec, scheduler.NewRegistryRefreshJob(registry, bus, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register registry refresh job")
	}
	if err := jobs.Register(scheduler.TickCleanupSpec, scheduler.NewTickCleanupJob(feed, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register tick cleanup job")
	}
	jobs.Start()
	defer jobs.Stop()

	riskDefaults := orders.RiskDefaults{
		RiskPercent:         cfg.RiskPercent,
		ProbabilityOfProfit: cfg.ProbabilityOfProfit,
	}

	modules := server.Modules{
		Orders:    orders.NewHandlers(orderService, orderRepo, riskDefaults, log),
		Backtests: backtest.NewHandlers(backtest.NewService(client, log), log),
		Options:   options.NewHandlers(options.NewService(client, log), log),
		Portfolio: portfolio.NewHandlers(portfolio.NewService(client, log), log),
		Social:    social.NewHandlers(social.NewService(client, log), log),
		Ticker:    ticker.NewHandlers(ticker.NewService(client, feed, log), log),
	}

	srv := server.New(
		cfg,
		modules,
		server.NewSystemHandler(client, feed, log),
		server.NewStreamHandler(bus, log),
		log,
	)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
