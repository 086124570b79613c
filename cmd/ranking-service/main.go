package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang-stock-ranker/internal/ranker/config"
	delivery "golang-stock-ranker/internal/ranker/delivery/http"
	"golang-stock-ranker/internal/ranker/repository"
	"golang-stock-ranker/internal/ranker/service"
	"golang-stock-ranker/pkg/cache"
	"golang-stock-ranker/pkg/logger"
	"golang-stock-ranker/pkg/telegram"
	"golang-stock-ranker/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

var configPath string

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Runs one ranking pass and writes the table to the output directory",
	Run:   runRank,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the ranking API with scheduled refreshes",
	Run:   runServe,
}

type app struct {
	cfg        *config.Config
	log        *logger.Logger
	rankingSvc service.RankingService
}

func buildApp() *app {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// One store backs every collaborator so (symbol, params, source) keys
	// share a single TTL policy.
	store := cache.NewStore(cache.Config{
		TTL:             cfg.Cache.TTL,
		CleanupInterval: cfg.Cache.CleanupInterval,
	})

	marketData := repository.NewCachedMarketDataRepository(
		repository.NewYahooFinanceRepository(cfg, appLogger), store)
	fundamentals := repository.NewCachedFundamentalsRepository(
		repository.NewYahooFundamentalsRepository(cfg, appLogger), store)
	universe := repository.NewTickerUniverseRepository(appLogger)

	rankingSvc := service.NewRankingService(cfg, appLogger, marketData, fundamentals, universe)

	return &app{cfg: cfg, log: appLogger, rankingSvc: rankingSvc}
}

func runRank(cmd *cobra.Command, args []string) {
	a := buildApp()
	defer func() { _ = a.log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.log.Info("Starting ranking run", logger.StringField("name", a.cfg.App.Name))

	table, err := a.rankingSvc.Run(ctx)
	if err != nil {
		a.log.Fatal("Ranking run failed", logger.ErrorField(err))
	}

	if err := os.MkdirAll(a.cfg.Output.Dir, 0o755); err != nil {
		a.log.Fatal("Failed to create output directory", logger.ErrorField(err))
	}

	name := fmt.Sprintf("rankings_%s.%s", table.AsOf.Format("20060102"), a.cfg.Output.Format)
	path := filepath.Join(a.cfg.Output.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		a.log.Fatal("Failed to create output file", logger.ErrorField(err))
	}
	defer f.Close()

	switch a.cfg.Output.Format {
	case "json":
		err = service.WriteJSON(f, table, a.cfg.Ranking.MAWindows, a.cfg.Ranking.VMAWindows)
	default:
		err = service.WriteCSV(f, table, a.cfg.Ranking.MAWindows, a.cfg.Ranking.VMAWindows)
	}
	if err != nil {
		a.log.Fatal("Failed to write ranking table", logger.ErrorField(err))
	}

	a.log.Info("Ranking table written",
		logger.StringField("path", path),
		logger.IntField("rows", len(table.Rows)),
		logger.IntField("excluded", len(table.Exclusions)))

	if a.cfg.Telegram.Enabled {
		notifier, err := telegram.NewClient(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID)
		if err != nil {
			a.log.Error("Failed to initialize Telegram notifier", logger.ErrorField(err))
			return
		}
		for _, msg := range telegram.FormatRankingTable(table, a.cfg.Ranking.TopN) {
			if err := notifier.SendMessage(msg); err != nil {
				a.log.Error("Failed to send Telegram message", logger.ErrorField(err))
			}
		}
	}
}

func runServe(cmd *cobra.Command, args []string) {
	a := buildApp()
	defer func() { _ = a.log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.log.Info("Starting Ranking Service", logger.StringField("name", a.cfg.App.Name))

	// Build the first table in the background so the API comes up
	// immediately; it serves 503 until the run completes.
	utils.GoSafe(func() {
		if _, err := a.rankingSvc.Run(ctx); err != nil {
			a.log.Error("Initial ranking run failed", logger.ErrorField(err))
		}
	})

	var scheduler *service.RefreshScheduler
	if a.cfg.Scheduler.Enabled {
		scheduler = service.NewRefreshScheduler(a.cfg, a.log, a.rankingSvc)
		scheduler.Start(ctx)
	}

	e := echo.New()
	e.HideBanner = true

	rankingHandler := delivery.NewRankingHandler(a.cfg, a.rankingSvc, a.log)
	apiV1 := e.Group("/api/v1")
	rankingHandler.RegisterRoutes(apiV1.Group("/rankings"))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	go func() {
		addr := fmt.Sprintf(":%d", a.cfg.API.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			a.log.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-ctx.Done()
	a.log.Info("Shutting down ranking service...")

	if scheduler != nil {
		scheduler.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		a.log.Error("Server shutdown failed", logger.ErrorField(err))
	}
	a.log.Info("Ranking service stopped.")
}

func main() {
	rootCmd := &cobra.Command{Use: "ranking-service"}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing ranking-service CLI: %s\n", err)
		os.Exit(1)
	}
}
