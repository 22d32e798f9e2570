package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/FlameWater5625/TravelleroTralala/config"
	"github.com/FlameWater5625/TravelleroTralala/database"
	"github.com/FlameWater5625/TravelleroTralala/handlers"
	"github.com/FlameWater5625/TravelleroTralala/identity"
	"github.com/FlameWater5625/TravelleroTralala/middleware"
	"github.com/FlameWater5625/TravelleroTralala/services"
)

const Version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "travellero",
		Short:         "TravelleroTralala trip planning API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("travellero version %s\n", Version)
		},
	})

	return cmd
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

func migrate(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	db, err := database.Open(ctx, cfg.DatabaseURL, 10)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info("migrations applied")
	return nil
}

func serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	db, err := database.Open(ctx, cfg.DatabaseURL, 10)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info("database ready")

	verifier, err := identity.NewFirebaseVerifier(ctx, cfg.Firebase.CredentialsFile, cfg.Firebase.ProjectID)
	if err != nil {
		return err
	}

	amadeus := services.NewAmadeusClient(cfg.Amadeus.ClientID, cfg.Amadeus.ClientSecret, cfg.Amadeus.BaseURL)
	if !amadeus.Configured() {
		logger.Warn("Amadeus credentials missing, hotels and flights will be absent")
	}
	if cfg.Weather.APIKey == "" {
		logger.Warn("OPENWEATHER_API_KEY missing, weather will be absent")
	}
	if cfg.HuggingFace.APIKey == "" {
		logger.Warn("HUGGINGFACE_API_KEY missing, activities will be absent")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	aggregator := services.NewAggregator(services.Providers{
		Weather:         services.NewWeatherClient(cfg.Weather.APIKey, cfg.Weather.BaseURL),
		Recommendations: services.NewAIClient(cfg.HuggingFace.APIKey, cfg.HuggingFace.Model, cfg.HuggingFace.BaseURL),
		Hotels:          amadeus,
		Flights:         amadeus,
	}, services.AggregatorOptions{
		DefaultOrigin:    cfg.Planner.DefaultOrigin,
		HotelBudgetShare: cfg.Planner.HotelBudgetShare,
		Timeout:          cfg.Planner.ProviderTimeout,
	}, logger, services.NewMetrics(reg))

	h := handlers.New(database.NewItineraryStore(db), aggregator, db, logger)
	router := handlers.NewRouter(h, middleware.RequireIdentity(verifier), handlers.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Planner.ProviderTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
