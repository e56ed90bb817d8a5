package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eegdesk/eegdesk/internal/config"
	"github.com/eegdesk/eegdesk/internal/domain/capacity"
	"github.com/eegdesk/eegdesk/internal/domain/order"
	"github.com/eegdesk/eegdesk/internal/domain/patient"
	"github.com/eegdesk/eegdesk/internal/domain/stats"
	"github.com/eegdesk/eegdesk/internal/platform/auth"
	"github.com/eegdesk/eegdesk/internal/platform/db"
	"github.com/eegdesk/eegdesk/internal/platform/importer"
	"github.com/eegdesk/eegdesk/internal/platform/middleware"
	"github.com/eegdesk/eegdesk/internal/platform/reporting"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "eegdesk-server",
		Short: "Pediatric EEG scheduling API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(importCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return withPool(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
				migrator := db.NewMigrator(pool, dir)
				count, err := migrator.Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Printf("Applied %d migration(s)\n", count)
				return nil
			})
		},
	}
	upCmd.Flags().String("dir", "migrations", "migrations directory")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			return withPool(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
				migrator := db.NewMigrator(pool, dir)
				statuses, err := migrator.Status(ctx)
				if err != nil {
					return err
				}
				for _, st := range statuses {
					state := "pending"
					if st.Applied {
						state = "applied"
					}
					fmt.Printf("%03d %-40s %s\n", st.Version, st.Name, state)
				}
				return nil
			})
		},
	}
	statusCmd.Flags().String("dir", "migrations", "migrations directory")

	cmd.AddCommand(upCmd)
	cmd.AddCommand(statusCmd)
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <backup.json>",
		Short: "Import a legacy backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

			return withPool(func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
				imp := importer.New(pool, patient.NewRepoPG(pool), order.NewRepoPG(pool), logger).
					WithBatchSize(cfg.ImportBatchSize).
					WithBatchPause(time.Duration(cfg.ImportBatchPauseMS) * time.Millisecond)

				sum, err := imp.Run(ctx, data)
				if err != nil {
					return err
				}
				fmt.Printf("Patients: %d created, %d errors\n", sum.PatientsCreated, sum.PatientErrors)
				fmt.Printf("Orders:   %d created, %d errors\n", sum.OrdersCreated, sum.OrderErrors)
				fmt.Printf("Batches:  %d\n", sum.Batches)
				for _, msg := range sum.Errors {
					fmt.Printf("  - %s\n", msg)
				}
				return nil
			})
		},
	}
	return cmd
}

// withPool loads config, opens a short-lived pool and runs fn with it.
// Used by the one-shot CLI commands.
func withPool(fn func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(ctx, cfg, pool)
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M", "32M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	if cfg.RequestTimeoutSecs > 0 {
		e.Use(middleware.RequestTimeout(time.Duration(cfg.RequestTimeoutSecs) * time.Second))
	}

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.JWTSigningKey),
		}))
	}

	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Repositories
	patientRepo := patient.NewRepoPG(pool)
	orderRepo := order.NewRepoPG(pool)
	capacityRepo := capacity.NewRepoPG(pool)
	statsRepo := stats.NewRepoPG(pool)

	// Services
	patientSvc := patient.NewService(patientRepo)
	capacitySvc := capacity.NewService(capacityRepo, orderRepo)
	orderSvc := order.NewService(orderRepo, patientSvc, capacitySvc)
	statsSvc := stats.NewService(statsRepo, patientSvc, capacitySvc)

	// Handlers
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	order.NewHandler(orderSvc).RegisterRoutes(apiV1)
	capacity.NewHandler(capacitySvc).RegisterRoutes(apiV1)
	stats.NewHandler(statsSvc).RegisterRoutes(apiV1)
	reporting.NewHandler(pool).RegisterRoutes(apiV1)

	imp := importer.New(pool, patientRepo, orderRepo, logger).
		WithBatchSize(cfg.ImportBatchSize).
		WithBatchPause(time.Duration(cfg.ImportBatchPauseMS) * time.Millisecond)
	importer.NewHandler(imp).RegisterRoutes(apiV1)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
