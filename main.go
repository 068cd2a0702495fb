package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"mission-console/config"
	"mission-console/handlers"
	"mission-console/middleware"
	"mission-console/services"
	"mission-console/utils"
	"mission-console/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "console",
	Short: "Mission console: local progress with a shared commander mesh",
	Long: `Mission console keeps a device's mission progress in local storage and
reconciles it with a shared leaderboard document (the mesh).

Running without a subcommand starts the HTTP API (same as 'console serve').`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if logger, err = utils.NewLogger(cfg.LogDebug); err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the mesh sync worker",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, statusCmd, meshCmd, resetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openProgressStore()
	if err != nil {
		return err
	}
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}
	meshStore, err := newMeshStore(ctx)
	if err != nil {
		return err
	}

	console := services.NewConsole(catalog, store, meshStore, logger, services.ConsoleOptions{
		Ambient:            services.NewRandomAmbient(time.Now().UnixNano()),
		AmbientCompetitors: cfg.AmbientCompetitors,
	})
	worker := workers.NewMeshSyncWorker(ctx, console, logger, cfg.Mesh.SyncInterval, cfg.Mesh.AmbientInterval)
	console.SetScheduler(worker)
	console.Resume(ctx)

	app := fiber.New(fiber.Config{
		AppName:               "mission-console",
		DisableStartupMessage: true,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Cache-Control",
		AllowCredentials: !containsWildcard(cfg.AllowedOrigins),
		MaxAge:           86400,
	}))
	app.Use(middleware.ConsoleTokenMiddleware(cfg.ConsoleToken, logger))
	handlers.SetupRoutes(app, console, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.ListenAddr)
	}()

	logger.Info("✅ Server running",
		zap.String("addr", cfg.ListenAddr),
		zap.String("mesh_backend", cfg.Mesh.Backend),
		zap.Strings("origins", cfg.AllowedOrigins))

	select {
	case err := <-errCh:
		_ = worker.Stop()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	if err := worker.Stop(); err != nil {
		logger.Warn("⚠️ failed to stop sync worker", zap.Error(err))
	}
	return app.ShutdownWithTimeout(5 * time.Second)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func openProgressStore() (*services.ProgressStore, error) {
	db, err := utils.OpenDB(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	kv, err := services.NewGormKeyValueStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate local storage: %w", err)
	}
	store := services.NewProgressStore(kv, logger)
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load local progress: %w", err)
	}
	return store, nil
}

func loadCatalog() (*services.Catalog, error) {
	if cfg.CatalogPath == "" {
		return services.DefaultCatalog(), nil
	}
	catalog, err := services.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", cfg.CatalogPath, err)
	}
	logger.Info("📚 catalog loaded", zap.String("path", cfg.CatalogPath), zap.Int("worlds", len(catalog.Worlds())))
	return catalog, nil
}

func newMeshStore(ctx context.Context) (services.MeshStore, error) {
	switch cfg.Mesh.Backend {
	case "http":
		return services.NewHTTPMeshStore(cfg.Mesh.URL, utils.NewHTTPClient(cfg.Mesh.Timeout)), nil
	case "r2":
		client, err := utils.NewR2Client(ctx, cfg.Mesh)
		if err != nil {
			return nil, err
		}
		return services.NewR2MeshStore(client, cfg.Mesh.Bucket, cfg.Mesh.ObjectKey), nil
	default:
		logger.Warn("⚠️ MESH_BACKEND=none, leaderboard is local-only")
		return services.NewMemoryMeshStore(), nil
	}
}
