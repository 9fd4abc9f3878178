package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/go-ordered-list/api"
	"github.com/gcbaptista/go-ordered-list/config"
	"github.com/gcbaptista/go-ordered-list/internal/engine"
	"github.com/gcbaptista/go-ordered-list/internal/logging"
	"github.com/gcbaptista/go-ordered-list/internal/metrics"
	"github.com/gcbaptista/go-ordered-list/store"
)

const version = "1.0.0"

func main() {
	// Define command-line flags
	var (
		help       = flag.Bool("help", false, "Show help message")
		showVer    = flag.Bool("version", false, "Show version information")
		configPath = flag.String("config", "", "Path to a YAML config file")
		port       = flag.String("port", "", "Port to run the server on (default "+config.DefaultPort+")")
		seed       = flag.Int("seed", -1, fmt.Sprintf("Number of records created at startup (default %d)", config.DefaultSeedCount))
		logLevel   = flag.String("log-level", "", "Log level: debug, info, warn or error")
		logFormat  = flag.String("log-format", "", "Log format: json or console")
	)

	flag.Parse()

	// Handle help flag
	if *help {
		fmt.Printf("Ordered List Server - a large collection with custom order and selection\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s                          # Seed 1,000,000 records and serve on port %s\n", os.Args[0], config.DefaultPort)
		fmt.Printf("  %s --port 9000 --seed 5000  # Small collection on port 9000\n", os.Args[0])
		fmt.Printf("  %s --config list.yaml       # Read settings from a file\n", os.Args[0])
		return
	}

	// Handle version flag
	if *showVer {
		fmt.Printf("Ordered List Server v%s\n", version)
		return
	}

	settings := config.ServerSettings{}
	if *configPath != "" {
		fileSettings, _, err := config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		settings = fileSettings
	}
	if *port != "" {
		settings.Port = *port
	}
	if *seed >= 0 {
		settings.SeedCount = config.SeedCount(*seed)
	}
	if *logLevel != "" {
		settings.LogLevel = *logLevel
	}
	if *logFormat != "" {
		settings.LogFormat = *logFormat
	}
	settings.ApplyDefaults()

	if problems := settings.ValidateFields(); len(problems) > 0 {
		fmt.Fprintf(os.Stderr, "Invalid configuration:\n  %s\n", strings.Join(problems, "\n  "))
		os.Exit(1)
	}

	logger := logging.New(logging.Settings{Level: settings.LogLevel, Format: settings.LogFormat})

	// Seed the record store
	start := time.Now()
	records := store.NewRecordStore(settings.Seeds())
	records.Seed(settings.Seeds(), settings.ItemFormat)
	logger.Info().Int("records", records.Len()).Dur("took", time.Since(start)).Msg("Seeded record store")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	collection, err := engine.NewCollection(records,
		engine.WithMetrics(metrics.New(registry)),
		engine.WithLogger(logger.With().Str("component", "collection").Logger()))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create collection")
	}

	// Initialize Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// Setup API routes
	api.SetupRoutes(router, collection, settings, logger.With().Str("component", "api").Logger())
	api.SetupMetricsRoute(router, registry)

	server := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           api.NewHTTPHandler(router, settings),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Strs("prefixes", settings.RoutePrefixes).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Dur("timeout", settings.ShutdownTimeout).Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
	logger.Info().Msg("Server stopped")
}
