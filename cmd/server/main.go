package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/camilorojas87/mixtaped/internal/config"
	"github.com/camilorojas87/mixtaped/internal/constants"
	"github.com/camilorojas87/mixtaped/internal/httpapp"
	"github.com/camilorojas87/mixtaped/internal/httpclient"
	"github.com/camilorojas87/mixtaped/internal/logger"
	"github.com/camilorojas87/mixtaped/internal/player"
	"github.com/camilorojas87/mixtaped/internal/recommend"
	"github.com/camilorojas87/mixtaped/internal/source"
	"github.com/camilorojas87/mixtaped/internal/store"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize DB
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// RANDOM_SEED=0 means a fresh seed per run
	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// Preference engine and feedback ledger
	prefs := store.NewPreferenceRepo(db)
	engine := recommend.NewEngine(prefs, rand.New(rand.NewSource(seed)), appLogger)
	ledger := recommend.NewLedger(prefs, appLogger)

	// Track source: local library when configured, remote service otherwise
	var provider source.Provider
	if cfg.LibraryDir != "" {
		provider, err = source.NewLibraryProvider(cfg.LibraryDir, rand.New(rand.NewSource(seed+1)), appLogger)
		if err != nil {
			appLogger.Error("Failed to scan library", "error", err)
			os.Exit(1)
		}
	} else {
		client := httpclient.NewClient(&http.Client{Timeout: constants.DefaultHTTPTimeout}, constants.MinRequestInterval)
		provider = source.NewHTTPProvider(cfg.SourceURL, client, appLogger)
	}

	// Playback queue and transport controller
	events := player.NewBroadcaster()
	queue := player.NewQueue(provider, engine, store.NewQueueRepo(db), events, appLogger)
	if err := queue.Restore(); err != nil {
		appLogger.Warn("Failed to restore queue", "error", err)
	}

	transport := player.NewNoopTransport()
	controller := player.NewController(transport, transport.Events(), queue, events, appLogger)
	defer controller.Close()

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := httpapp.NewHandler(queue, controller, engine, ledger)
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
