package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/savegress/carebridge/internal/api"
	"github.com/savegress/carebridge/internal/assessment"
	"github.com/savegress/carebridge/internal/config"
	"github.com/savegress/carebridge/internal/remote"
	"github.com/savegress/carebridge/internal/scoring"
	"github.com/savegress/carebridge/internal/store"
	"github.com/savegress/carebridge/internal/syncer"
	"github.com/savegress/carebridge/internal/triage"
)

func main() {
	log.Println("Starting CareBridge...")

	cfg := loadConfig()

	// Local store is the source of truth; opening runs the crash-recovery
	// sweep for consultations stranded mid-sync.
	st, err := store.Open(dataPath(cfg))
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Scoring models are optional; a missing model degrades to the
	// blender's severity-floor policy.
	symptomScorer := scoring.NewModelHandle(cfg.Scoring.SymptomModelPath)
	vitalsScorer := scoring.NewModelHandle(cfg.Scoring.VitalsModelPath)
	blender := scoring.NewBlender(cfg.Scoring.CriticalFloor, cfg.Scoring.SevereFloor)

	service := assessment.NewService(st, triage.NewEngine(), blender, symptomScorer, vitalsScorer)

	client := remote.NewClient(&remote.ClientConfig{
		BaseURL: cfg.Remote.BaseURL,
		Timeout: cfg.Remote.Timeout,
	})

	monitor := syncer.NewProbeMonitor(client, cfg.Sync.ProbeInterval)
	monitor.Start(ctx)

	coordinator := syncer.New(st, client, monitor, cfg.Sync.Interval, cfg.Remote.Timeout)
	coordinator.Start(ctx)

	// Retention cleanup for the synced consultation audit trail.
	go cleanupLoop(ctx, st, cfg.Storage.Retention)

	server := api.NewServer(service, coordinator)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("CareBridge API listening on port %d", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down CareBridge...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	coordinator.Stop()
	monitor.Stop()

	log.Println("CareBridge stopped")
}

func loadConfig() *config.Config {
	configPath := os.Getenv("CAREBRIDGE_CONFIG")
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			log.Printf("Failed to load config from %s: %v, using defaults", configPath, err)
			return config.LoadFromEnv()
		}
		return cfg
	}
	return config.LoadFromEnv()
}

func dataPath(cfg *config.Config) string {
	if cfg.Server.Environment == "development" && cfg.Storage.Path == "/var/lib/carebridge/data" {
		return "/tmp/carebridge/data"
	}
	return cfg.Storage.Path
}

func cleanupLoop(ctx context.Context, st store.Store, retention time.Duration) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := st.Cleanup(ctx, retention); err != nil {
				log.Printf("Retention cleanup failed: %v", err)
			}
		}
	}
}
