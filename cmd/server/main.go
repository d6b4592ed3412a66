package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alchemistake/pokeproxy/backend/internal/api"
	"github.com/alchemistake/pokeproxy/backend/internal/config"
	"github.com/alchemistake/pokeproxy/backend/internal/database"
	"github.com/alchemistake/pokeproxy/backend/internal/services"
)

func main() {
	configPath := flag.String("config", "", "Path to pokeproxy.yaml (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := database.Initialize(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Primary source: pokemon-tcg-data, addressed by set id
	primary := services.NewPokemonTCGDataService(cfg.PrimaryBaseURL)

	// Map printed set codes to set ids. Without it every lookup goes to local data.
	setIndex := services.NewSetCodeIndex()
	indexCtx, indexCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := setIndex.Load(indexCtx, primary); err != nil {
		log.Printf("Warning: %v - only local set data will be used", err)
	}
	indexCancel()

	// Fallback source: scraped sets under the data directory, addressed by printed code
	local := services.NewLocalDataService(cfg.DataDir, cfg.Region)

	resolver := services.NewCardResolver(primary, local)
	deckService := services.NewDeckService(resolver, setIndex, cfg.ResolveConcurrency)

	artCache, err := services.NewCardArtCache(cfg.ArtCacheSize)
	if err != nil {
		log.Fatalf("Failed to initialize card art cache: %v", err)
	}

	scrapeRuns := services.NewScrapeRunService(database.GetDB())

	router := api.SetupRouter(cfg, deckService, artCache, setIndex, scrapeRuns)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
