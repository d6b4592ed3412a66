// scraper harvests card data from the Limitless TCG card database into the local data
// directory, where the server's fallback source reads it.
//
// Usage: scraper [-data=<dir>] [-db=<path>] [-region=en] <mode>
//
// Modes:
//   - -discover          list the set codes of a region
//   - -card=SET/N        scrape one card and print it as JSON
//   - -set=SET           scrape a set into per-card files, then combine them
//   - -all               discover and scrape every set of the region
//   - -combine=SET|all   rebuild combined set files from per-card files
//
// Already scraped cards are skipped, so an interrupted scrape resumes where it stopped.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alchemistake/pokeproxy/backend/internal/config"
	"github.com/alchemistake/pokeproxy/backend/internal/database"
	"github.com/alchemistake/pokeproxy/backend/internal/services"
)

func main() {
	configPath := flag.String("config", "", "Path to pokeproxy.yaml (optional)")
	dataDir := flag.String("data", "", "Data directory (default from config, ./data)")
	dbPath := flag.String("db", "", "Record scrape runs in this SQLite database")
	region := flag.String("region", "", "Card database region (default from config, en)")
	discover := flag.Bool("discover", false, "List the set codes of the region")
	card := flag.String("card", "", "Scrape a single card, e.g. TWM/95")
	set := flag.String("set", "", "Scrape every card of a set, e.g. TWM")
	all := flag.Bool("all", false, "Discover and scrape every set of the region")
	combine := flag.String("combine", "", "Combine per-card files of a set (or 'all')")
	flag.Parse()

	modes := 0
	for _, on := range []bool{*discover, *card != "", *set != "", *all, *combine != ""} {
		if on {
			modes++
		}
	}
	if modes != 1 {
		fmt.Println("Usage: scraper [-data=<dir>] [-db=<path>] [-region=en] <mode>")
		fmt.Println("")
		fmt.Println("Scrapes card pages from limitlesstcg.com into <data>/int/<region>/<SET>.json.")
		fmt.Println("")
		fmt.Println("Modes (exactly one):")
		fmt.Println("  -discover         List the set codes of the region")
		fmt.Println("  -card=SET/N       Scrape one card and print it as JSON")
		fmt.Println("  -set=SET          Scrape a set, then combine it")
		fmt.Println("  -all              Discover and scrape every set of the region")
		fmt.Println("  -combine=SET|all  Rebuild combined set files from per-card files")
		fmt.Println("")
		fmt.Println("Examples:")
		fmt.Println("  scraper -set=TWM")
		fmt.Println("  scraper -all -db=./pokeproxy.db")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *region != "" {
		cfg.Region = *region
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := services.NewCardStore(cfg.DataDir)
	scraper := services.NewLimitlessService(cfg.LimitlessBaseURL, cfg.ScrapeInterval)

	var runs *services.ScrapeRunService
	if *dbPath != "" {
		if err := database.Initialize(*dbPath); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		if err := database.MarkInterruptedRuns(database.GetDB()); err != nil {
			log.Printf("Warning: failed to close out stale scrape runs: %v", err)
		}
		runs = services.NewScrapeRunService(database.GetDB())
	}

	switch {
	case *discover:
		codes, err := scraper.DiscoverSets(ctx, cfg.Region)
		if err != nil {
			log.Fatalf("Failed to discover sets: %v", err)
		}
		fmt.Println(strings.Join(codes, "\n"))

	case *card != "":
		setCode, number, ok := strings.Cut(*card, "/")
		if !ok || setCode == "" || number == "" {
			log.Fatalf("Invalid card %q, expected SET/N", *card)
		}
		setCode = strings.ToUpper(setCode)
		record, err := scraper.ScrapeCard(ctx, cfg.Region, setCode, number)
		if err != nil {
			log.Fatalf("Failed to scrape %s/%s: %v", setCode, number, err)
		}
		out, _ := json.MarshalIndent(record, "", "  ")
		fmt.Println(string(out))

	case *set != "":
		setCode := strings.ToUpper(*set)
		_, err := runs.Track(cfg.Region, setCode, func() (*services.ScrapeSetResult, error) {
			return scraper.ScrapeSet(ctx, cfg.Region, setCode, store)
		})
		if err != nil {
			log.Fatalf("Failed to scrape %s: %v", setCode, err)
		}
		combineSet(store, cfg.Region, setCode)

	case *all:
		result, err := scraper.ScrapeRegion(ctx, cfg.Region, store, runs)
		if err != nil {
			log.Fatalf("Failed to scrape region %s: %v", cfg.Region, err)
		}
		log.Printf("Scraped %d sets, %d failed", result.Succeeded, result.Failed)
		for _, code := range result.SetCodes {
			combineSet(store, cfg.Region, code)
		}

	case *combine != "":
		codes := []string{strings.ToUpper(*combine)}
		if strings.EqualFold(*combine, "all") {
			codes, err = store.ListInProgressSets(cfg.Region)
			if err != nil {
				log.Fatalf("Failed to list scraped sets: %v", err)
			}
		}
		for _, code := range codes {
			combineSet(store, cfg.Region, code)
		}
	}
}

func combineSet(store *services.CardStore, region, setCode string) {
	n, err := store.Combine(region, setCode)
	if err != nil {
		log.Printf("Warning: failed to combine %s: %v", setCode, err)
		return
	}
	log.Printf("Combined %d cards into %s", n, store.SetPath(region, setCode))
}
