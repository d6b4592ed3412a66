package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alchemistake/pokeproxy/backend/internal/api/handlers"
	"github.com/alchemistake/pokeproxy/backend/internal/config"
	"github.com/alchemistake/pokeproxy/backend/internal/metrics"
	"github.com/alchemistake/pokeproxy/backend/internal/services"
)

// SetupRouter builds the HTTP API. scrapeRuns may be nil when no history database is open.
func SetupRouter(cfg *config.Config, deckService *services.DeckService, artCache *services.CardArtCache, setIndex *services.SetCodeIndex, scrapeRuns *services.ScrapeRunService) *gin.Engine {
	router := gin.Default()
	router.Use(metricsMiddleware())

	frontendPath := cfg.FrontendDistPath
	serveFrontend := frontendPath != "" && dirExists(frontendPath)

	// CORS configuration - allow configured origins or the local dev servers
	corsConfig := cors.DefaultConfig()
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsConfig.AllowCredentials = false
	router.Use(cors.New(corsConfig))

	decklistHandler := handlers.NewDecklistHandler(deckService)
	cardHandler := handlers.NewCardHandler(deckService, artCache, setIndex)

	// Scraped set files, the same ones the local fallback source reads
	if dirExists(cfg.DataDir) {
		router.Static("/data", cfg.DataDir)
	}

	api := router.Group("/api")
	{
		api.POST("/decklist", decklistHandler.ResolveDecklist)
		api.GET("/sets", cardHandler.ListSets)

		cards := api.Group("/cards")
		{
			cards.GET("/:set/:number", cardHandler.GetCard)
			cards.GET("/:set/:number/art", cardHandler.GetCardArt)
		}

		if scrapeRuns != nil {
			runHandler := handlers.NewScrapeRunHandler(scrapeRuns)
			api.GET("/scrape/runs", runHandler.ListRuns)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sets": setIndex.Len()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if serveFrontend {
		indexPath := filepath.Join(frontendPath, "index.html")

		router.Static("/assets", filepath.Join(frontendPath, "assets"))
		router.StaticFile("/vite.svg", filepath.Join(frontendPath, "vite.svg"))

		router.GET("/", func(c *gin.Context) {
			c.File(indexPath)
		})

		// SPA fallback - serve index.html for all non-API routes
		router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api") {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.File(indexPath)
		})
	}

	return router
}

// metricsMiddleware records request counts and latency by route pattern.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
