package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alchemistake/pokeproxy/backend/internal/services"
)

type ScrapeRunHandler struct {
	runs *services.ScrapeRunService
}

func NewScrapeRunHandler(runs *services.ScrapeRunService) *ScrapeRunHandler {
	return &ScrapeRunHandler{runs: runs}
}

// ListRuns returns recent scraper runs, newest first. ?limit= caps the count (default 50).
func (h *ScrapeRunHandler) ListRuns(c *gin.Context) {
	limit := services.DefaultScrapeRunLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	runs, err := h.runs.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
