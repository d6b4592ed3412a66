package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alchemistake/pokeproxy/backend/internal/models"
	"github.com/alchemistake/pokeproxy/backend/internal/services"
)

type DecklistHandler struct {
	deckService *services.DeckService
}

func NewDecklistHandler(deckService *services.DeckService) *DecklistHandler {
	return &DecklistHandler{deckService: deckService}
}

// ResolveDecklist resolves a pasted decklist. Cards that fail to load are reported in
// "errors" alongside the ones that did.
func (h *DecklistHandler) ResolveDecklist(c *gin.Context) {
	var req models.DecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.deckService.ResolveDecklist(c.Request.Context(), req)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	if len(result.Errors) > 0 {
		log.Printf("Decklist resolved with %d errors (%d cards)", len(result.Errors), len(result.Cards))
	}
	c.JSON(http.StatusOK, result)
}
