package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alchemistake/pokeproxy/backend/internal/services"
)

type CardHandler struct {
	deckService *services.DeckService
	artCache    *services.CardArtCache
	setIndex    *services.SetCodeIndex
}

func NewCardHandler(deckService *services.DeckService, artCache *services.CardArtCache, setIndex *services.SetCodeIndex) *CardHandler {
	return &CardHandler{
		deckService: deckService,
		artCache:    artCache,
		setIndex:    setIndex,
	}
}

// GetCard returns one card by printed set code and number, e.g. /api/cards/TWM/95.
func (h *CardHandler) GetCard(c *gin.Context) {
	card, err := h.deckService.ResolveCard(c.Request.Context(), c.Param("set"), c.Param("number"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, card)
}

// GetCardArt proxies the card's large image through the art cache.
func (h *CardHandler) GetCardArt(c *gin.Context) {
	card, err := h.deckService.ResolveCard(c.Request.Context(), c.Param("set"), c.Param("number"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	imageURL := card.LargeImageURL()
	if imageURL == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "card has no image"})
		return
	}

	art, err := h.artCache.Get(c.Request.Context(), imageURL)
	if err != nil {
		log.Printf("Warning: failed to load art for %s/%s: %v",
			strings.ToUpper(c.Param("set")), c.Param("number"), err)
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, art.ContentType, art.Data)
}

// ListSets returns the sets addressable by printed code.
func (h *CardHandler) ListSets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sets":  h.setIndex.Sets(),
		"count": h.setIndex.Len(),
	})
}
