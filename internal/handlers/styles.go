package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"artforge/internal/inspiration"
	"artforge/internal/prompt"
)

func (h HandlerSet) Styles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"styles": prompt.Styles()})
}

const (
	defaultQuotes      = 3
	maxQuotes          = 10
	defaultBackgrounds = 6
)

// Inspiration never fails: an unreachable quote API yields an empty quote list.
func (h HandlerSet) Inspiration(c *gin.Context) {
	quotes := defaultQuotes
	if raw := c.Query("quotes"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_quotes"})
			return
		}
		quotes = min(n, maxQuotes)
	}

	c.JSON(http.StatusOK, gin.H{
		"quotes":      h.inspiration.Quotes(c.Request.Context(), quotes),
		"backgrounds": h.inspiration.Backgrounds(defaultBackgrounds, h.cfg.Generation.Width, h.cfg.Generation.Height),
		"ideas":       inspiration.Ideas(),
	})
}
