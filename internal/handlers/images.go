package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"artforge/internal/middleware"
	"artforge/internal/service"
)

type createImageRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
}

type imageResponse struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	URL       string    `json:"url"`
	Style     string    `json:"style"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"createdAt"`
}

func toImageResponse(item service.GalleryItem) imageResponse {
	return imageResponse{
		ID:        item.ID,
		Prompt:    item.Prompt,
		URL:       item.URL,
		Style:     item.Config.Style,
		Width:     item.Config.Width,
		Height:    item.Config.Height,
		CreatedAt: item.CreatedAt,
	}
}

func (h HandlerSet) CreateImage(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body", "message": "Request body must be JSON."})
		return
	}

	result, err := h.generation.Generate(c.Request.Context(), service.GenerateInput{
		Prompt:  req.Prompt,
		Style:   req.Style,
		OwnerID: user.ID,
	})
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"image": toImageResponse(result.Image)})
}

func (h HandlerSet) ListImages(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	items, err := h.gallery.List(c.Request.Context(), user.ID)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	resp := make([]imageResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toImageResponse(item))
	}

	c.JSON(http.StatusOK, gin.H{
		"items": resp,
		"count": len(resp),
		"limit": h.gallery.Limit(),
	})
}

func (h HandlerSet) GetImage(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	item, err := h.gallery.Get(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"image": toImageResponse(item)})
}

func (h HandlerSet) DeleteImage(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.gallery.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) CountImages(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	count, err := h.gallery.Count(c.Request.Context(), user.ID)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count, "limit": h.gallery.Limit()})
}
