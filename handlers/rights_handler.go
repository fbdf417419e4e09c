package handlers

import (
	"errors"
	"net/http"

	"safevoice-backend/rights"

	"github.com/gin-gonic/gin"
)

// RightsHandler serves the Legal Rights Guide
type RightsHandler struct {
	guide *rights.Guide
}

// NewRightsHandler creates a new rights handler
func NewRightsHandler(guide *rights.Guide) *RightsHandler {
	return &RightsHandler{guide: guide}
}

// SearchRights handles GET /api/rights?q=&category=
func (h *RightsHandler) SearchRights(c *gin.Context) {
	results := h.guide.Search(c.Query("q"), c.Query("category"))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    results,
		"count":   len(results),
	})
}

// ListCategories handles GET /api/rights/categories
func (h *RightsHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.guide.Categories(),
	})
}

// GetRight handles GET /api/rights/:id
func (h *RightsHandler) GetRight(c *gin.Context) {
	entry, err := h.guide.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, rights.ErrNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Legal right not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "RETRIEVAL_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entry,
	})
}
