package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"image-vault/internal/catalog"
)

type DeleteHandler struct {
	Catalog *catalog.Service
}

func NewDeleteHandler(svc *catalog.Service) *DeleteHandler {
	return &DeleteHandler{Catalog: svc}
}

type deleteRequest struct {
	Items []string `json:"items" binding:"required"`
}

// Delete removes a batch of images. Items may be filenames, URLs or
// pasted mixed text; each resolved filename gets its own result entry.
func (h *DeleteHandler) Delete(c *gin.Context) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "items is required"})
		return
	}

	results, err := h.Catalog.DeleteItems(req.Items)
	if err != nil {
		if errors.Is(err, catalog.ErrNoTargets) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": results, "count": len(results)})
}
