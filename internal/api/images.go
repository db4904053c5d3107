package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"image-vault/internal/catalog"
	"image-vault/internal/store"
)

type ImageHandler struct {
	Catalog *catalog.Service
}

func NewImageHandler(svc *catalog.Service) *ImageHandler {
	return &ImageHandler{Catalog: svc}
}

// GetImages lists the catalog. Supports ?filter= substring matching and
// ?format=csv for a spreadsheet download.
func (h *ImageHandler) GetImages(c *gin.Context) {
	if c.Query("format") == "csv" {
		h.ExportCSV(c)
		return
	}

	records, err := h.Catalog.List(c.Query("filter"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Return empty array instead of null
	if records == nil {
		records = []store.ImageRecord{}
	}

	c.JSON(http.StatusOK, records)
}

// ExportCSV serves the catalog as a CSV attachment.
func (h *ImageHandler) ExportCSV(c *gin.Context) {
	csvText, err := h.Catalog.ExportCSV()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=images.csv")
	c.String(http.StatusOK, csvText)
}
