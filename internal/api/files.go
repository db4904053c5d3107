package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"image-vault/internal/storage"
)

type FileHandler struct {
	Disk *storage.Disk
}

func NewFileHandler(disk *storage.Disk) *FileHandler {
	return &FileHandler{Disk: disk}
}

// ServeFile returns the raw stored bytes. Filenames are immutable once
// uploaded, so responses are cacheable indefinitely.
func (h *FileHandler) ServeFile(c *gin.Context) {
	name := storage.Sanitize(c.Param("filename"))

	exists, err := h.Disk.Exists(name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.File(h.Disk.Path(name))
}
