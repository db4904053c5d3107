package api

import (
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"image-vault/internal/config"
	"image-vault/internal/uploader"
)

type UploadHandler struct {
	Coordinator *uploader.Coordinator
	Defaults    *config.Config
}

func NewUploadHandler(coord *uploader.Coordinator, cfg *config.Config) *UploadHandler {
	return &UploadHandler{Coordinator: coord, Defaults: cfg}
}

type uploadedFile struct {
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// Upload handles a multipart batch: repeated "files" fields, an
// "overwrite" policy flag for the whole batch, and an optional
// "concurrency" override.
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Multipart form required"})
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one file is required"})
		return
	}

	overwrite := c.PostForm("overwrite") == "true"
	concurrency := h.concurrency(c.PostForm("concurrency"))

	files := make([]uploader.File, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file " + header.Filename})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file " + header.Filename})
			return
		}
		files = append(files, uploader.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	outcomes := h.Coordinator.Upload(c.Request.Context(), files, concurrency, overwrite)

	uploaded := make([]uploadedFile, 0, len(outcomes))
	for _, out := range outcomes {
		uploaded = append(uploaded, uploadedFile{
			Filename: out.Filename,
			URL:      out.URL,
			Status:   string(out.Status),
			Error:    out.Error,
		})
	}

	log.Printf("Upload batch done: %d files, overwrite=%v, concurrency=%d", len(outcomes), overwrite, concurrency)
	c.JSON(http.StatusOK, gin.H{"uploaded": uploaded, "count": len(uploaded)})
}

func (h *UploadHandler) concurrency(raw string) int {
	n := h.Defaults.DefaultConcurrency
	if raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			n = parsed
		}
	}
	if n < 1 {
		n = 1
	}
	if n > config.MaxConcurrency {
		n = config.MaxConcurrency
	}
	return n
}
