package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"image-vault/internal/api"
	"image-vault/internal/catalog"
	"image-vault/internal/config"
	"image-vault/internal/storage"
	"image-vault/internal/store"
	"image-vault/internal/uploader"
	"image-vault/internal/ws"
)

func main() {
	cfg := config.LoadConfig()

	disk, err := storage.NewDisk(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to init upload storage: %v", err)
	}
	metaStore, err := store.NewStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to init metadata store: %v", err)
	}
	defer metaStore.Close()

	hub := ws.NewHub()
	go hub.Run()

	coordinator := uploader.New(disk, metaStore, cfg.PublicBaseURL, hub.NotifyUpload)
	catalogSvc := catalog.New(metaStore, disk)

	imageHandler := api.NewImageHandler(catalogSvc)
	uploadHandler := api.NewUploadHandler(coordinator, cfg)
	deleteHandler := api.NewDeleteHandler(catalogSvc)
	fileHandler := api.NewFileHandler(disk)

	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	r.GET("/health", api.Health)
	r.GET("/images", imageHandler.GetImages)
	r.GET("/images.csv", imageHandler.ExportCSV)
	r.POST("/upload", uploadHandler.Upload)
	r.POST("/delete", deleteHandler.Delete)
	r.GET("/files/:filename", fileHandler.ServeFile)
	r.GET("/ws", func(c *gin.Context) {
		hub.ServeWs(c.Writer, c.Request)
	})

	log.Printf("Server starting on port %s (uploads in %s)", cfg.Port, cfg.UploadDir)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
