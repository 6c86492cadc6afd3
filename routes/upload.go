package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rag-chatbot-backend/internal/config"
	"rag-chatbot-backend/internal/logger"
	"rag-chatbot-backend/models"
	"rag-chatbot-backend/services"
	"rag-chatbot-backend/utils"
)

// documentListLimit caps the inventory endpoint.
const documentListLimit = 100

func SetupUploadRoutes(router *gin.Engine, cfg *config.Config, ingestion *services.IngestionService, retrieval *services.RetrievalService) {
	// Upload and process a PDF. Any pipeline failure collapses to a 500
	// with the underlying message.
	router.POST("/upload_pdf/", func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "A PDF file is required", gin.H{"error": err.Error()})
			return
		}
		if fileHeader.Size > cfg.MaxFileSize {
			utils.RespondWithBadRequest(c, "File too large", gin.H{"max_size": cfg.MaxFileSize})
			return
		}

		src, err := fileHeader.Open()
		if err != nil {
			utils.RespondWithInternalError(c, err.Error(), nil)
			return
		}
		defer src.Close()

		result, err := ingestion.Ingest(c.Request.Context(), src, fileHeader.Filename)
		if err != nil {
			logger.Error("upload pipeline failed", "pdf", fileHeader.Filename, "error", err)
			utils.RespondWithInternalError(c, err.Error(), nil)
			return
		}

		c.JSON(http.StatusOK, models.UploadResponse{
			Message:      "File uploaded and processed successfully.",
			RecordID:     result.RecordID,
			PDFName:      result.PDFName,
			DocumentType: result.DocumentType,
			HasText:      result.HasText,
			HasImages:    result.HasImages,
			HasCharts:    result.HasCharts,
		})
	})

	// List stored documents.
	router.GET("/retrieve_documents/", func(c *gin.Context) {
		documents, err := retrieval.ListDocuments(c.Request.Context(), documentListLimit)
		if err != nil {
			logger.Error("document listing failed", "error", err)
			utils.RespondWithInternalError(c, err.Error(), nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"documents": documents})
	})
}
