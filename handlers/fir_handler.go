package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"safevoice-backend/logger"
	"safevoice-backend/models"
	"safevoice-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// FIRDrafter is the FIR generation behaviour the draft endpoints need
type FIRDrafter interface {
	GenerateFIR(ctx context.Context, req service.GenerateFIRRequest) (*service.GenerateFIRResult, error)
	ProcessFIR(ctx context.Context, jobID uuid.UUID) error
	GetJobStatus(ctx context.Context, req service.GetJobStatusRequest) (*service.GetJobStatusResult, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*models.FIRDocument, error)
	OpenFile(ctx context.Context, id uuid.UUID) (*models.File, io.ReadCloser, error)
}

// FIRHandler handles HTTP requests for FIR drafts, their jobs and files
type FIRHandler struct {
	fir FIRDrafter
	log *logger.Logger
}

// NewFIRHandler creates a new FIR handler
func NewFIRHandler(fir FIRDrafter, log *logger.Logger) *FIRHandler {
	return &FIRHandler{fir: fir, log: log}
}

// GenerateFIR handles POST /api/conversations/:id/fir
func (h *FIRHandler) GenerateFIR(c *gin.Context) {
	id, ok := parseID(c, "conversation")
	if !ok {
		return
	}

	// Create job (synchronous, fast)
	result, err := h.fir.GenerateFIR(c.Request.Context(), service.GenerateFIRRequest{ConversationID: id})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConversationNotFound):
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Conversation not found")
		case errors.Is(err, service.ErrNoUserMessages):
			respondError(c, http.StatusUnprocessableEntity, "NO_DETAILS", "Describe the incident in the chat before generating an FIR")
		default:
			respondError(c, http.StatusInternalServerError, "GENERATION_FAILED", err.Error())
		}
		return
	}

	// Background context so the job outlives the request
	go func() {
		if err := h.fir.ProcessFIR(context.Background(), result.JobID); err != nil {
			h.log.Error("FIR generation job failed", logrus.Fields{
				"job_id": result.JobID.String(),
				"error":  err.Error(),
			})
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"data": gin.H{
			"job_id":  result.JobID,
			"status":  result.Status,
			"message": "Generation job created. Poll /api/jobs/:id for updates.",
		},
	})
}

// GetJobStatus handles GET /api/jobs/:id
func (h *FIRHandler) GetJobStatus(c *gin.Context) {
	id, ok := parseID(c, "job")
	if !ok {
		return
	}

	result, err := h.fir.GetJobStatus(c.Request.Context(), service.GetJobStatusRequest{JobID: id})
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Generation job not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "RETRIEVAL_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Job,
	})
}

// GetDocument handles GET /api/documents/:id
func (h *FIRHandler) GetDocument(c *gin.Context) {
	id, ok := parseID(c, "document")
	if !ok {
		return
	}

	doc, err := h.fir.GetDocument(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrDocumentNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Document not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "RETRIEVAL_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    doc,
	})
}

// GetFile handles GET /api/files/:id and streams the rendered draft as a download
func (h *FIRHandler) GetFile(c *gin.Context) {
	id, ok := parseID(c, "file")
	if !ok {
		return
	}

	file, reader, err := h.fir.OpenFile(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrFileNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "File not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "DOWNLOAD_FAILED", fmt.Sprintf("Failed to download file: %v", err))
		return
	}
	defer reader.Close()

	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, reader, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=\"%s\"", file.Filename),
	})
}
