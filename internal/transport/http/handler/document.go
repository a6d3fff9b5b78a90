package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"heysera/internal/app"
	"heysera/internal/store"
	"heysera/internal/transport/http/response"
)

type DocumentHandler struct {
	documentService *app.DocumentService
}

type UploadResponse struct {
	DocumentID string    `json:"documentId"`
	ChatID     string    `json:"chatId"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	TextLength int       `json:"textLength"`
	Analysis   string    `json:"analysis"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func NewDocumentHandler(documentService *app.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Upload handles POST /api/upload: multipart "file" plus an optional
// "chatId" form field.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > app.MaxUploadSize {
		response.Error(c, http.StatusBadRequest, response.CodeFileTooLarge, app.ErrFileTooLarge.Error())
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, app.MaxUploadSize+1))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}

	result, err := h.documentService.Upload(c.Request.Context(), app.UploadInput{
		SessionID: c.PostForm("chatId"),
		Filename:  file.Filename,
		Size:      file.Size,
		Data:      data,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUnsupportedFileType):
			response.Error(c, http.StatusBadRequest, response.CodeUnsupportedFile, err.Error())
		case errors.Is(err, app.ErrFileTooLarge):
			response.Error(c, http.StatusBadRequest, response.CodeFileTooLarge, err.Error())
		case errors.Is(err, app.ErrExtractionFailed):
			response.Error(c, http.StatusBadRequest, response.CodeEmptyDocument, err.Error())
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, store.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "error processing document")
		}
		return
	}

	response.OK(c, UploadResponse{
		DocumentID: result.DocumentID,
		ChatID:     result.SessionID,
		Filename:   result.Filename,
		Size:       result.Size,
		TextLength: result.TextLength,
		Analysis:   result.Analysis,
		UploadedAt: result.UploadedAt,
	})
}
