package handler

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xxxsen/fieldorder/internal/pkg/response"
	"github.com/xxxsen/fieldorder/internal/service"
)

type PublicShareHandler struct {
	shares *service.PublicShareService
}

func NewPublicShareHandler(shares *service.PublicShareService) *PublicShareHandler {
	return &PublicShareHandler{shares: shares}
}

func (h *PublicShareHandler) Get(c *gin.Context) {
	setPrivateHeaders(c)
	view, err := h.shares.Open(c.Request.Context(), c.Param("token"))
	if err != nil {
		handlePublicError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *PublicShareHandler) File(c *gin.Context) {
	setPrivateHeaders(c)
	file, err := h.shares.OpenFile(c.Request.Context(), c.Param("token"), c.Param("key"))
	if err != nil {
		handlePublicError(c, err)
		return
	}
	defer func() { _ = file.Body.Close() }()
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	if file.Size > 0 {
		c.Header("Content-Length", strconv.FormatInt(file.Size, 10))
	}
	c.Header("Content-Disposition", contentDisposition("inline", file.Name))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file.Body); err != nil {
		requestLogger(c).Warn("stream shared file interrupted", zap.Error(err))
	}
}

func (h *PublicShareHandler) Archive(c *gin.Context) {
	setPrivateHeaders(c)
	archive, err := h.shares.PrepareArchive(c.Request.Context(), c.Param("token"))
	if err != nil {
		handlePublicError(c, err)
		return
	}
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", contentDisposition("attachment", archive.Name))
	c.Status(http.StatusOK)
	if err := archive.Write(c.Request.Context(), c.Writer); err != nil {
		requestLogger(c).Warn("stream share archive interrupted", zap.Error(err))
	}
}

func setPrivateHeaders(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Referrer-Policy", "no-referrer")
	c.Header("X-Robots-Tag", "noindex")
}

func contentDisposition(kind, filename string) string {
	if filename == "" {
		return kind
	}
	value := mime.FormatMediaType(kind, map[string]string{"filename": filename})
	if value == "" {
		return kind
	}
	return value
}
