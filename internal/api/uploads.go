package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"emarket/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// upload stores a seller's cover, eBook or payment QR image
func (h *Handler) upload(c *gin.Context) {
	kind := c.Param("kind")
	if !storage.ValidKind(kind) || kind == storage.KindProof {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported upload kind"})
		return
	}

	ref, ok := h.storeUpload(c, kind)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ref": ref})
}

// storeUpload saves the multipart "file" field and returns its reference.
// It writes the error response itself when ok is false.
func (h *Handler) storeUpload(c *gin.Context, kind string) (ref string, ok bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please choose a file to upload."})
		return "", false
	}

	if header.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("File size too large (Max %dMB).", h.maxUploadBytes>>20),
		})
		return "", false
	}

	contentType := header.Header.Get("Content-Type")
	if kind == storage.KindPDF {
		if contentType != "application/pdf" && !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please upload a valid PDF file."})
			return "", false
		}
		contentType = "application/pdf"
	} else if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please upload an image file."})
		return "", false
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read the uploaded file."})
		return "", false
	}
	defer file.Close()

	if kind == storage.KindPDF {
		pages, err := storage.InspectPDF(file, header.Size)
		if err != nil {
			h.logger.Warn("Rejected eBook upload", zap.String("filename", header.Filename), zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please upload a valid PDF file."})
			return "", false
		}
		h.logger.Debug("eBook upload inspected", zap.Int("pages", pages))
	}

	key := storage.NewKey(kind, header.Filename)
	if err := h.objects.Put(c.Request.Context(), key, file, header.Size, contentType); err != nil {
		h.logger.Error("Failed to store upload", zap.String("kind", kind), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upload failed. Please try again."})
		return "", false
	}

	h.logger.Info("Upload stored", zap.String("kind", kind), zap.String("key", key), zap.Int64("size", header.Size))
	return key, true
}
