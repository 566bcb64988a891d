package handlers

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"

	"github.com/Brownie44l1/agrivision-api/internal/diagnosis"
	"github.com/Brownie44l1/agrivision-api/internal/locale"
)

// PingMessage is the liveness reply of GET /ping.
const PingMessage = "Hello, I am alive"

// Diagnoser produces the localized report for an uploaded image.
type Diagnoser interface {
	Diagnose(ctx context.Context, requestID string, img image.Image, acceptLanguage string) (*diagnosis.Result, error)
}

type Handler struct {
	service        Diagnoser
	classCount     int
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewHandler(service Diagnoser, classCount int, maxUploadBytes int64, logger *zap.Logger) *Handler {
	return &Handler{
		service:        service,
		classCount:     classCount,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.Named("handlers"),
	}
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, PingMessage)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "classes": h.classCount})
}

func (h *Handler) Predict(c *gin.Context) {
	if c.Request.ContentLength > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": tooLargeMessage(h.maxUploadBytes)})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	header, err := uploadedFile(c)
	if err != nil {
		if isTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": tooLargeMessage(h.maxUploadBytes)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided. Use 'file' as the form field name"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to open image"})
		return
	}
	defer file.Close()

	requestID := c.GetString(requestIDKey)
	log := h.logger.With(zap.String("request_id", requestID))
	log.Debug("received file", zap.String("filename", header.Filename), zap.Int64("size", header.Size))

	img, format, err := image.Decode(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image format. Supported: JPEG, PNG, WebP"})
		return
	}
	log.Debug("decoded image", zap.String("format", format),
		zap.Int("width", img.Bounds().Dx()), zap.Int("height", img.Bounds().Dy()))

	result, err := h.service.Diagnose(c.Request.Context(), requestID, img, requestedLanguage(c))
	if err != nil {
		if errors.Is(err, locale.ErrDefaultLocale) || errors.Is(err, locale.ErrInvalidLocale) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "locale configuration error"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Prediction failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// uploadedFile returns the "file" form part, or the older "image" part.
func uploadedFile(c *gin.Context) (*multipart.FileHeader, error) {
	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return c.FormFile("image")
	}
	return header, err
}

// requestedLanguage prefers the lang query parameter over Accept-Language.
func requestedLanguage(c *gin.Context) string {
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		return lang
	}
	return c.GetHeader("Accept-Language")
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

func tooLargeMessage(limit int64) string {
	return fmt.Sprintf("upload exceeds %d bytes", limit)
}
