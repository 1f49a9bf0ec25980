package handler

import (
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/domain"
	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/ocr"
	"github.com/hamzaummer/Optical-Character-Recognition-OCR-Web-Application/internal/upload"
)

// Version is reported by the index route.
var Version = "1.0.0"

const (
	defaultLanguage = "eng"
	multipartMemory = 8 << 20
)

// OCRService defines the behavior consumed by the handler.
type OCRService interface {
	Process(ctx context.Context, file multipart.File, header *multipart.FileHeader, lang string) (ocr.Outcome, error)
	Languages(ctx context.Context) []string
	TriggerCleanup() bool
}

// OCRHandler manages OCR HTTP interactions.
type OCRHandler struct {
	service  OCRService
	maxBytes int64
}

// NewOCRHandler builds the handler. maxBytes caps the request body.
func NewOCRHandler(svc OCRService, maxBytes int64) *OCRHandler {
	return &OCRHandler{service: svc, maxBytes: maxBytes}
}

type uploadResponse struct {
	Success  bool              `json:"success"`
	Text     string            `json:"text"`
	Filename string            `json:"filename"`
	Degraded bool              `json:"degraded"`
	Pages    int               `json:"pages,omitempty"`
	Skipped  []ocr.SkippedPage `json:"skipped,omitempty"`
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   msg,
	})
}

// Upload handles a multipart image or PDF upload and returns extracted text.
func (h *OCRHandler) Upload(c *gin.Context) {
	log := zerolog.Ctx(c.Request.Context())

	if h.maxBytes > 0 {
		if c.Request.ContentLength > h.maxBytes {
			h.tooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	}

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			h.tooLarge(c)
			return
		}
		errorJSON(c, http.StatusBadRequest, "No file provided")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		// A part named "file" with an empty filename is parsed as a plain value.
		if _, ok := c.Request.MultipartForm.Value["file"]; ok {
			errorJSON(c, http.StatusBadRequest, "No file selected")
			return
		}
		errorJSON(c, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	lang := c.Request.FormValue("language")
	if lang == "" {
		lang = defaultLanguage
	}

	out, err := h.service.Process(c.Request.Context(), file, header, lang)
	if err != nil {
		if domain.IsKind(err, domain.KindValidation) {
			errorJSON(c, http.StatusBadRequest, domain.MessageOf(err, "Invalid upload"))
			return
		}
		log.Error().Err(err).Str("file", header.Filename).Msg("upload error")
		errorJSON(c, http.StatusInternalServerError, "An unexpected error occurred during processing")
		return
	}

	if !out.Success {
		log.Warn().Str("kind", string(out.Kind)).Str("file", header.Filename).Msg("ocr failed")
		errorJSON(c, http.StatusInternalServerError, out.Error)
		return
	}

	c.JSON(http.StatusOK, uploadResponse{
		Success:  true,
		Text:     ocr.SanitizeText(out.Text),
		Filename: header.Filename,
		Degraded: out.Degraded,
		Pages:    out.Pages,
		Skipped:  out.Skipped,
	})
}

func (h *OCRHandler) tooLarge(c *gin.Context) {
	errorJSON(c, http.StatusRequestEntityTooLarge,
		"File too large. Maximum size allowed: "+upload.FormatSize(h.maxBytes))
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}

type downloadRequest struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
}

// DownloadText returns the posted text as a plain-text attachment.
func (h *OCRHandler) DownloadText(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" {
		errorJSON(c, http.StatusBadRequest, "No text to download")
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": exportName(req.Filename),
	}))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(req.Text))
}

// exportName derives "<base>_extracted.txt" from the original file name.
func exportName(filename string) string {
	if filename == "" {
		filename = "extracted_text"
	}
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	if safe := upload.SecureFilename(base); safe != "" {
		base = safe
	} else {
		base = "extracted_text"
	}
	return base + "_extracted.txt"
}

// Languages lists the installed OCR languages.
func (h *OCRHandler) Languages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"languages": h.service.Languages(c.Request.Context()),
	})
}

// Health is the liveness payload.
func (h *OCRHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "OCR Web Application",
	})
}

// Index describes the service and kicks off a cleanup of old uploads.
func (h *OCRHandler) Index(c *gin.Context) {
	h.service.TriggerCleanup()
	c.JSON(http.StatusOK, gin.H{
		"service": "OCR Web Application",
		"version": Version,
		"endpoints": []string{
			"POST /upload",
			"POST /download_text",
			"GET /languages",
			"GET /health",
		},
	})
}
