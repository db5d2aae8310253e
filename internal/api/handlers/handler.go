package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"example.com/outcry/internal/api/middleware"
	"example.com/outcry/internal/metrics"
	"example.com/outcry/internal/repository"
	"example.com/outcry/internal/service"
	"example.com/outcry/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Multipart field names used by job and booking creation and by uploads
const (
	payloadField     = "payload"
	attachmentsField = "attachments"
	filesField       = "files"
)

// Handler serves the REST API on top of the service layer
type Handler struct {
	svc     service.Service
	metrics *metrics.Collector
	log     zerolog.Logger
}

// NewHandler creates a new API handler
func NewHandler(svc service.Service, collector *metrics.Collector, logger zerolog.Logger) *Handler {
	if collector == nil {
		collector = metrics.Default()
	}
	return &Handler{
		svc:     svc,
		metrics: collector,
		log:     logger.With().Str("component", "handlers").Logger(),
	}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// MessageResponse acknowledges requests that return no entity
type MessageResponse struct {
	Message string `json:"message"`
}

// writeError maps service and repository errors onto HTTP statuses
func (h *Handler) writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	message := err.Error()

	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrValidation), errors.As(err, &validationErrors):
		status, code = http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, service.ErrConflict):
		status, code = http.StatusConflict, "CONFLICT"
	case errors.Is(err, repository.ErrDuplicateKey), errors.Is(err, repository.ErrForeignKey):
		status, code = http.StatusConflict, "INTEGRITY_ERROR"
	case errors.Is(err, service.ErrStorageNotConfigured), errors.Is(err, service.ErrSearchDisabled):
		status, code = http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"
	}

	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", middleware.GetRequestID(c)).
			Msg("Unhandled error")
		message = "Internal server error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Code: code})
}

func (h *Handler) badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "INVALID_REQUEST"})
}

// uintParam reads a positive integer path parameter
func (h *Handler) uintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || value == 0 {
		h.badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(value), true
}

// optionalUintQuery reads an optional positive integer from the query string
func (h *Handler) optionalUintQuery(c *gin.Context, name string) (*uint, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, true
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		h.badRequest(c, "invalid "+name)
		return nil, false
	}
	id := uint(value)
	return &id, true
}

func (h *Handler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// bindWithFiles decodes a JSON body, or a multipart form whose payload field
// holds the JSON and whose attachments field holds the files
func (h *Handler) bindWithFiles(c *gin.Context, dst interface{}) ([]storage.File, bool) {
	if !isMultipart(c) {
		return nil, h.bindJSON(c, dst)
	}

	form, err := c.MultipartForm()
	if err != nil {
		h.badRequest(c, "invalid multipart form: "+err.Error())
		return nil, false
	}
	payload := form.Value[payloadField]
	if len(payload) == 0 {
		h.badRequest(c, "missing "+payloadField+" field")
		return nil, false
	}
	if err := json.Unmarshal([]byte(payload[0]), dst); err != nil {
		h.badRequest(c, "invalid "+payloadField+": "+err.Error())
		return nil, false
	}

	files, err := readFiles(form.File[attachmentsField])
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	return files, true
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// readFiles loads uploaded parts into memory, skipping parts without a name
func readFiles(headers []*multipart.FileHeader) ([]storage.File, error) {
	files := make([]storage.File, 0, len(headers))
	for _, header := range headers {
		if header.Filename == "" {
			continue
		}
		f, err := header.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open upload %q", header.Filename)
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read upload %q", header.Filename)
		}
		files = append(files, storage.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     content,
		})
	}
	return files, nil
}

func deleted(c *gin.Context, entity string) {
	c.JSON(http.StatusOK, MessageResponse{Message: entity + " deleted successfully"})
}
