package http

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"urlshortener/internal/domain"
	"urlshortener/pkg/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Client-facing messages
const (
	msgInvalidURL   = "Invalid URL"
	msgWrongFormat  = "Wrong format"
	msgNotFound     = "No short URL found for the given input"
	msgStoreFailure = "Database error"
)

// URLService interface defines the service methods needed by the handler
type URLService interface {
	Shorten(ctx context.Context, rawURL string) (*domain.URL, error)
	Resolve(ctx context.Context, code string) (string, error)
	Ping(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	urlService URLService
	logger     *zap.Logger
	viewsDir   string
}

// NewHandler creates a new HTTP handler. viewsDir holds index.html.
func NewHandler(urlService URLService, logger *zap.Logger, viewsDir string) *Handler {
	return &Handler{
		urlService: urlService,
		logger:     logger.With(zap.String("module", "handler/http")),
		viewsDir:   viewsDir,
	}
}

type createShortURLRequest struct {
	URL string `json:"url"`
}

// ShortURLResponse is returned by POST /api/shorturl
type ShortURLResponse struct {
	OriginalURL string `json:"original_url"`
	ShortURL    int64  `json:"short_url"`
}

// CreateShortURL handles POST /api/shorturl.
// The URL comes from the "url" form field or a JSON body {"url": ...}.
func (h *Handler) CreateShortURL(w http.ResponseWriter, r *http.Request) {
	rawURL, err := readURLField(r)
	if err != nil {
		h.logger.Debug("unreadable request body", logger.RequestID(r.Context()), zap.Error(err))
		respondError(w, http.StatusBadRequest, msgInvalidURL)
		return
	}

	url, err := h.urlService.Shorten(r.Context(), rawURL)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, ShortURLResponse{
		OriginalURL: url.OriginalURL,
		ShortURL:    url.ShortCode,
	})
}

// Redirect handles GET /api/shorturl/{urlId}
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "urlId")

	target, err := h.urlService.Resolve(r.Context(), code)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// HealthCheck handles GET /health/live
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Readiness handles GET /health/ready
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	if err := h.urlService.Ping(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", logger.RequestID(r.Context()), zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// respondServiceError maps service errors to a status code and message
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidURL):
		respondError(w, http.StatusBadRequest, msgInvalidURL)
	case errors.Is(err, domain.ErrMalformedCode):
		respondError(w, http.StatusBadRequest, msgWrongFormat)
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, msgNotFound)
	default:
		h.logger.Error("request failed",
			logger.RequestID(r.Context()),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, msgStoreFailure)
	}
}

func readURLField(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req createShortURLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", err
		}
		return req.URL, nil
	}

	// FormValue handles both urlencoded and multipart bodies
	return r.FormValue("url"), nil
}
