package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"synthkit/internal/cache"
	"synthkit/internal/logger"
	"synthkit/internal/models"
	"synthkit/internal/synthesis"

	"github.com/gorilla/mux"
)

// maxBatchIdentifiers bounds the size of a single batch request
const maxBatchIdentifiers = 100

// Handler contains the HTTP handlers for the API
type Handler struct {
	synthesisService synthesis.SynthesisService
	resultStore      cache.Service
	logger           logger.Service
}

// NewHandler creates a new HTTP handler
func NewHandler(
	synthesisService synthesis.SynthesisService,
	resultStore cache.Service,
	logger logger.Service,
) *Handler {
	return &Handler{
		synthesisService: synthesisService,
		resultStore:      resultStore,
		logger:           logger,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// CacheOpResponse represents the outcome of a cache administration call
type CacheOpResponse struct {
	Removed   int       `json:"removed"`
	Timestamp time.Time `json:"timestamp"`
}

// writeJSONResponse writes a JSON response with standard headers including X-Request-ID
func (h *Handler) writeJSONResponse(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) error {
	// Extract LogEvent from context to get ProcessID for X-Request-ID header
	logEvent := logger.GetLogEvent(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", logEvent.ProcessID)
	w.WriteHeader(statusCode)

	return json.NewEncoder(w).Encode(data)
}

// Generate handles POST /api/generate
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	// LogEvent is automatically created by logging middleware
	ctx := r.Context()

	var request models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.LogError(ctx, logger.OpGenerate, "", "Invalid request body", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if request.Generator == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "generator is required", "")
		return
	}
	if request.Identifier == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "identifier is required", "")
		return
	}

	h.logger.LogInfo(ctx, logger.OpGenerate, fmt.Sprintf("Starting generation for identifier: %s", request.Identifier), map[string]interface{}{
		"generator":  request.Generator,
		"identifier": request.Identifier,
	})

	ttl := time.Duration(request.TTLSeconds) * time.Second
	result, err := h.synthesisService.Synthesize(ctx, request.Generator, request.Identifier, request.Params, ttl)
	if err != nil {
		h.logger.LogError(ctx, logger.OpGenerate, request.Identifier, "Generation failed", err, models.LogSeverityMedium, nil)

		statusCode := h.getStatusCodeForError(err)
		h.writeErrorResponse(w, r, statusCode, "generation failed", err.Error())
		return
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, result); err != nil {
		// Response already sent with 200, but log the encoding error
		h.logger.LogError(ctx, logger.OpGenerate, request.Identifier, "Failed to encode response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogSuccess(ctx, logger.OpGenerate, request.Identifier, "Successfully completed generation", nil)
}

// BatchGenerate handles POST /api/batch-generate
func (h *Handler) BatchGenerate(w http.ResponseWriter, r *http.Request) {
	// LogEvent is automatically created by logging middleware
	ctx := r.Context()

	var request models.BatchGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.LogError(ctx, logger.OpBatchGenerate, "", "Invalid request body", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if request.Generator == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "generator is required", "")
		return
	}
	if len(request.Identifiers) == 0 {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "identifiers array cannot be empty", "")
		return
	}
	if len(request.Identifiers) > maxBatchIdentifiers {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "too many identifiers", fmt.Sprintf("Maximum %d identifiers per batch", maxBatchIdentifiers))
		return
	}

	h.logger.LogInfo(ctx, logger.OpBatchGenerate, fmt.Sprintf("Starting batch generation for %d identifiers", len(request.Identifiers)), map[string]interface{}{
		"generator":         request.Generator,
		"identifiers_count": len(request.Identifiers),
	})

	response, err := h.synthesisService.SynthesizeBatch(ctx, request.Generator, request.Identifiers, request.Params)
	if err != nil {
		h.logger.LogError(ctx, logger.OpBatchGenerate, "", "Batch generation failed", err, models.LogSeverityMedium, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "batch generation failed", err.Error())
		return
	}

	statusCode := h.getBatchStatusCode(response)

	if err := h.writeJSONResponse(w, r, statusCode, response); err != nil {
		// Response already sent with status code, but log the encoding error
		h.logger.LogError(ctx, logger.OpBatchGenerate, "", "Failed to encode batch response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogSuccess(ctx, logger.OpBatchGenerate, "", fmt.Sprintf("Completed batch generation: %d succeeded, %d failed", response.Summary.Succeeded, response.Summary.Failed), map[string]interface{}{
		"total":     response.Summary.Total,
		"succeeded": response.Summary.Succeeded,
		"failed":    response.Summary.Failed,
	})
}

// Fuse handles POST /api/fusion
func (h *Handler) Fuse(w http.ResponseWriter, r *http.Request) {
	// LogEvent is automatically created by logging middleware
	ctx := r.Context()

	var request models.FusionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.LogError(ctx, logger.OpFusion, "", "Invalid request body", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.synthesisService.FuseSources(ctx, request.Sources, request.KeyField)
	if err != nil {
		h.logger.LogError(ctx, logger.OpFusion, request.KeyField, "Fusion failed", err, models.LogSeverityMedium, nil)
		h.writeErrorResponse(w, r, h.getStatusCodeForError(err), "fusion failed", err.Error())
		return
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, result); err != nil {
		h.logger.LogError(ctx, logger.OpFusion, request.KeyField, "Failed to encode fusion response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogSuccess(ctx, logger.OpFusion, request.KeyField, "Successfully fused sources", map[string]interface{}{
		"merged_count": result.Report.MergedCount,
	})
}

// InvalidateCacheKey handles DELETE /api/cache/{key}
func (h *Handler) InvalidateCacheKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vars := mux.Vars(r)
	key := vars["key"]
	if key == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "key is required", "")
		return
	}

	if err := h.resultStore.Delete(ctx, key); err != nil {
		h.logger.LogError(ctx, logger.OpCacheEvict, key, "Failed to delete cache entry", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "cache delete failed", err.Error())
		return
	}

	h.logger.LogSuccess(ctx, logger.OpCacheEvict, key, "Deleted cache entry", nil)
	_ = h.writeJSONResponse(w, r, http.StatusOK, CacheOpResponse{Removed: 1, Timestamp: time.Now().UTC()})
}

// InvalidateCachePattern handles DELETE /api/cache?pattern=
func (h *Handler) InvalidateCachePattern(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "pattern query parameter is required", "")
		return
	}

	removed, err := h.resultStore.DeletePattern(ctx, pattern)
	if err != nil {
		h.logger.LogError(ctx, logger.OpCacheEvict, pattern, "Failed to delete cache entries by pattern", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "cache delete failed", err.Error())
		return
	}

	h.logger.LogSuccess(ctx, logger.OpCacheEvict, pattern, fmt.Sprintf("Deleted %d cache entries", removed), map[string]interface{}{
		"pattern": pattern,
		"removed": removed,
	})
	_ = h.writeJSONResponse(w, r, http.StatusOK, CacheOpResponse{Removed: removed, Timestamp: time.Now().UTC()})
}

// CleanupCache handles POST /api/cache/cleanup
func (h *Handler) CleanupCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	removed, err := h.resultStore.PurgeExpired(ctx)
	if err != nil {
		h.logger.LogError(ctx, logger.OpCacheEvict, "", "Failed to purge expired cache entries", err, models.LogSeverityLow, nil)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "cache cleanup failed", err.Error())
		return
	}

	h.logger.LogSuccess(ctx, logger.OpCacheEvict, "", fmt.Sprintf("Purged %d expired cache entries", removed), nil)
	_ = h.writeJSONResponse(w, r, http.StatusOK, CacheOpResponse{Removed: removed, Timestamp: time.Now().UTC()})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	// LogEvent is automatically created by logging middleware
	ctx := r.Context()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
	}

	if err := h.writeJSONResponse(w, r, http.StatusOK, response); err != nil {
		// Response already sent with 200, but log the encoding error
		h.logger.LogError(ctx, logger.OpHealthCheck, "", "Failed to encode health response", err, models.LogSeverityLow, nil)
		return
	}

	h.logger.LogInfo(ctx, logger.OpHealthCheck, "Health check performed successfully", nil)
}

// writeErrorResponse writes a standardized error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, error, message string) {
	response := ErrorResponse{
		Error:     error,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	if err := h.writeJSONResponse(w, r, statusCode, response); err != nil {
		// Encoding failed - response already sent with status code, but log the error
		h.logger.LogError(r.Context(), "response_encoding", "", "Failed to encode error response", err, models.LogSeverityLow, nil)
	}
}

// getStatusCodeForError determines the appropriate HTTP status code for an error
func (h *Handler) getStatusCodeForError(err error) int {
	switch {
	case errors.Is(err, models.ErrEmptyIdentifier),
		errors.Is(err, models.ErrUnknownGenerator),
		errors.Is(err, models.ErrMissingKeyField):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// getBatchStatusCode determines the status code for batch responses
func (h *Handler) getBatchStatusCode(response *models.BatchGenerateResponse) int {
	if response.Summary.Failed == 0 {
		// All succeeded
		return http.StatusOK
	} else if response.Summary.Succeeded == 0 {
		// All failed
		return http.StatusBadRequest
	} else {
		// Partial success - use 207 Multi-Status
		return http.StatusMultiStatus
	}
}
