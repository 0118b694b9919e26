// Package handler provides HTTP handlers for all API endpoints.
// Handlers delegate to the query pipeline — no service layer.
package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/hooplens/hooplens/internal/api/respond"
	"github.com/hooplens/hooplens/internal/cache"
	"github.com/hooplens/hooplens/internal/config"
	"github.com/hooplens/hooplens/internal/query"
)

// maxQuestionBytes bounds the request body read for query endpoints.
const maxQuestionBytes = 1 << 16

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	pipeline *query.Pipeline
	cache    *cache.Cache
	cfg      *config.Config
}

// New creates a Handler with shared dependencies.
func New(pipeline *query.Pipeline, c *cache.Cache, cfg *config.Config) *Handler {
	return &Handler{
		pipeline: pipeline,
		cache:    c,
		cfg:      cfg,
	}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"name":    "HoopLens API",
		"version": "1.0.0",
		"status":  "running",
		"features": []string{
			"natural_language_queries",
			"llm_query_analysis",
			"snapshot_datasets",
			"in_memory_cache",
			"gzip_compression",
		},
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type questionRequest struct {
	Question string `json:"question"`
}

// readQuestion decodes and validates the shared request body shape. A
// written response means the caller should return immediately.
func readQuestion(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req questionRequest
	body := http.MaxBytesReader(w, r.Body, maxQuestionBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON with a question field")
		return "", false
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		respond.WriteError(w, http.StatusBadRequest, "EMPTY_QUESTION", "Question must not be empty")
		return "", false
	}
	return question, true
}

// Query answers a natural-language question about NBA stats.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	question, ok := readQuestion(w, r)
	if !ok {
		return
	}

	answer := h.pipeline.Query(r.Context(), question)
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"question": question,
		"answer":   answer,
	})
}

// Analyze returns the structured analysis for a question without
// retrieving data or generating an answer. Debugging aid.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	question, ok := readQuestion(w, r)
	if !ok {
		return
	}

	analysis := h.pipeline.Analyze(r.Context(), question)
	respond.WriteJSONObject(w, http.StatusOK, map[string]any{
		"question": question,
		"analysis": analysis,
	})
}
