// Package api provides the RESTful HTTP interface of fast-kit.
//
// SYSTEM ARCHITECTURE ROLE:
// This module implements the HTTP interface layer of the system. It exposes
// the prompt library and the spec workshop over versioned REST endpoints
// with a consistent JSON envelope, and serves its own OpenAPI documentation.
//
// KEY RESPONSIBILITIES:
// - Expose prompt and spec operations via RESTful HTTP endpoints
// - Apply the middleware stack (logging, CORS, content type, panic recovery)
// - Standardize responses with a consistent JSON structure
// - Map application error codes to HTTP status codes
//
// INTEGRATION POINTS:
// - internal/service: all operations execute through the Service
// - internal/errors/handlers.go: HTTPErrorHandler formats error responses
// - internal/api/openapi.go: spec served at /api/docs and /api/openapi.json
//
// ENDPOINT STRUCTURE:
// - /api/v1/prompts: prompt listing, creation, retrieval, composition
// - /api/v1/search: weighted prompt search
// - /api/v1/specs: spec listing, creation, validation, export
// - /api/v1/templates: spec template catalog
// - /api/v1/health: liveness probe
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastkit/fastkit/internal/errors"
	"github.com/fastkit/fastkit/internal/logger"
	"github.com/fastkit/fastkit/internal/models"
	"github.com/fastkit/fastkit/internal/renderer"
	"github.com/fastkit/fastkit/internal/search"
	"github.com/fastkit/fastkit/internal/service"
)

// APIServer exposes the service over HTTP
type APIServer struct {
	service      *service.Service
	errorHandler *errors.HTTPErrorHandler
	port         int
	server       *http.Server
	log          *zap.SugaredLogger
}

// NewAPIServer creates a new API server instance
func NewAPIServer(svc *service.Service, port int) *APIServer {
	return &APIServer{
		service:      svc,
		errorHandler: errors.NewHTTPErrorHandler(true, logger.ForComponent("api")),
		port:         port,
		log:          logger.ForComponent("api"),
	}
}

// Handler builds the routed handler with the full middleware stack
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/prompts", s.withMiddleware(s.handlePrompts))
	mux.HandleFunc("/api/v1/prompts/", s.withMiddleware(s.handlePromptsWithID))
	mux.HandleFunc("/api/v1/search", s.withMiddleware(s.handleSearch))
	mux.HandleFunc("/api/v1/specs", s.withMiddleware(s.handleSpecs))
	mux.HandleFunc("/api/v1/specs/", s.withMiddleware(s.handleSpecsWithID))
	mux.HandleFunc("/api/v1/templates", s.withMiddleware(s.handleTemplates))
	mux.HandleFunc("/api/v1/health", s.withMiddleware(s.handleHealth))

	mux.HandleFunc("/api/docs", s.withMiddleware(s.handleOpenAPI))
	mux.HandleFunc("/api/openapi.json", s.withMiddleware(s.handleOpenAPISpec))

	return mux
}

// Start begins serving HTTP requests
func (s *APIServer) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.log.Infow("api server starting",
		"addr", fmt.Sprintf("http://localhost:%d", s.port),
		"docs", fmt.Sprintf("http://localhost:%d/api/docs", s.port))

	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *APIServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// withMiddleware applies the middleware stack to a handler
func (s *APIServer) withMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	return s.loggingMiddleware(
		s.corsMiddleware(
			s.contentTypeMiddleware(
				s.recoveryMiddleware(handler),
			),
		),
	)
}

func (s *APIServer) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		s.log.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"duration", time.Since(start))
	}
}

func (s *APIServer) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

func (s *APIServer) contentTypeMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next(w, r)
	}
}

func (s *APIServer) recoveryMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Errorw("panic in handler", "panic", err, "path", r.URL.Path)
				s.errorHandler.WriteHTTPError(w, errors.InternalError("Internal server error"))
			}
		}()
		next(w, r)
	}
}

// APIResponse is the standardized response envelope
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func (s *APIServer) writeResponse(w http.ResponseWriter, data interface{}, message string, statusCode int) {
	response := APIResponse{
		Success:   statusCode < 400,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	w.WriteHeader(statusCode)
	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		json.NewEncoder(w).Encode(response)
		return
	}
	w.Write(jsonData)
}

func (s *APIServer) writeError(w http.ResponseWriter, err error) {
	s.errorHandler.WriteHTTPError(w, err)
}

func (s *APIServer) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, errors.NewAppError(errors.ErrCodeInvalidInput,
		fmt.Sprintf("Method %s not allowed", r.Method)))
}

// handlePrompts handles /api/v1/prompts
func (s *APIServer) handlePrompts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListPrompts(w, r)
	case http.MethodPost:
		s.handleCreatePrompt(w, r)
	default:
		s.methodNotAllowed(w, r)
	}
}

// handlePromptsWithID handles /api/v1/prompts/{id} and its sub-resources
func (s *APIServer) handlePromptsWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/prompts/")
	if path == "" {
		s.writeError(w, errors.ValidationError("Prompt ID is required"))
		return
	}

	id, action, _ := strings.Cut(path, "/")
	switch {
	case action == "" && r.Method == http.MethodGet:
		s.handleGetPrompt(w, r, id)
	case action == "compose" && r.Method == http.MethodPost:
		s.handleComposePrompt(w, r, id)
	case action == "usage" && r.Method == http.MethodPost:
		s.handleTrackUsage(w, r, id)
	default:
		s.methodNotAllowed(w, r)
	}
}

func (s *APIServer) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := search.PromptFilter{
		Category: q.Get("category"),
		Query:    q.Get("q"),
		Limit:    queryInt(q.Get("limit")),
	}
	if tags := q.Get("tags"); tags != "" {
		filter.Tags = strings.Split(tags, ",")
	}

	prompts, err := s.service.ListPrompts(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}

	categories, err := s.service.PromptCategories(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	summaries := make([]models.PromptSummary, len(prompts))
	for i, p := range prompts {
		summaries[i] = p.Summarize()
	}
	s.writeResponse(w, map[string]interface{}{
		"prompts":    summaries,
		"count":      len(summaries),
		"categories": categories,
	}, "", http.StatusOK)
}

func (s *APIServer) handleGetPrompt(w http.ResponseWriter, r *http.Request, id string) {
	prompt, stats, err := s.service.GetPrompt(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if r.URL.Query().Get("include_examples") != "true" {
		trimmed := *prompt
		trimmed.Examples = nil
		prompt = &trimmed
	}
	s.writeResponse(w, map[string]interface{}{
		"prompt":      prompt,
		"usage_stats": stats,
	}, "", http.StatusOK)
}

func (s *APIServer) handleCreatePrompt(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string                      `json:"name"`
		Description string                      `json:"description"`
		Template    string                      `json:"template"`
		Variables   []models.VariableDefinition `json:"variables"`
		Tags        []string                    `json:"tags"`
		Author      string                      `json:"author"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, errors.ValidationError("Invalid JSON body"))
		return
	}

	prompt, err := s.service.CreatePrompt(r.Context(), service.CreatePromptInput{
		Name:        body.Name,
		Description: body.Description,
		Template:    body.Template,
		Variables:   body.Variables,
		Tags:        body.Tags,
		Author:      body.Author,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, prompt, fmt.Sprintf("Created prompt '%s'", prompt.Name), http.StatusCreated)
}

func (s *APIServer) handleComposePrompt(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Variables map[string]interface{} `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, errors.ValidationError("Invalid JSON body"))
		return
	}

	comp, err := s.service.ComposePrompt(r.Context(), id, body.Variables)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, comp, "", http.StatusOK)
}

func (s *APIServer) handleTrackUsage(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Success          bool `json:"success"`
		CompletionTimeMs int  `json:"completion_time_ms"`
		TokensUsed       int  `json:"tokens_used"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, errors.ValidationError("Invalid JSON body"))
		return
	}

	if err := s.service.TrackPromptUsage(r.Context(), id, body.Success, body.CompletionTimeMs, body.TokensUsed); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, map[string]interface{}{
		"recorded": s.service.AnalyticsEnabled(),
	}, "", http.StatusOK)
}

// handleSearch handles GET /api/v1/search?q=...
func (s *APIServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, errors.ValidationError("Query parameter 'q' is required"))
		return
	}

	results, err := s.service.SearchPrompts(r.Context(), query, queryInt(r.URL.Query().Get("limit")))
	if err != nil {
		s.writeError(w, err)
		return
	}

	hits := make([]map[string]interface{}, len(results))
	for i, res := range results {
		hits[i] = map[string]interface{}{
			"prompt":       res.Prompt.Summarize(),
			"score":        res.Score,
			"relevance":    res.Relevance,
			"match_reason": res.Reason,
		}
	}
	s.writeResponse(w, map[string]interface{}{
		"results": hits,
		"count":   len(hits),
	}, "", http.StatusOK)
}

// handleSpecs handles /api/v1/specs
func (s *APIServer) handleSpecs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListSpecs(w, r)
	case http.MethodPost:
		s.handleCreateSpec(w, r)
	default:
		s.methodNotAllowed(w, r)
	}
}

// handleSpecsWithID handles /api/v1/specs/{id} and its sub-resources
func (s *APIServer) handleSpecsWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/specs/")
	if path == "" {
		s.writeError(w, errors.ValidationError("Spec ID is required"))
		return
	}

	id, action, _ := strings.Cut(path, "/")
	switch {
	case action == "" && r.Method == http.MethodGet:
		s.handleGetSpec(w, r, id)
	case action == "validate" && r.Method == http.MethodGet:
		s.handleValidateSpec(w, r, id)
	case action == "export" && r.Method == http.MethodGet:
		s.handleExportSpec(w, r, id)
	case action == "prompt" && r.Method == http.MethodGet:
		s.handleSpecToPrompt(w, r, id)
	default:
		s.methodNotAllowed(w, r)
	}
}

func (s *APIServer) handleListSpecs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := search.SpecFilter{
		Template: q.Get("template"),
		Status:   q.Get("status"),
		Query:    q.Get("q"),
		Limit:    queryInt(q.Get("limit")),
	}
	if tags := q.Get("tags"); tags != "" {
		filter.Tags = strings.Split(tags, ",")
	}

	specs, truncated, err := s.service.ListSpecs(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}

	summaries := make([]models.SpecSummary, len(specs))
	for i, sp := range specs {
		summaries[i] = sp.Summarize()
	}
	s.writeResponse(w, map[string]interface{}{
		"specs":     summaries,
		"count":     len(summaries),
		"truncated": truncated,
	}, "", http.StatusOK)
}

func (s *APIServer) handleCreateSpec(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Template string                 `json:"template"`
		Title    string                 `json:"title"`
		Content  map[string]interface{} `json:"content"`
		Author   string                 `json:"author"`
		Tags     []string               `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, errors.ValidationError("Invalid JSON body"))
		return
	}

	spec, report, err := s.service.CreateSpec(r.Context(), service.CreateSpecInput{
		Template: models.SpecTemplate(body.Template),
		Title:    body.Title,
		Content:  body.Content,
		Author:   body.Author,
		Tags:     body.Tags,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, map[string]interface{}{
		"spec":       spec,
		"validation": report,
	}, fmt.Sprintf("Created %s spec '%s'", spec.Metadata.Template, spec.Metadata.Title), http.StatusCreated)
}

func (s *APIServer) handleGetSpec(w http.ResponseWriter, r *http.Request, id string) {
	spec, err := s.service.GetSpec(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, spec, "", http.StatusOK)
}

func (s *APIServer) handleValidateSpec(w http.ResponseWriter, r *http.Request, id string) {
	strict := r.URL.Query().Get("strict") == "true"
	report, err := s.service.ValidateSpec(r.Context(), id, strict)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, report, "", http.StatusOK)
}

func (s *APIServer) handleExportSpec(w http.ResponseWriter, r *http.Request, id string) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = string(renderer.FormatYAML)
	}

	content, err := s.service.ExportSpec(r.Context(), id, renderer.Format(format))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, map[string]interface{}{
		"spec_id": id,
		"format":  format,
		"content": content,
	}, "", http.StatusOK)
}

func (s *APIServer) handleSpecToPrompt(w http.ResponseWriter, r *http.Request, id string) {
	text, tokens, err := s.service.ExportSpecToPrompt(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, map[string]interface{}{
		"spec_id":          id,
		"prompt":           text,
		"estimated_tokens": tokens,
	}, "", http.StatusOK)
}

// handleTemplates handles GET /api/v1/templates
func (s *APIServer) handleTemplates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	s.writeResponse(w, map[string]interface{}{
		"templates": s.service.ListSpecTemplates(),
	}, "", http.StatusOK)
}

// handleHealth handles GET /api/v1/health
func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	s.writeResponse(w, map[string]interface{}{
		"status":      "healthy",
		"library_dir": s.service.BaseDir(),
	}, "", http.StatusOK)
}

func queryInt(raw string) int {
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
