// Package service provides the business logic shared by every transport
// (MCP, HTTP API, CLI and TUI). It owns document loading, validation,
// composition, search and export; transports only translate requests into
// these calls.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastkit/fastkit/internal/analytics"
	"github.com/fastkit/fastkit/internal/config"
	"github.com/fastkit/fastkit/internal/errors"
	"github.com/fastkit/fastkit/internal/logger"
	"github.com/fastkit/fastkit/internal/models"
	"github.com/fastkit/fastkit/internal/renderer"
	"github.com/fastkit/fastkit/internal/schema"
	"github.com/fastkit/fastkit/internal/search"
	"github.com/fastkit/fastkit/internal/storage"
	"github.com/fastkit/fastkit/internal/validation"
)

// Service provides business logic for prompt and spec management.
// Every query reloads from disk; files are the source of truth and edits
// made outside the process are picked up on the next call.
type Service struct {
	store     *storage.Store
	schemas   *schema.Registry
	analytics *analytics.Tracker
	cfg       *config.Config
	log       *zap.SugaredLogger
}

// New builds a service over the configured library directory, initializing
// the on-disk layout and seeding builtin prompts on first run
func New(cfg *config.Config) (*Service, error) {
	store, err := storage.NewStore(cfg.LibraryDir, logger.ForComponent("storage"))
	if err != nil {
		return nil, err
	}
	if err := store.InitLayout(); err != nil {
		return nil, err
	}

	log := logger.ForComponent("service")
	tracker, err := analytics.NewTracker(cfg.LibraryDir, cfg.AnalyticsEnabled)
	if err != nil {
		// Usage counters are auxiliary; a broken stats database degrades to
		// zeroed stats instead of blocking every core operation
		log.Warnw("analytics disabled, usage database unavailable", "error", err)
		tracker, _ = analytics.NewTracker(cfg.LibraryDir, false)
	}

	svc := &Service{
		store:     store,
		schemas:   schema.NewRegistry(),
		analytics: tracker,
		cfg:       cfg,
		log:       log,
	}

	if err := svc.seedBuiltinPrompts(); err != nil {
		return nil, err
	}
	return svc, nil
}

// Close releases service resources
func (s *Service) Close() error {
	return s.analytics.Close()
}

// BaseDir returns the library root the service operates on
func (s *Service) BaseDir() string {
	return s.store.BaseDir()
}

// Composition is the result of expanding a prompt template with variables
type Composition struct {
	PromptID      string   `json:"prompt_id"`
	PromptName    string   `json:"prompt_name"`
	Text          string   `json:"composed_prompt"`
	TokenEstimate int      `json:"estimated_tokens"`
	VariablesUsed []string `json:"variables_used"`
}

// SearchResult is one ranked hit from a weighted prompt search
type SearchResult struct {
	Prompt    *models.PromptTemplate `json:"prompt"`
	Score     int                    `json:"score"`
	Relevance float64                `json:"relevance"`
	Reason    string                 `json:"match_reason"`
}

// CreatePromptInput carries the caller-supplied fields of a new custom prompt
type CreatePromptInput struct {
	Name        string
	Description string
	Template    string
	Variables   []models.VariableDefinition
	Tags        []string
	Author      string
}

// ListPrompts reloads the library and returns prompts matching the filter,
// in storage enumeration order
func (s *Service) ListPrompts(ctx context.Context, filter search.PromptFilter) ([]*models.PromptTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prompts, err := s.store.ListPrompts()
	if err != nil {
		return nil, err
	}
	if filter.Limit <= 0 {
		filter.Limit = s.cfg.ListLimit
	}
	return search.FilterPrompts(prompts, filter), nil
}

// PromptCategories returns the distinct categories present in the library,
// sorted, so listings can advertise the known partitions
func (s *Service) PromptCategories(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prompts, err := s.store.ListPrompts()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var categories []string
	for _, p := range prompts {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

// GetPrompt returns a prompt by ID together with its accumulated usage
// statistics
func (s *Service) GetPrompt(ctx context.Context, id string) (*models.PromptTemplate, models.UsageStats, error) {
	prompt, err := s.store.LoadPrompt(id)
	if err != nil {
		return nil, models.UsageStats{}, err
	}

	stats, err := s.analytics.Stats(ctx, id)
	if err != nil {
		// Usage counters are auxiliary; a broken analytics store must not
		// block reads
		s.log.Warnw("failed to load usage stats", "prompt_id", id, "error", err)
		stats = models.UsageStats{}
	}
	return prompt, stats, nil
}

// ComposePrompt validates the supplied variables against the prompt's
// declarations and, only if every rule passes, expands the template.
// Validation failures carry every accumulated message.
func (s *Service) ComposePrompt(ctx context.Context, id string, values map[string]interface{}) (*Composition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prompt, err := s.store.LoadPrompt(id)
	if err != nil {
		return nil, err
	}

	if problems := validation.ValidateVariables(prompt.Variables, values); len(problems) > 0 {
		return nil, errors.ValidationError("variable validation failed").
			WithDetails(strings.Join(problems, "; ")).
			WithContext("prompt_id", id).
			WithContext("errors", problems)
	}

	text, err := renderer.NewPromptRenderer(prompt).Render(values)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, fmt.Sprintf("failed to render prompt '%s'", id))
	}

	// Declaration order; a variable counts as used when it received a
	// supplied value or fell back to its default.
	var used []string
	for _, def := range prompt.Variables {
		if _, ok := values[def.Name]; ok || def.Default != nil {
			used = append(used, def.Name)
		}
	}

	return &Composition{
		PromptID:      prompt.ID,
		PromptName:    prompt.Name,
		Text:          text,
		TokenEstimate: renderer.EstimateTokens(text),
		VariablesUsed: used,
	}, nil
}

// SearchPrompts ranks the full library against the query using weighted
// field matching. Zero-scoring prompts are excluded.
func (s *Service) SearchPrompts(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prompts, err := s.store.ListPrompts()
	if err != nil {
		return nil, err
	}

	docs := make([]search.Searchable, len(prompts))
	for i, p := range prompts {
		docs[i] = p
	}
	if limit <= 0 {
		limit = s.cfg.SearchLimit
	}

	matches := search.Rank(docs, query, limit)
	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			Prompt:    prompts[m.Index],
			Score:     m.Score,
			Relevance: m.Relevance,
			Reason:    m.Reason,
		}
	}
	return results, nil
}

// FuzzySearchPrompts is the interactive lookup used by the TUI and CLI,
// tolerant of typos and partial words
func (s *Service) FuzzySearchPrompts(ctx context.Context, query string) ([]*models.PromptTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prompts, err := s.store.ListPrompts()
	if err != nil {
		return nil, err
	}
	return search.FuzzyPrompts(prompts, query), nil
}

// CreatePrompt stores a new custom prompt with a generated ID and fresh
// timestamps
func (s *Service) CreatePrompt(ctx context.Context, input CreatePromptInput) (*models.PromptTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, errors.ValidationError("prompt name is required")
	}
	if input.Template == "" {
		return nil, errors.ValidationError("prompt template is required")
	}

	now := time.Now().UTC()
	prompt := &models.PromptTemplate{
		ID:        "custom_" + newToken(),
		Category:  "custom",
		Name:      input.Name,
		Summary:   input.Description,
		Version:   "1.0.0",
		Template:  input.Template,
		Variables: input.Variables,
		Metadata: models.PromptMetadata{
			Author:    input.Author,
			CreatedAt: now,
			UpdatedAt: now,
			Tags:      input.Tags,
		},
	}

	if err := s.store.SavePrompt(prompt); err != nil {
		return nil, err
	}
	s.log.Infow("created custom prompt", "id", prompt.ID, "name", prompt.Name)
	return prompt, nil
}

// TrackPromptUsage records one usage event after verifying the prompt
// exists. With analytics disabled the event is discarded.
func (s *Service) TrackPromptUsage(ctx context.Context, promptID string, success bool, completionTimeMs, tokens int) error {
	if _, err := s.store.LoadPrompt(promptID); err != nil {
		return err
	}
	return s.analytics.RecordUsage(ctx, promptID, success, completionTimeMs, tokens)
}

// AnalyticsEnabled reports whether usage events are persisted
func (s *Service) AnalyticsEnabled() bool {
	return s.analytics.Enabled()
}

// newToken returns a short random identifier suffix
func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}
