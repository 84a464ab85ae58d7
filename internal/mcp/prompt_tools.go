package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fastkit/fastkit/internal/models"
	"github.com/fastkit/fastkit/internal/search"
	"github.com/fastkit/fastkit/internal/service"
)

// serviceTool adapts one service call into the Tool interface
type serviceTool struct {
	name        string
	description string
	schema      json.RawMessage
	run         func(ctx context.Context, input json.RawMessage) (interface{}, error)
}

func (t *serviceTool) Name() string            { return t.name }
func (t *serviceTool) Description() string     { return t.description }
func (t *serviceTool) Schema() json.RawMessage { return t.schema }
func (t *serviceTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	return t.run(ctx, input)
}

func decodeArgs(input json.RawMessage, target interface{}) error {
	if len(input) == 0 {
		return nil
	}
	if err := json.Unmarshal(input, target); err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}
	return nil
}

// NewPromptKitRegistry exposes the prompt library tool set
func NewPromptKitRegistry(svc *service.Service) *Registry {
	r := NewRegistry()
	for _, t := range []Tool{
		listPromptsTool(svc),
		getPromptTool(svc),
		composePromptTool(svc),
		searchPromptsTool(svc),
		createCustomPromptTool(svc),
		trackPromptUsageTool(svc),
	} {
		r.Register(t)
	}
	return r
}

func listPromptsTool(svc *service.Service) Tool {
	return &serviceTool{
		name:        "list_prompts",
		description: "List available prompt templates, optionally filtered by category, tags or a text query",
		schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"category": {"type": "string", "description": "Filter by category"},
				"tags": {"type": "array", "items": {"type": "string"}, "description": "Filter by tags (any match)"},
				"query": {"type": "string", "description": "Substring match on name and description"},
				"limit": {"type": "number", "description": "Maximum number of results"}
			}
		}`),
		run: func(ctx context.Context, input json.RawMessage) (interface{}, error) {
			var args struct {
				Category string   `json:"category"`
				Tags     []string `json:"tags"`
				Query    string   `json:"query"`
				Limit    int      `json:"limit"`
			}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}

			prompts, err := svc.ListPrompts(ctx, search.PromptFilter{
				Category: args.Category,
				Tags:     args.Tags,
				Query:    args.Query,
				Limit:    args.Limit,
			})
			if err != nil {
				return nil, err
			}

			categories, err := svc.PromptCategories(ctx)
			if err != nil {
				return nil, err
			}

			summaries := make([]models.PromptSummary, len(prompts))
			for i, p := range prompts {
				summaries[i] = p.Summarize()
			}
			return map[string]interface{}{
				"prompts":    summaries,
				"count":      len(summaries),
				"categories": categories,
			}, nil
		},
	}
}

func getPromptTool(svc *service.Service) Tool {
	return &serviceTool{
		name:        "get_prompt",
		description: "Get the full definition of a prompt template including variables and usage statistics",
		schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"prompt_id": {"type": "string", "description": "The prompt template ID"},
				"include_examples": {"type": "boolean", "description": "Include worked input/output examples"}
			},
			"required": ["prompt_id"]
		}`),
		run: func(ctx context.Context, input json.RawMessage) (interface{}, error) {
			var args struct {
				PromptID        string `json:"prompt_id"`
				IncludeExamples bool   `json:"include_examples"`
			}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}

			prompt, stats, err := svc.GetPrompt(ctx, args.PromptID)
			if err != nil {
				return nil, err
			}
			if !args.IncludeExamples {
				trimmed := *prompt
				trimmed.Examples = nil
				prompt = &trimmed
			}
			return map[string]interface{}{
				"prompt":      prompt,
				"usage_stats": stats,
			}, nil
		},
	}
}

func composePromptTool(svc *service.Service) Tool {
	return &serviceTool{
		name:        "compose_prompt",
		description: "Expand a prompt template with variable values after validating them against the template's declarations",
		schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"prompt_id": {"type": "string", "description": "The prompt template ID"},
				"variables": {"type": "object", "description": "Variable values keyed by name"}
			},
			"required": ["prompt_id"]
		}`),
		run: func(ctx context.Context, input json.RawMessage) (interface{}, error) {
			var args struct {
				PromptID  string                 `json:"prompt_id"`
				Variables map[string]interface{} `json:"variables"`
			}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}
			return svc.ComposePrompt(ctx, args.PromptID, args.Variables)
		},
	}
}

func searchPromptsTool(svc *service.Service) Tool {
	return &serviceTool{
		name:        "search_prompts",
		description: "Search prompt templates with weighted matching on name, description and tags",
		schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Search query"},
				"limit": {"type": "number", "description": "Maximum number of results"}
			},
			"required": ["query"]
		}`),
		run: func(ctx context.Context, input json.RawMessage) (interface{}, error) {
			var args struct {
				Query string `json:"query"`
				Limit int    `json:"limit"`
			}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}

			results, err := svc.SearchPrompts(ctx, args.Query, args.Limit)
			if err != nil {
				return nil, err
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
			return map[string]interface{}{
				"results": hits,
				"count":   len(hits),
			}, nil
		},
	}
}

func createCustomPromptTool(svc *service.Service) Tool {
	return &serviceTool{
		name:        "create_custom_prompt",
		description: "Create and store a new custom prompt template",
		schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Prompt name"},
				"description": {"type": "string", "description": "What the prompt does"},
				"template": {"type": "string", "description": "Template text with {{.variable}} placeholders"},
				"variables": {"type": "array", "description": "Variable declarations", "items": {"type": "object"}},
				"tags": {"type": "array", "items": {"type": "string"}}
			},
			"required": ["name", "template"]
		}`),
		run: func(ctx context.Context, input json.RawMessage) (interface{}, error) {
			var args struct {
				Name        string                      `json:"name"`
				Description string                      `json:"description"`
				Template    string                      `json:"template"`
				Variables   []models.VariableDefinition `json:"variables"`
				Tags        []string                    `json:"tags"`
			}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}

			prompt, err := svc.CreatePrompt(ctx, service.CreatePromptInput{
				Name:        args.Name,
				Description: args.Description,
				Template:    args.Template,
				Variables:   args.Variables,
				Tags:        args.Tags,
			})
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"prompt_id":  prompt.ID,
				"created_at": prompt.Metadata.CreatedAt,
				"message":    fmt.Sprintf("Created custom prompt '%s'", prompt.Name),
			}, nil
		},
	}
}

func trackPromptUsageTool(svc *service.Service) Tool {
	return &serviceTool{
		name:        "track_prompt_usage",
		description: "Record one usage event for a prompt template",
		schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"prompt_id": {"type": "string", "description": "The prompt template ID"},
				"success": {"type": "boolean", "description": "Whether the composed prompt produced a useful result"},
				"completion_time_ms": {"type": "number", "description": "Wall time of the downstream completion"},
				"tokens_used": {"type": "number", "description": "Tokens consumed by the completion"}
			},
			"required": ["prompt_id", "success"]
		}`),
		run: func(ctx context.Context, input json.RawMessage) (interface{}, error) {
			var args struct {
				PromptID         string `json:"prompt_id"`
				Success          bool   `json:"success"`
				CompletionTimeMs int    `json:"completion_time_ms"`
				TokensUsed       int    `json:"tokens_used"`
			}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}

			if err := svc.TrackPromptUsage(ctx, args.PromptID, args.Success, args.CompletionTimeMs, args.TokensUsed); err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"recorded": svc.AnalyticsEnabled(),
			}, nil
		},
	}
}
