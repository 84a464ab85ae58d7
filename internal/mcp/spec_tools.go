package mcp

import (
	"context"
	"encoding/json"

	"github.com/fastkit/fastkit/internal/models"
	"github.com/fastkit/fastkit/internal/renderer"
	"github.com/fastkit/fastkit/internal/search"
	"github.com/fastkit/fastkit/internal/service"
)

// NewSpecKitRegistry exposes the specification workshop tool set
func NewSpecKitRegistry(svc *service.Service) *Registry {
	r := NewRegistry()
	for _, t := range []Tool{
		createSpecTool(svc),
		getSpecTool(svc),
		listSpecsTool(svc),
		validateSpecTool(svc),
		exportSpecTool(svc),
		exportToPromptTool(svc),
		listTemplatesTool(svc),
	} {
		r.Register(t)
	}
	return r
}

func createSpecTool(svc *service.Service) Tool {
	return &serviceTool{
		name:        "create_spec",
		description: "Create a new specification document from a template. Content is validated against the template schema; invalid content is stored anyway and the validation report tells you what to fix.",
		schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"template": {"type": "string", "enum": ["prd", "rfc", "adr", "user_story", "api_spec"], "description": "Spec template type"},
				"title": {"type": "string", "description": "Document title"},
				"content": {"type": "object", "description": "Structured document content"},
				"author": {"type": "string"},
				"tags": {"type": "array", "items": {"type": "string"}}
			},
			"required": ["template", "title"]
		}`),
		run: func(ctx context.Context, input json.RawMessage) (interface{}, error) {
			var args struct {
				Template string                 `json:"template"`
				Title    string                 `json:"title"`
				Content  map[string]interface{} `json:"content"`
				Author   string                 `json:"author"`
				Tags     []string               `json:"tags"`
			}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}

			spec, report, err := svc.CreateSpec(ctx, service.CreateSpecInput{
				Template: models.SpecTemplate(args.Template),
				Title:    args.Title,
				Content:  args.Content,
				Author:   args.Author,
				Tags:     args.Tags,
			})
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"spec_id":    spec.Metadata.SpecID,
				"template":   spec.Metadata.Template,
				"status":     spec.Metadata.Status,
				"created_at": spec.Metadata.CreatedAt,
				"validation": report,
			}, nil
		},
	}
}

func getSpecTool(svc *service.Service) Tool {
	return &serviceTool{
		name:        "get_spec",
		description: "Get a specification document by ID",
		schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"spec_id": {"type": "string", "description": "The spec ID"}
			},
			"required": ["spec_id"]
		}`),
		run: func(ctx context.Context, input json.RawMessage) (interface{}, error) {
			var args struct {
				SpecID string `json:"spec_id"`
			}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}
			return svc.GetSpec(ctx, args.SpecID)
		},
	}
}

func listSpecsTool(svc *service.Service) Tool {
	return &serviceTool{
		name:        "list_specs",
		description: "List specification documents, optionally filtered by template, status, tags or a title query",
		schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"template": {"type": "string", "description": "Filter by template type"},
				"status": {"type": "string", "description": "Filter by workflow status"},
				"tags": {"type": "array", "items": {"type": "string"}},
				"query": {"type": "string", "description": "Substring match on title"},
				"limit": {"type": "number"}
			}
		}`),
		run: func(ctx context.Context, input json.RawMessage) (interface{}, error) {
			var args struct {
				Template string   `json:"template"`
				Status   string   `json:"status"`
				Tags     []string `json:"tags"`
				Query    string   `json:"query"`
				Limit    int      `json:"limit"`
			}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}

			specs, truncated, err := svc.ListSpecs(ctx, search.SpecFilter{
				Template: args.Template,
				Status:   args.Status,
				Tags:     args.Tags,
				Query:    args.Query,
				Limit:    args.Limit,
			})
			if err != nil {
				return nil, err
			}

			summaries := make([]models.SpecSummary, len(specs))
			for i, s := range specs {
				summaries[i] = s.Summarize()
			}
			return map[string]interface{}{
				"specs":     summaries,
				"count":     len(summaries),
				"truncated": truncated,
				"templates": models.SpecTemplates,
			}, nil
		},
	}
}

func validateSpecTool(svc *service.Service) Tool {
	return &serviceTool{
		name:        "validate_spec",
		description: "Validate a stored specification against its template schema and report completeness",
		schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"spec_id": {"type": "string", "description": "The spec ID"},
				"strict": {"type": "boolean", "description": "Treat warnings as errors"}
			},
			"required": ["spec_id"]
		}`),
		run: func(ctx context.Context, input json.RawMessage) (interface{}, error) {
			var args struct {
				SpecID string `json:"spec_id"`
				Strict bool   `json:"strict"`
			}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}
			return svc.ValidateSpec(ctx, args.SpecID, args.Strict)
		},
	}
}

func exportSpecTool(svc *service.Service) Tool {
	return &serviceTool{
		name:        "export_spec",
		description: "Export a specification in yaml, json or markdown format",
		schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"spec_id": {"type": "string", "description": "The spec ID"},
				"format": {"type": "string", "enum": ["yaml", "json", "markdown"], "description": "Output format"}
			},
			"required": ["spec_id"]
		}`),
		run: func(ctx context.Context, input json.RawMessage) (interface{}, error) {
			var args struct {
				SpecID string `json:"spec_id"`
				Format string `json:"format"`
			}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}
			if args.Format == "" {
				args.Format = string(renderer.FormatYAML)
			}

			content, err := svc.ExportSpec(ctx, args.SpecID, renderer.Format(args.Format))
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"spec_id": args.SpecID,
				"format":  args.Format,
				"content": content,
			}, nil
		},
	}
}

func exportToPromptTool(svc *service.Service) Tool {
	return &serviceTool{
		name:        "export_to_prompt",
		description: "Flatten a specification into an implementation-task prompt with a token estimate",
		schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"spec_id": {"type": "string", "description": "The spec ID"}
			},
			"required": ["spec_id"]
		}`),
		run: func(ctx context.Context, input json.RawMessage) (interface{}, error) {
			var args struct {
				SpecID string `json:"spec_id"`
			}
			if err := decodeArgs(input, &args); err != nil {
				return nil, err
			}

			text, tokens, err := svc.ExportSpecToPrompt(ctx, args.SpecID)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"spec_id":          args.SpecID,
				"prompt":           text,
				"estimated_tokens": tokens,
			}, nil
		},
	}
}

func listTemplatesTool(svc *service.Service) Tool {
	return &serviceTool{
		name:        "list_templates",
		description: "List the supported specification templates and their schema enforcement status",
		schema: json.RawMessage(`{
			"type": "object",
			"properties": {}
		}`),
		run: func(ctx context.Context, input json.RawMessage) (interface{}, error) {
			return map[string]interface{}{
				"templates": svc.ListSpecTemplates(),
			}, nil
		},
	}
}
