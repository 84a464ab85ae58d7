package api

import (
	"encoding/json"
	"net/http"
)

// handleOpenAPI serves the interactive documentation page
func (s *APIServer) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}

	html := `<!DOCTYPE html>
<html>
<head>
    <title>fast-kit API Documentation</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@4.15.5/swagger-ui.css" />
    <style>
        html { box-sizing: border-box; overflow: -moz-scrollbars-vertical; overflow-y: scroll; }
        *, *:before, *:after { box-sizing: inherit; }
        body { margin:0; background: #fafafa; }
    </style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4.15.5/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: '/api/openapi.json',
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [SwaggerUIBundle.presets.apis],
            });
        };
    </script>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// handleOpenAPISpec serves the OpenAPI JSON specification
func (s *APIServer) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(getOpenAPISpec())
}

// getOpenAPISpec returns the OpenAPI 3.0 specification
func getOpenAPISpec() map[string]interface{} {
	jsonObject := func(description string) map[string]interface{} {
		return map[string]interface{}{
			"description": description,
			"content": map[string]interface{}{
				"application/json": map[string]interface{}{
					"schema": map[string]interface{}{"$ref": "#/components/schemas/APIResponse"},
				},
			},
		}
	}
	pathParam := func(name, description string) map[string]interface{} {
		return map[string]interface{}{
			"name":        name,
			"in":          "path",
			"required":    true,
			"description": description,
			"schema":      map[string]interface{}{"type": "string"},
		}
	}
	queryParam := func(name, typ, description string) map[string]interface{} {
		return map[string]interface{}{
			"name":        name,
			"in":          "query",
			"description": description,
			"schema":      map[string]interface{}{"type": typ},
		}
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":       "fast-kit API",
			"description": "Prompt template library and engineering spec workshop",
			"version":     "1.0.0",
		},
		"servers": []map[string]interface{}{
			{"url": "/", "description": "This server"},
		},
		"paths": map[string]interface{}{
			"/api/v1/prompts": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "List prompt templates",
					"parameters": []map[string]interface{}{
						queryParam("category", "string", "Filter by category"),
						queryParam("tags", "string", "Comma-separated tag filter"),
						queryParam("q", "string", "Substring match on name and description"),
						queryParam("limit", "integer", "Maximum number of results"),
					},
					"responses": map[string]interface{}{"200": jsonObject("Prompt summaries")},
				},
				"post": map[string]interface{}{
					"summary": "Create a custom prompt template",
					"requestBody": map[string]interface{}{
						"required": true,
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{
								"schema": map[string]interface{}{"$ref": "#/components/schemas/CreatePromptRequest"},
							},
						},
					},
					"responses": map[string]interface{}{
						"201": jsonObject("Created prompt"),
						"400": jsonObject("Validation failure"),
					},
				},
			},
			"/api/v1/prompts/{id}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Get a prompt template with usage statistics",
					"parameters": []map[string]interface{}{
						pathParam("id", "Prompt template ID"),
						queryParam("include_examples", "boolean", "Include worked input/output examples"),
					},
					"responses": map[string]interface{}{
						"200": jsonObject("Prompt with usage stats"),
						"404": jsonObject("Prompt not found"),
					},
				},
			},
			"/api/v1/prompts/{id}/compose": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":    "Validate variables and expand the template",
					"parameters": []map[string]interface{}{pathParam("id", "Prompt template ID")},
					"responses": map[string]interface{}{
						"200": jsonObject("Composed prompt with token estimate"),
						"400": jsonObject("Variable validation failure"),
						"404": jsonObject("Prompt not found"),
					},
				},
			},
			"/api/v1/prompts/{id}/usage": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":    "Record a prompt usage event",
					"parameters": []map[string]interface{}{pathParam("id", "Prompt template ID")},
					"responses": map[string]interface{}{
						"200": jsonObject("Event recorded"),
						"404": jsonObject("Prompt not found"),
					},
				},
			},
			"/api/v1/search": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Weighted prompt search",
					"parameters": []map[string]interface{}{
						queryParam("q", "string", "Search query"),
						queryParam("limit", "integer", "Maximum number of results"),
					},
					"responses": map[string]interface{}{"200": jsonObject("Ranked search results")},
				},
			},
			"/api/v1/specs": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "List specification documents",
					"parameters": []map[string]interface{}{
						queryParam("template", "string", "Filter by template type"),
						queryParam("status", "string", "Filter by workflow status"),
						queryParam("tags", "string", "Comma-separated tag filter"),
						queryParam("q", "string", "Substring match on title"),
						queryParam("limit", "integer", "Maximum number of results"),
					},
					"responses": map[string]interface{}{"200": jsonObject("Spec summaries")},
				},
				"post": map[string]interface{}{
					"summary":   "Create a specification from a template",
					"responses": map[string]interface{}{"201": jsonObject("Created spec with validation report")},
				},
			},
			"/api/v1/specs/{id}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":    "Get a specification document",
					"parameters": []map[string]interface{}{pathParam("id", "Spec ID")},
					"responses": map[string]interface{}{
						"200": jsonObject("Full spec document"),
						"404": jsonObject("Spec not found"),
					},
				},
			},
			"/api/v1/specs/{id}/validate": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Validate a spec against its template schema",
					"parameters": []map[string]interface{}{
						pathParam("id", "Spec ID"),
						queryParam("strict", "boolean", "Treat warnings as errors"),
					},
					"responses": map[string]interface{}{"200": jsonObject("Validation report")},
				},
			},
			"/api/v1/specs/{id}/export": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Export a spec as yaml, json or markdown",
					"parameters": []map[string]interface{}{
						pathParam("id", "Spec ID"),
						queryParam("format", "string", "yaml, json or markdown"),
					},
					"responses": map[string]interface{}{"200": jsonObject("Exported document")},
				},
			},
			"/api/v1/specs/{id}/prompt": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":    "Flatten a spec into an implementation-task prompt",
					"parameters": []map[string]interface{}{pathParam("id", "Spec ID")},
					"responses":  map[string]interface{}{"200": jsonObject("Prompt text with token estimate")},
				},
			},
			"/api/v1/templates": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":   "List supported spec templates",
					"responses": map[string]interface{}{"200": jsonObject("Template catalog")},
				},
			},
			"/api/v1/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":   "Liveness probe",
					"responses": map[string]interface{}{"200": jsonObject("Server health")},
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"APIResponse": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"success":   map[string]interface{}{"type": "boolean"},
						"data":      map[string]interface{}{"type": "object"},
						"message":   map[string]interface{}{"type": "string"},
						"timestamp": map[string]interface{}{"type": "string", "format": "date-time"},
					},
				},
				"CreatePromptRequest": map[string]interface{}{
					"type":     "object",
					"required": []string{"name", "template"},
					"properties": map[string]interface{}{
						"name":        map[string]interface{}{"type": "string"},
						"description": map[string]interface{}{"type": "string"},
						"template":    map[string]interface{}{"type": "string"},
						"variables":   map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "object"}},
						"tags":        map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
						"author":      map[string]interface{}{"type": "string"},
					},
				},
			},
		},
	}
}
