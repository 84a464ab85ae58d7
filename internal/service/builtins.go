package service

import (
	"time"

	"github.com/fastkit/fastkit/internal/errors"
	"github.com/fastkit/fastkit/internal/models"
)

// seedBuiltinPrompts writes the builtin catalog on first run. Existing
// files are left alone so local edits to builtins survive restarts.
func (s *Service) seedBuiltinPrompts() error {
	existing, err := s.store.ListPrompts()
	if err != nil {
		return err
	}
	present := make(map[string]bool, len(existing))
	for _, p := range existing {
		present[p.ID] = true
	}

	seeded := 0
	for _, p := range builtinPrompts() {
		if present[p.ID] {
			continue
		}
		if err := s.store.SaveBuiltinPrompt(p); err != nil {
			return errors.Wrap(err, errors.ErrCodeStorageFailure, "failed to seed builtin prompt "+p.ID)
		}
		seeded++
	}
	if seeded > 0 {
		s.log.Infow("seeded builtin prompts", "count", seeded)
	}
	return nil
}

func builtinPrompts() []*models.PromptTemplate {
	seeded := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	meta := func(tags ...string) models.PromptMetadata {
		return models.PromptMetadata{
			Author:    "fast-kit",
			CreatedAt: seeded,
			UpdatedAt: seeded,
			Tags:      tags,
		}
	}

	return []*models.PromptTemplate{
		{
			ID:       "code_gen_function",
			Category: "code_generation",
			Name:     "Function Generator",
			Summary:  "Generates a single function from a description with optional constraints",
			Version:  "1.0.0",
			Metadata: meta("code", "generation"),
			Variables: []models.VariableDefinition{
				{Name: "language", Type: models.VariableString, Required: true,
					Description: "Target programming language"},
				{Name: "description", Type: models.VariableString, Required: true,
					Description: "What the function should do"},
				{Name: "constraints", Type: models.VariableList, Required: false,
					Description: "Constraints the implementation must respect"},
			},
			Template: `Write a {{.language}} function that does the following:

{{.description}}
{{if .constraints}}
Constraints:
{{range .constraints}}- {{.}}
{{end}}{{end}}
Return only the function with a short doc comment.`,
		},
		{
			ID:       "refactor_code",
			Category: "refactoring",
			Name:     "Code Refactorer",
			Summary:  "Refactors code toward a stated goal while preserving behavior",
			Version:  "1.0.0",
			Metadata: meta("refactoring", "code-quality"),
			Variables: []models.VariableDefinition{
				{Name: "code", Type: models.VariableCode, Required: true,
					Description: "The code to refactor"},
				{Name: "goal", Type: models.VariableString, Required: true,
					Description: "What the refactoring should achieve",
					Validation:  &models.VariableRules{MinLength: 5}},
			},
			Template: `Refactor the following code. Goal: {{.goal}}

` + "```" + `
{{.code}}
` + "```" + `

Preserve existing behavior. Explain each change in one line.`,
		},
		{
			ID:       "test_generator",
			Category: "testing",
			Name:     "Unit Test Generator",
			Summary:  "Generates unit tests covering normal cases, edge cases and failures",
			Version:  "1.0.0",
			Metadata: meta("testing", "quality"),
			Variables: []models.VariableDefinition{
				{Name: "code", Type: models.VariableCode, Required: true,
					Description: "The code under test"},
				{Name: "framework", Type: models.VariableString, Required: false,
					Description: "Test framework to use", Default: "standard library"},
			},
			Template: `Write unit tests for the following code using {{.framework}}:

` + "```" + `
{{.code}}
` + "```" + `

Cover the happy path, edge cases and error handling.`,
		},
		{
			ID:       "debug_error",
			Category: "debugging",
			Name:     "Error Debugger",
			Summary:  "Diagnoses an error message in context and proposes a fix",
			Version:  "1.0.0",
			Metadata: meta("debugging"),
			Variables: []models.VariableDefinition{
				{Name: "error_message", Type: models.VariableString, Required: true,
					Description: "The error output"},
				{Name: "code", Type: models.VariableCode, Required: false,
					Description: "The code that produced the error"},
			},
			Template: `Diagnose this error:

{{.error_message}}
{{if .code}}
Relevant code:
` + "```" + `
{{.code}}
` + "```" + `
{{end}}
Explain the most likely cause and show the minimal fix.`,
		},
		{
			ID:       "doc_writer",
			Category: "documentation",
			Name:     "Documentation Writer",
			Summary:  "Writes reference documentation for code aimed at a chosen audience",
			Version:  "1.0.0",
			Metadata: meta("documentation"),
			Variables: []models.VariableDefinition{
				{Name: "code", Type: models.VariableCode, Required: true,
					Description: "The code to document"},
				{Name: "audience", Type: models.VariableString, Required: false,
					Description: "Who the documentation is for", Default: "developers",
					Validation: &models.VariableRules{
						AllowedValues: []string{"developers", "end users", "operators"},
					}},
			},
			Template: `Write documentation for the following code, aimed at {{.audience}}:

` + "```" + `
{{.code}}
` + "```" + `

Include a summary, parameters, return values and one usage example.`,
		},
	}
}
