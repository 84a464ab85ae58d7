// Package cli provides the headless command-line interface
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fastkit/fastkit/internal/models"
	"github.com/fastkit/fastkit/internal/renderer"
	"github.com/fastkit/fastkit/internal/search"
	"github.com/fastkit/fastkit/internal/service"
)

// CLI executes commands against the service and prints results to stdout
type CLI struct {
	service *service.Service
}

// NewCLI creates a new CLI instance
func NewCLI(svc *service.Service) *CLI {
	return &CLI{service: svc}
}

// ExecuteCommand processes a CLI command and returns the result
func (c *CLI) ExecuteCommand(args []string) error {
	if len(args) == 0 {
		return c.printUsage()
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "list", "ls":
		return c.listPrompts(commandArgs)
	case "get", "show":
		return c.showPrompt(commandArgs)
	case "compose":
		return c.composePrompt(commandArgs)
	case "search":
		return c.searchPrompts(commandArgs)
	case "create", "new":
		return c.createPrompt(commandArgs)
	case "spec":
		return c.handleSpec(commandArgs)
	case "specs":
		return c.listSpecs(commandArgs)
	case "templates":
		return c.listTemplates(commandArgs)
	case "help":
		return c.printUsage()
	default:
		return fmt.Errorf("unknown command: %s. Use 'help' for usage information", command)
	}
}

// listPrompts lists prompt templates
func (c *CLI) listPrompts(args []string) error {
	var format, category, query string
	var tags []string

	for i, arg := range args {
		switch arg {
		case "--format", "-f":
			if i+1 < len(args) {
				format = args[i+1]
			}
		case "--category", "-c":
			if i+1 < len(args) {
				category = args[i+1]
			}
		case "--tag", "-t":
			if i+1 < len(args) {
				tags = append(tags, args[i+1])
			}
		case "--query", "-q":
			if i+1 < len(args) {
				query = args[i+1]
			}
		}
	}

	prompts, err := c.service.ListPrompts(context.Background(), search.PromptFilter{
		Category: category,
		Tags:     tags,
		Query:    query,
	})
	if err != nil {
		return fmt.Errorf("failed to list prompts: %w", err)
	}
	return c.formatPrompts(prompts, format)
}

// showPrompt displays a specific prompt with its usage statistics
func (c *CLI) showPrompt(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("show requires a prompt ID")
	}
	format := flagValue(args, "--format", "-f")

	prompt, stats, err := c.service.GetPrompt(context.Background(), args[0])
	if err != nil {
		return err
	}

	if format == "json" {
		return printJSON(map[string]interface{}{
			"prompt":      prompt,
			"usage_stats": stats,
		})
	}

	fmt.Printf("ID:          %s\n", prompt.ID)
	fmt.Printf("Name:        %s\n", prompt.Name)
	fmt.Printf("Category:    %s\n", prompt.Category)
	if prompt.Summary != "" {
		fmt.Printf("Description: %s\n", prompt.Summary)
	}
	if len(prompt.Metadata.Tags) > 0 {
		fmt.Printf("Tags:        %s\n", strings.Join(prompt.Metadata.Tags, ", "))
	}
	if len(prompt.Variables) > 0 {
		fmt.Println("Variables:")
		for _, v := range prompt.Variables {
			required := ""
			if v.Required {
				required = " (required)"
			}
			fmt.Printf("  - %s [%s]%s: %s\n", v.Name, v.Type, required, v.Description)
		}
	}
	if stats.TotalUses > 0 {
		fmt.Printf("Usage:       %d uses, %d successful\n", stats.TotalUses, stats.SuccessfulUses)
	}
	fmt.Println("\nTemplate:")
	fmt.Println(prompt.Template)
	return nil
}

// composePrompt validates variables and expands a template
func (c *CLI) composePrompt(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("compose requires a prompt ID")
	}
	id := args[0]
	values := make(map[string]interface{})

	for i, arg := range args[1:] {
		switch arg {
		case "--var", "-v":
			rest := args[1:]
			if i+1 < len(rest) {
				name, value, ok := strings.Cut(rest[i+1], "=")
				if !ok {
					return fmt.Errorf("--var expects name=value, got %q", rest[i+1])
				}
				values[name] = value
			}
		case "--vars-json":
			rest := args[1:]
			if i+1 < len(rest) {
				if err := json.Unmarshal([]byte(rest[i+1]), &values); err != nil {
					return fmt.Errorf("invalid --vars-json: %w", err)
				}
			}
		}
	}

	comp, err := c.service.ComposePrompt(context.Background(), id, values)
	if err != nil {
		return err
	}

	fmt.Println(comp.Text)
	fmt.Fprintf(os.Stderr, "\n(~%d tokens)\n", comp.TokenEstimate)
	return nil
}

// searchPrompts runs a weighted search over the library
func (c *CLI) searchPrompts(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("search requires a query")
	}

	var queryParts []string
	var fuzzy bool
	limit := 0
	skip := false
	for i, arg := range args {
		if skip {
			skip = false
			continue
		}
		switch arg {
		case "--fuzzy":
			fuzzy = true
		case "--limit", "-n":
			if i+1 < len(args) {
				limit, _ = strconv.Atoi(args[i+1])
				skip = true
			}
		default:
			queryParts = append(queryParts, arg)
		}
	}
	query := strings.Join(queryParts, " ")

	if fuzzy {
		prompts, err := c.service.FuzzySearchPrompts(context.Background(), query)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		return c.formatPrompts(prompts, "")
	}

	results, err := c.service.SearchPrompts(context.Background(), query, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("No prompts matched.")
		return nil
	}
	for _, res := range results {
		fmt.Printf("%-28s score=%d relevance=%.2f %s (%s)\n",
			res.Prompt.ID, res.Score, res.Relevance, res.Reason, res.Prompt.Name)
	}
	return nil
}

// createPrompt stores a new custom prompt
func (c *CLI) createPrompt(args []string) error {
	var input service.CreatePromptInput

	for i, arg := range args {
		switch arg {
		case "--name":
			if i+1 < len(args) {
				input.Name = args[i+1]
			}
		case "--description", "-d":
			if i+1 < len(args) {
				input.Description = args[i+1]
			}
		case "--template":
			if i+1 < len(args) {
				input.Template = args[i+1]
			}
		case "--template-file":
			if i+1 < len(args) {
				data, err := os.ReadFile(args[i+1])
				if err != nil {
					return fmt.Errorf("failed to read template file: %w", err)
				}
				input.Template = string(data)
			}
		case "--tag", "-t":
			if i+1 < len(args) {
				input.Tags = append(input.Tags, args[i+1])
			}
		case "--author":
			if i+1 < len(args) {
				input.Author = args[i+1]
			}
		}
	}

	prompt, err := c.service.CreatePrompt(context.Background(), input)
	if err != nil {
		return err
	}
	fmt.Printf("Created prompt %s (%s)\n", prompt.ID, prompt.Name)
	return nil
}

// handleSpec dispatches spec subcommands
func (c *CLI) handleSpec(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("spec requires a subcommand: create, get, validate, export, prompt")
	}

	switch args[0] {
	case "create", "new":
		return c.createSpec(args[1:])
	case "get", "show":
		return c.showSpec(args[1:])
	case "validate":
		return c.validateSpec(args[1:])
	case "export":
		return c.exportSpec(args[1:])
	case "prompt":
		return c.specToPrompt(args[1:])
	default:
		return fmt.Errorf("unknown spec subcommand: %s", args[0])
	}
}

// createSpec creates a spec from a template plus a content file
func (c *CLI) createSpec(args []string) error {
	var input service.CreateSpecInput

	for i, arg := range args {
		switch arg {
		case "--template":
			if i+1 < len(args) {
				input.Template = models.SpecTemplate(args[i+1])
			}
		case "--title":
			if i+1 < len(args) {
				input.Title = args[i+1]
			}
		case "--author":
			if i+1 < len(args) {
				input.Author = args[i+1]
			}
		case "--tag", "-t":
			if i+1 < len(args) {
				input.Tags = append(input.Tags, args[i+1])
			}
		case "--content-file":
			if i+1 < len(args) {
				data, err := os.ReadFile(args[i+1])
				if err != nil {
					return fmt.Errorf("failed to read content file: %w", err)
				}
				// YAML is a superset of JSON, so both serializations work here
				if err := yaml.Unmarshal(data, &input.Content); err != nil {
					return fmt.Errorf("failed to parse content file: %w", err)
				}
			}
		}
	}

	spec, report, err := c.service.CreateSpec(context.Background(), input)
	if err != nil {
		return err
	}

	fmt.Printf("Created %s spec %s (%s)\n", spec.Metadata.Template, spec.Metadata.SpecID, spec.Metadata.Title)
	c.printReport(report)
	return nil
}

// showSpec prints a spec as YAML
func (c *CLI) showSpec(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("spec get requires a spec ID")
	}

	content, err := c.service.ExportSpec(context.Background(), args[0], renderer.FormatYAML)
	if err != nil {
		return err
	}
	fmt.Print(content)
	return nil
}

// validateSpec re-validates a stored spec
func (c *CLI) validateSpec(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("spec validate requires a spec ID")
	}

	strict := false
	for _, arg := range args {
		if arg == "--strict" {
			strict = true
		}
	}

	report, err := c.service.ValidateSpec(context.Background(), args[0], strict)
	if err != nil {
		return err
	}
	c.printReport(report)
	if !report.Valid {
		os.Exit(1)
	}
	return nil
}

// exportSpec prints a spec in the requested format
func (c *CLI) exportSpec(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("spec export requires a spec ID")
	}
	format := flagValue(args, "--format", "-f")
	if format == "" {
		format = string(renderer.FormatMarkdown)
	}

	content, err := c.service.ExportSpec(context.Background(), args[0], renderer.Format(format))
	if err != nil {
		return err
	}
	fmt.Print(content)
	return nil
}

// specToPrompt flattens a spec into an implementation-task prompt
func (c *CLI) specToPrompt(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("spec prompt requires a spec ID")
	}

	text, tokens, err := c.service.ExportSpecToPrompt(context.Background(), args[0])
	if err != nil {
		return err
	}
	fmt.Println(text)
	fmt.Fprintf(os.Stderr, "\n(~%d tokens)\n", tokens)
	return nil
}

// listSpecs lists specification documents
func (c *CLI) listSpecs(args []string) error {
	var filter search.SpecFilter
	var format string

	for i, arg := range args {
		switch arg {
		case "--template":
			if i+1 < len(args) {
				filter.Template = args[i+1]
			}
		case "--status":
			if i+1 < len(args) {
				filter.Status = args[i+1]
			}
		case "--tag", "-t":
			if i+1 < len(args) {
				filter.Tags = append(filter.Tags, args[i+1])
			}
		case "--format", "-f":
			if i+1 < len(args) {
				format = args[i+1]
			}
		}
	}

	specs, truncated, err := c.service.ListSpecs(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("failed to list specs: %w", err)
	}

	if format == "json" {
		summaries := make([]models.SpecSummary, len(specs))
		for i, sp := range specs {
			summaries[i] = sp.Summarize()
		}
		return printJSON(summaries)
	}

	if len(specs) == 0 {
		fmt.Println("No specs found.")
		return nil
	}
	for _, sp := range specs {
		fmt.Printf("%-12s %-10s %-10s %s\n",
			sp.Metadata.SpecID, sp.Metadata.Template, sp.Metadata.Status, sp.Metadata.Title)
	}
	if truncated {
		fmt.Fprintln(os.Stderr, "(result list truncated; refine the filter)")
	}
	return nil
}

// listTemplates prints the spec template catalog
func (c *CLI) listTemplates(args []string) error {
	if flagValue(args, "--format", "-f") == "json" {
		return printJSON(c.service.ListSpecTemplates())
	}

	for _, info := range c.service.ListSpecTemplates() {
		fmt.Printf("%-12s [%s] %s\n", info.Name, info.SchemaStatus, info.Description)
	}
	return nil
}

func (c *CLI) printReport(report *service.ValidationReport) {
	fmt.Printf("Valid:        %v\n", report.Valid)
	fmt.Printf("Schema:       %s\n", report.SchemaStatus)
	fmt.Printf("Completeness: %.0f%%\n", report.Completeness)
	for _, e := range report.Errors {
		fmt.Printf("  error: %s\n", e)
	}
	for _, w := range report.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
}

func (c *CLI) formatPrompts(prompts []*models.PromptTemplate, format string) error {
	switch format {
	case "json":
		summaries := make([]models.PromptSummary, len(prompts))
		for i, p := range prompts {
			summaries[i] = p.Summarize()
		}
		return printJSON(summaries)
	case "ids":
		for _, p := range prompts {
			fmt.Println(p.ID)
		}
		return nil
	default:
		if len(prompts) == 0 {
			fmt.Println("No prompts found.")
			return nil
		}
		for _, p := range prompts {
			fmt.Printf("%-28s %-16s %s\n", p.ID, p.Category, p.Name)
		}
		return nil
	}
}

func flagValue(args []string, names ...string) string {
	for i, arg := range args {
		for _, name := range names {
			if arg == name && i+1 < len(args) {
				return args[i+1]
			}
		}
	}
	return ""
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func (c *CLI) printUsage() error {
	fmt.Println(`fast-kit - prompt template library and spec workshop

Usage:
  fast-kit <command> [arguments]

Prompt commands:
  list [--category c] [--tag t] [--query q] [--format table|json|ids]
  get <id> [--format json]
  compose <id> [--var name=value ...] [--vars-json '{...}']
  search <query> [--limit n] [--fuzzy]
  create --name <name> --template <text>|--template-file <path>
         [--description d] [--tag t ...] [--author a]

Spec commands:
  specs [--template t] [--status s] [--tag t] [--format json]
  spec create --template <prd|rfc|adr|user_story|api_spec> --title <title>
              [--content-file <yaml|json>] [--author a] [--tag t ...]
  spec get <id>
  spec validate <id> [--strict]
  spec export <id> [--format yaml|json|markdown]
  spec prompt <id>

Other:
  templates [--format json]
  help`)
	return nil
}
