package schema

import "fmt"

// prdSchema validates Product Requirements Documents: a metadata header, an
// overview with problem/solution framing, and optional structured
// requirements with MoSCoW priorities.
type prdSchema struct{}

func (p *prdSchema) Fields() []string {
	return []string{"metadata", "overview", "requirements"}
}

func (p *prdSchema) Status() Status { return StatusEnforced }

func (p *prdSchema) Validate(content map[string]interface{}) []Issue {
	c := &checker{}

	metadata := c.section(content, "metadata", true)
	c.requireString(metadata, "metadata", "title")
	c.optionalString(metadata, "metadata", "author")
	c.requireEnum(metadata, "metadata", "status", []string{"draft", "review", "approved", "deprecated"})
	c.optionalEnum(metadata, "metadata", "priority", []string{"low", "medium", "high", "critical"})

	overview := c.section(content, "overview", true)
	c.requireString(overview, "overview", "problem")
	c.requireString(overview, "overview", "solution")
	c.requireStringList(overview, "overview", "target_users")
	c.requireStringList(overview, "overview", "success_metrics")

	requirements := c.section(content, "requirements", false)
	if requirements != nil {
		for i, raw := range c.list(requirements, "requirements", "functional", false) {
			path := fmt.Sprintf("requirements.functional[%d]", i)
			req := c.item(raw, path)
			if req == nil {
				continue
			}
			c.optionalString(req, path, "id")
			c.requireString(req, path, "title")
			c.requireString(req, path, "description")
			c.requireStringList(req, path, "acceptance_criteria")
			c.requireEnum(req, path, "priority", []string{"must", "should", "could", "wont"})
		}

		for i, raw := range c.list(requirements, "requirements", "non_functional", false) {
			path := fmt.Sprintf("requirements.non_functional[%d]", i)
			req := c.item(raw, path)
			if req == nil {
				continue
			}
			c.requireString(req, path, "category")
			c.requireString(req, path, "requirement")
			c.optionalString(req, path, "target")
		}
	}

	return c.issues
}
