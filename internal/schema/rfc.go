package schema

import "fmt"

// rfcSchema validates Request for Comments documents: metadata, a summary of
// the problem and proposed solution, and the proposal itself with optional
// alternatives.
type rfcSchema struct{}

func (r *rfcSchema) Fields() []string {
	return []string{"metadata", "summary", "proposal"}
}

func (r *rfcSchema) Status() Status { return StatusEnforced }

func (r *rfcSchema) Validate(content map[string]interface{}) []Issue {
	c := &checker{}

	metadata := c.section(content, "metadata", true)
	c.requireString(metadata, "metadata", "title")
	c.requireString(metadata, "metadata", "author")
	c.requireEnum(metadata, "metadata", "status", []string{"draft", "in-review", "accepted", "rejected", "superseded"})

	summary := c.section(content, "summary", true)
	c.requireString(summary, "summary", "problem")
	c.requireString(summary, "summary", "proposed_solution")
	c.requireString(summary, "summary", "impact")

	proposal := c.section(content, "proposal", true)
	c.optionalString(proposal, "proposal", "background")
	c.requireString(proposal, "proposal", "detailed_design")
	for i, raw := range c.list(proposal, "proposal", "alternatives_considered", false) {
		path := fmt.Sprintf("proposal.alternatives_considered[%d]", i)
		alt := c.item(raw, path)
		if alt == nil {
			continue
		}
		c.requireString(alt, path, "option")
		c.requireStringList(alt, path, "pros")
		c.requireStringList(alt, path, "cons")
	}

	return c.issues
}
