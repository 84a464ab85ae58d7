package schema

// adrSchema validates Architecture Decision Records: metadata with deciders,
// a context and decision narrative, plus optional rationale and consequence
// breakdowns.
type adrSchema struct{}

func (a *adrSchema) Fields() []string {
	return []string{"metadata", "context", "decision", "rationale", "consequences"}
}

func (a *adrSchema) Status() Status { return StatusEnforced }

func (a *adrSchema) Validate(content map[string]interface{}) []Issue {
	c := &checker{}

	metadata := c.section(content, "metadata", true)
	c.requireString(metadata, "metadata", "title")
	c.requireEnum(metadata, "metadata", "status", []string{"proposed", "accepted", "deprecated", "superseded"})
	c.requireStringList(metadata, "metadata", "deciders")

	// context and decision are scalar narrative fields at the top level
	c.requireString(content, "", "context")
	c.requireString(content, "", "decision")

	rationale := c.section(content, "rationale", false)
	if rationale != nil {
		c.optionalStringList(rationale, "rationale", "factors")
		c.optionalStringList(rationale, "rationale", "assumptions")
		c.optionalStringList(rationale, "rationale", "constraints")
	}

	consequences := c.section(content, "consequences", false)
	if consequences != nil {
		c.optionalStringList(consequences, "consequences", "positive")
		c.optionalStringList(consequences, "consequences", "negative")
		c.optionalStringList(consequences, "consequences", "neutral")
	}

	return c.issues
}
