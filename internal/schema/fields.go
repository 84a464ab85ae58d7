package schema

import (
	"fmt"
	"strings"
)

// checker accumulates issues while walking a content tree. All require*
// helpers append in call order so reports stay deterministic.
type checker struct {
	issues []Issue
}

func (c *checker) add(path, message string) {
	c.issues = append(c.issues, Issue{Path: path, Message: message})
}

func joinPath(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ".")
}

// section returns a nested mapping; required sections that are missing or
// mistyped produce an issue and a nil map (checks below are then skipped)
func (c *checker) section(content map[string]interface{}, path string, required bool) map[string]interface{} {
	value, ok := content[lastSegment(path)]
	if !ok {
		if required {
			c.add(path, "required section is missing")
		}
		return nil
	}
	m, ok := value.(map[string]interface{})
	if !ok {
		c.add(path, "must be a mapping")
		return nil
	}
	return m
}

// subsection is like section but addresses a key within an already
// resolved mapping
func (c *checker) subsection(m map[string]interface{}, path, key string, required bool) map[string]interface{} {
	if m == nil {
		return nil
	}
	value, ok := m[key]
	if !ok {
		if required {
			c.add(joinPath(path, key), "required section is missing")
		}
		return nil
	}
	nested, ok := value.(map[string]interface{})
	if !ok {
		c.add(joinPath(path, key), "must be a mapping")
		return nil
	}
	return nested
}

func (c *checker) requireString(m map[string]interface{}, path, key string) {
	if m == nil {
		return
	}
	value, ok := m[key]
	if !ok {
		c.add(joinPath(path, key), "required field is missing")
		return
	}
	if _, ok := value.(string); !ok {
		c.add(joinPath(path, key), "must be a string")
	}
}

func (c *checker) optionalString(m map[string]interface{}, path, key string) {
	if m == nil {
		return
	}
	if value, ok := m[key]; ok {
		if _, ok := value.(string); !ok {
			c.add(joinPath(path, key), "must be a string")
		}
	}
}

func (c *checker) requireEnum(m map[string]interface{}, path, key string, allowed []string) {
	if m == nil {
		return
	}
	value, ok := m[key]
	if !ok {
		c.add(joinPath(path, key), "required field is missing")
		return
	}
	s, ok := value.(string)
	if !ok {
		c.add(joinPath(path, key), "must be a string")
		return
	}
	for _, a := range allowed {
		if s == a {
			return
		}
	}
	c.add(joinPath(path, key), fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
}

func (c *checker) optionalEnum(m map[string]interface{}, path, key string, allowed []string) {
	if m == nil {
		return
	}
	if _, ok := m[key]; ok {
		c.requireEnum(m, path, key, allowed)
	}
}

func (c *checker) requireStringList(m map[string]interface{}, path, key string) {
	if m == nil {
		return
	}
	value, ok := m[key]
	if !ok {
		c.add(joinPath(path, key), "required field is missing")
		return
	}
	c.checkStringList(value, joinPath(path, key))
}

func (c *checker) optionalStringList(m map[string]interface{}, path, key string) {
	if m == nil {
		return
	}
	if value, ok := m[key]; ok {
		c.checkStringList(value, joinPath(path, key))
	}
}

func (c *checker) checkStringList(value interface{}, path string) {
	items, ok := value.([]interface{})
	if !ok {
		c.add(path, "must be a list of strings")
		return
	}
	for i, item := range items {
		if _, ok := item.(string); !ok {
			c.add(fmt.Sprintf("%s[%d]", path, i), "must be a string")
		}
	}
}

// list returns a sequence field's items; mistyped values produce one issue
func (c *checker) list(m map[string]interface{}, path, key string, required bool) []interface{} {
	if m == nil {
		return nil
	}
	value, ok := m[key]
	if !ok {
		if required {
			c.add(joinPath(path, key), "required field is missing")
		}
		return nil
	}
	items, ok := value.([]interface{})
	if !ok {
		c.add(joinPath(path, key), "must be a list")
		return nil
	}
	return items
}

// item coerces one list element to a mapping
func (c *checker) item(value interface{}, path string) map[string]interface{} {
	m, ok := value.(map[string]interface{})
	if !ok {
		c.add(path, "must be a mapping")
		return nil
	}
	return m
}

func lastSegment(path string) string {
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
