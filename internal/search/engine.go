// Package search implements in-memory filtering and ranked search over the
// full loaded document collection.
//
// Filtering is a conjunction of independent predicates; every supplied
// filter must hold simultaneously and result order is the store's
// enumeration order. Ranked search scores each document as the sum of three
// weighted substring signals (name 3, description 2, tag 1), excludes
// zero scores, and sorts by descending score with a stable tie-break on
// enumeration order.
package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fastkit/fastkit/internal/models"
	"github.com/sahilm/fuzzy"
)

// Fixed signal weights. Relevance is normalized against the maximum
// attainable single-signal weight.
const (
	WeightName        = 3
	WeightDescription = 2
	WeightTag         = 1
	MaxSignalWeight   = WeightName

	// DefaultSearchLimit caps ranked results when the caller supplies none
	DefaultSearchLimit = 10
)

// Matching reasons, derived from the dominant signal in fixed priority
// order (name, then description, then tag)
const (
	ReasonName        = "Name match"
	ReasonDescription = "Description match"
	ReasonTag         = "Tag match"
)

// Searchable is the view of a document the ranking engine needs
type Searchable interface {
	SearchName() string
	SearchDescription() string
	SearchTags() []string
}

// Match is one ranked search hit, addressing the source collection by index
type Match struct {
	Index     int
	Score     int
	Relevance float64
	Reason    string
}

// Rank scores every document against the query and returns the top matches.
// Documents scoring zero are excluded entirely. Equal scores preserve
// collection enumeration order.
func Rank(docs []Searchable, query string, limit int) []Match {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	q := strings.ToLower(query)

	var matches []Match
	for i, doc := range docs {
		score := 0
		if strings.Contains(strings.ToLower(doc.SearchName()), q) {
			score += WeightName
		}
		if strings.Contains(strings.ToLower(doc.SearchDescription()), q) {
			score += WeightDescription
		}
		for _, tag := range doc.SearchTags() {
			if strings.Contains(strings.ToLower(tag), q) {
				score += WeightTag
				break
			}
		}

		if score == 0 {
			continue
		}
		matches = append(matches, Match{
			Index:     i,
			Score:     score,
			Relevance: float64(score) / MaxSignalWeight,
			Reason:    reasonFor(score),
		})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// reasonFor picks the dominant signal. Ties between signals resolve in
// fixed priority order, not by which check ran first.
func reasonFor(score int) string {
	switch {
	case score >= WeightName:
		return ReasonName
	case score >= WeightDescription:
		return ReasonDescription
	default:
		return ReasonTag
	}
}

// PromptFilter is the conjunction of listing predicates for the prompt
// family. Zero-valued fields impose no constraint.
type PromptFilter struct {
	Category string
	Tags     []string
	Query    string
	Limit    int
}

// FilterPrompts applies every supplied predicate and truncates to the first
// N survivors in enumeration order
func FilterPrompts(prompts []*models.PromptTemplate, f PromptFilter) []*models.PromptTemplate {
	filtered := make([]*models.PromptTemplate, 0, len(prompts))
	query := strings.ToLower(f.Query)

	for _, p := range prompts {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if len(f.Tags) > 0 && !anyTagMatches(p, f.Tags) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Summary), query) {
			continue
		}
		filtered = append(filtered, p)
	}

	return truncatePrompts(filtered, f.Limit)
}

// SpecFilter is the conjunction of listing predicates for the spec family
type SpecFilter struct {
	Template string
	Status   string
	Tags     []string
	Query    string
	Limit    int
}

// FilterSpecs applies every supplied predicate; the second return reports
// whether truncation dropped results
func FilterSpecs(specs []*models.Spec, f SpecFilter) ([]*models.Spec, bool) {
	filtered := make([]*models.Spec, 0, len(specs))
	query := strings.ToLower(f.Query)

	for _, s := range specs {
		if f.Template != "" && string(s.Metadata.Template) != f.Template {
			continue
		}
		if f.Status != "" && string(s.Metadata.Status) != f.Status {
			continue
		}
		if len(f.Tags) > 0 && !anySpecTagMatches(s, f.Tags) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(s.Metadata.Title), query) {
			continue
		}
		filtered = append(filtered, s)
	}

	if f.Limit > 0 && len(filtered) > f.Limit {
		return filtered[:f.Limit], true
	}
	return filtered, false
}

// FuzzyPrompts matches a query against concatenated prompt fields using
// approximate matching. This is a convenience lookup for interactive use,
// distinct from the weighted Rank contract.
func FuzzyPrompts(prompts []*models.PromptTemplate, query string) []*models.PromptTemplate {
	if query == "" {
		return prompts
	}

	searchStrings := make([]string, len(prompts))
	for i, p := range prompts {
		searchStrings[i] = fmt.Sprintf("%s %s %s %s",
			p.Name,
			p.Summary,
			p.ID,
			strings.Join(p.Metadata.Tags, " "))
	}

	var results []*models.PromptTemplate
	for _, match := range fuzzy.Find(query, searchStrings) {
		results = append(results, prompts[match.Index])
	}
	return results
}

func anyTagMatches(p *models.PromptTemplate, tags []string) bool {
	for _, tag := range tags {
		if p.HasTag(tag) {
			return true
		}
	}
	return false
}

func anySpecTagMatches(s *models.Spec, tags []string) bool {
	for _, tag := range tags {
		if s.HasTag(tag) {
			return true
		}
	}
	return false
}

func truncatePrompts(prompts []*models.PromptTemplate, limit int) []*models.PromptTemplate {
	if limit > 0 && len(prompts) > limit {
		return prompts[:limit]
	}
	return prompts
}
