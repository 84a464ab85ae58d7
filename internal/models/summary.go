package models

// PromptSummary is the listing projection of a prompt template
type PromptSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	SuccessRate *float64 `json:"success_rate,omitempty"`
}

// SpecSummary is the listing projection of a specification
type SpecSummary struct {
	SpecID    string       `json:"spec_id"`
	Template  SpecTemplate `json:"template"`
	Title     string       `json:"title"`
	Status    SpecStatus   `json:"status"`
	CreatedAt string       `json:"created_at"`
	UpdatedAt string       `json:"updated_at"`
}

// Summarize projects a prompt template into its listing shape
func (p *PromptTemplate) Summarize() PromptSummary {
	return PromptSummary{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Description: p.Summary,
		Tags:        p.Metadata.Tags,
		SuccessRate: p.Metadata.AvgSuccessRate,
	}
}

// Summarize projects a spec into its listing shape
func (s *Spec) Summarize() SpecSummary {
	return SpecSummary{
		SpecID:    s.Metadata.SpecID,
		Template:  s.Metadata.Template,
		Title:     s.Metadata.Title,
		Status:    s.Metadata.Status,
		CreatedAt: s.Metadata.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: s.Metadata.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// UsageStats reports accumulated usage counters for a prompt template
type UsageStats struct {
	TotalUses           int64   `json:"total_uses"`
	SuccessfulUses      int64   `json:"successful_uses"`
	AvgCompletionTimeMs float64 `json:"avg_completion_time_ms"`
	AvgTokens           float64 `json:"avg_tokens"`
}
