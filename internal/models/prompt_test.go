package models

import "testing"

func TestHasTagIgnoresCase(t *testing.T) {
	p := &PromptTemplate{
		Metadata: PromptMetadata{Tags: []string{"Testing", "code-review"}},
	}

	tests := []struct {
		tag  string
		want bool
	}{
		{"testing", true},
		{"TESTING", true},
		{"Code-Review", true},
		{"review", false},
	}
	for _, tt := range tests {
		if got := p.HasTag(tt.tag); got != tt.want {
			t.Errorf("HasTag(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}

	s := &Spec{Metadata: SpecMetadata{Tags: []string{"Storage"}}}
	if !s.HasTag("storage") {
		t.Error("spec tag matching must ignore case")
	}
}
