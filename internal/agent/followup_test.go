package agent

import (
	"testing"

	"github.com/hyperjump/nextstep/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestGenerateFollowUps(t *testing.T) {
	tests := []struct {
		name    string
		query   models.Query
		results []*models.RetrievalResult
		want    []string
	}{
		{
			name:  "no results",
			query: models.Query{Text: "food"},
			want:  []string{"Is there anything else I can help you find?"},
		},
		{
			name:    "no location with results",
			query:   models.Query{Text: "food"},
			results: makeResults(2, false),
			want: []string{
				"Would you like me to find resources closer to a specific area?",
				"Is there anything else I can help you find?",
			},
		},
		{
			name:    "capped at three",
			query:   models.Query{Text: "food"},
			results: makeResults(4, true),
			want: []string{
				"Would you like me to find resources closer to a specific area?",
				"Would you like to see more options?",
				"Do you have questions about eligibility requirements?",
			},
		},
		{
			name:    "location known",
			query:   models.Query{Text: "food", Location: "Austin"},
			results: makeResults(1, true),
			want: []string{
				"Do you have questions about eligibility requirements?",
				"Is there anything else I can help you find?",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateFollowUps(tt.query, tt.results))
		})
	}
}

func TestIsUrgent(t *testing.T) {
	assert.True(t, IsUrgent("This is an EMERGENCY"))
	assert.True(t, IsUrgent("my kids are hungry"))
	assert.True(t, IsUrgent("need immediate help"))
	assert.False(t, IsUrgent("looking for job training"))
}

func TestResourceContext(t *testing.T) {
	res := makeResults(1, false)
	res[0].Resource.Contact = models.Contact{Phone: "512-555-0100", Website: "https://example.org"}
	got := ResourceContext(res)
	want := "Resource: Resource 0\nDescription: \nServices: pantry, meals\nLocation: 1 Main St, Austin, TX\n" +
		"Contact: 512-555-0100 | https://example.org\nHours: Mon-Fri 9-5\nRequirements: \nMatch Reason: category match"
	assert.Equal(t, want, got)
}
