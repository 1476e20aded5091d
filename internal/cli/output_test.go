package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/nextstep/internal/agent"
	"github.com/hyperjump/nextstep/internal/models"
)

func sampleResource() *models.Resource {
	return &models.Resource{
		ID:          "food-001",
		Name:        "Eastside Food Bank",
		Description: strings.Repeat("groceries ", 40),
		Category:    models.CategoryFood,
		Location:    models.Location{City: "Austin", State: "TX"},
		Contact:     models.Contact{Phone: "512-555-0101"},
		Hours:       "Mon-Fri 9-5",
	}
}

func sampleResponse() *models.SearchResponse {
	return &models.SearchResponse{
		Query:     models.Query{Text: "food"},
		QueryTime: 7,
		Total:     1,
		Results: []*models.RetrievalResult{{
			Resource:       sampleResource(),
			RelevanceScore: 1.15,
			MatchReason:    "category match",
			Breakdown:      models.ScoreBreakdown{Category: 0.8, Semantic: 0.35},
			Rank:           1,
		}},
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded models.SearchResponse
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Total != 1 || decoded.Results[0].Resource.ID != "food-001" {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Query.Text != "food" {
		t.Errorf("query text = %q", decoded.Query.Text)
	}
}

func TestWriteSearchResults_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Found 1 results in 7ms", "Rank: 1", "Why: category match", "Eastside Food Bank [food]", "Phone: 512-555-0101", "..."} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteResources(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResources(&buf, []*models.Resource{sampleResource()}, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "1 resources") || !strings.Contains(buf.String(), "Location: Austin, TX") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	buf.Reset()
	if err := WriteResources(&buf, []*models.Resource{sampleResource()}, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded []*models.Resource
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil || len(decoded) != 1 {
		t.Errorf("json output = %s (err %v)", buf.String(), err)
	}
}

func TestWriteReply(t *testing.T) {
	res := sampleResponse().Results
	var buf bytes.Buffer
	WriteReply(&buf, &agent.Response{
		Message:           "Try the food bank.",
		Resources:         res,
		FollowUpQuestions: []string{"What city are you in?"},
		UrgentNotice:      agent.UrgentNotice,
	})
	out := buf.String()
	for _, want := range []string{"assistant> Try the food bank.", "1. Eastside Food Bank (food)", "- What city are you in?", agent.UrgentNotice} {
		if !strings.Contains(out, want) {
			t.Errorf("reply missing %q:\n%s", want, out)
		}
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}
