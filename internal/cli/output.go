// Package cli formats search results, resources and chat replies for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/nextstep/internal/agent"
	"github.com/hyperjump/nextstep/internal/models"
	"github.com/hyperjump/nextstep/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const (
	separator      = "─────────────────────────────────────────────────────────"
	descriptionCap = 200
)

// ParseOutputFormat accepts "text" or "json"; anything else is an error.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// WriteSearchResults writes ranked results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "\nFound %d results in %dms\n\n", response.Total, response.QueryTime)
	for _, result := range response.Results {
		fmt.Fprintln(w, separator)
		fmt.Fprintf(w, "Rank: %d | Score: %.4f (Semantic: %.4f, Category: %.2f, Keyword: %.4f, Location: %.2f)\n",
			result.Rank, result.RelevanceScore, result.Breakdown.Semantic, result.Breakdown.Category,
			result.Breakdown.Keyword, result.Breakdown.Location)
		if result.MatchReason != "" {
			fmt.Fprintf(w, "Why: %s\n", result.MatchReason)
		}
		writeResource(w, result.Resource)
	}
	return nil
}

// WriteResources writes a resource listing to w in the given format.
func WriteResources(w io.Writer, resources []*models.Resource, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resources)
	}
	fmt.Fprintf(w, "\n%d resources\n\n", len(resources))
	for _, r := range resources {
		fmt.Fprintln(w, separator)
		writeResource(w, r)
	}
	return nil
}

func writeResource(w io.Writer, r *models.Resource) {
	if r == nil {
		return
	}
	fmt.Fprintf(w, "%s [%s] (%s)\n", r.Name, r.Category, r.ID)
	if loc := strings.TrimSpace(r.Location.City + ", " + r.Location.State); loc != "," {
		fmt.Fprintf(w, "Location: %s\n", loc)
	}
	if r.Contact.Phone != "" {
		fmt.Fprintf(w, "Phone: %s\n", r.Contact.Phone)
	}
	if r.Contact.Website != "" {
		fmt.Fprintf(w, "Website: %s\n", r.Contact.Website)
	}
	if r.Hours != "" {
		fmt.Fprintf(w, "Hours: %s\n", r.Hours)
	}
	fmt.Fprintf(w, "\n%s\n\n", utils.Truncate(r.Description, descriptionCap))
}

// WriteReply prints one assistant turn for the interactive chat.
func WriteReply(w io.Writer, resp *agent.Response) {
	if resp.UrgentNotice != "" {
		fmt.Fprintf(w, "\n!! %s\n", resp.UrgentNotice)
	}
	fmt.Fprintf(w, "\nassistant> %s\n", resp.Message)
	for _, r := range resp.Resources {
		fmt.Fprintf(w, "  %d. %s (%s) %s\n", r.Rank, r.Resource.Name, r.Resource.Category, r.Resource.Contact.Phone)
	}
	if len(resp.FollowUpQuestions) > 0 {
		fmt.Fprintln(w, "\nYou could also tell me:")
		for _, q := range resp.FollowUpQuestions {
			fmt.Fprintf(w, "  - %s\n", q)
		}
	}
	fmt.Fprintln(w)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
