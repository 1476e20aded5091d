package agent

import (
	"strings"

	"github.com/hyperjump/nextstep/internal/models"
)

// MaxGeneratedFollowUps caps the questions produced by GenerateFollowUps.
const MaxGeneratedFollowUps = 3

// UrgentNotice is attached to replies for urgent-sounding requests.
const UrgentNotice = "If this is an emergency, please call 911. For immediate crisis support, contact 211 by dialing 2-1-1."

// clarifyingQuestions are queued after a turn that found nothing.
var clarifyingQuestions = []string{
	"What city or area are you located in?",
	"Is this an urgent need?",
	"Are there any specific requirements or preferences you have?",
}

var urgentKeywords = []string{"emergency", "urgent", "immediate", "crisis", "homeless", "hungry"}

// GenerateFollowUps suggests next questions from the query and its results.
func GenerateFollowUps(q models.Query, results []*models.RetrievalResult) []string {
	var questions []string
	if q.Location == "" && len(results) > 0 {
		questions = append(questions, "Would you like me to find resources closer to a specific area?")
	}
	if len(results) > 3 {
		questions = append(questions, "Would you like to see more options?")
	}
	for _, r := range results {
		if len(r.Resource.Requirements) > 0 {
			questions = append(questions, "Do you have questions about eligibility requirements?")
			break
		}
	}
	questions = append(questions, "Is there anything else I can help you find?")
	if len(questions) > MaxGeneratedFollowUps {
		questions = questions[:MaxGeneratedFollowUps]
	}
	return questions
}

// noResultsFollowUps are the clarifying questions followed by the generated ones.
func noResultsFollowUps(q models.Query) []string {
	out := make([]string, 0, len(clarifyingQuestions)+1)
	out = append(out, clarifyingQuestions...)
	return append(out, GenerateFollowUps(q, nil)...)
}

// IsUrgent reports whether text contains any urgent keyword, case-insensitively.
func IsUrgent(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range urgentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
