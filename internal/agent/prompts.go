package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hyperjump/nextstep/internal/llm"
	"github.com/hyperjump/nextstep/internal/models"
)

const introPrompt = `You are a compassionate social services assistant helping people find resources in a hospital/clinic.
Based on the user's background, send an intro message that:
1. Acknowledges their situation with empathy, but not excessively or repetitively throughout the conversation
2. Provides actionable next steps if applicable
3. Offers encouragement and support, but not excessively or repetitively throughout the conversation
4. Asks follow-up questions, but only as necessary to clarify the user's needs

Keep your tone warm, professional, and hopeful.`

const noResultsPrompt = `You are a compassionate social services assistant helping people find resources in a hospital/clinic.
Based on the user's background, the user's request, and the conversation history, provide a helpful, empathetic response that answers their query.
1. Acknowledge their situation with empathy, but not excessively or repetitively throughout the conversation
2. Provide actionable next steps if applicable
3. Offer encouragement and support, but not excessively or repetitively throughout the conversation
4. Ask follow-up questions, but only as necessary to clarify the user's needs
5. Make sure to use the conversation history and background information for context and to avoid repetition of similar statements

Keep your tone warm, professional, and hopeful.`

const resultsPrompt = `You are a compassionate social services assistant helping people find resources in a hospital/clinic.
Based on the user's request, the retrieved resources, and the conversation history, provide a helpful, empathetic response that:
1. Acknowledges their situation with empathy, but not excessively or repetitively throughout the conversation
2. Presents the most relevant resources and necessary details (contact info, location, services, etc.) in a clear, concise, organized manner
3. Provides actionable next steps
4. Offers encouragement and support, but not excessively or repetitively throughout the conversation
5. Asks follow-up questions, but only as necessary to clarify the user's needs
6. Makes sure to use the conversation history for context and to avoid repetition of similar statements

Keep your tone warm, professional, and hopeful. Focus on the most relevant 2-3 resources.`

func backgroundJSON(bg models.Background) string {
	data, err := json.Marshal(bg)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func introMessages(bg models.Background) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: introPrompt},
		{Role: llm.RoleUser, Content: "User background: " + backgroundJSON(bg)},
	}
}

func noResultsMessages(text string, conv Conversation, bg models.Background) []llm.Message {
	content := fmt.Sprintf("User request: %s\n\nConversation history:\n%s\n\nFollow up questions as needed: %s\n\nUser background: %s",
		text, conv.History.Transcript(), strings.Join(conv.FollowUps, ", "), backgroundJSON(bg))
	return []llm.Message{
		{Role: llm.RoleSystem, Content: noResultsPrompt},
		{Role: llm.RoleUser, Content: content},
	}
}

func resultsMessages(text string, results []*models.RetrievalResult, conv Conversation) []llm.Message {
	content := fmt.Sprintf("User request: %s\n\nAvailable resources:\n%s\n\nConversation history:\n%s\n\nFollow up questions as needed: %s",
		text, ResourceContext(results), conv.History.Transcript(), strings.Join(conv.FollowUps, ", "))
	return []llm.Message{
		{Role: llm.RoleSystem, Content: resultsPrompt},
		{Role: llm.RoleUser, Content: content},
	}
}

// ResourceContext renders results as the resource blocks given to the model.
func ResourceContext(results []*models.RetrievalResult) string {
	blocks := make([]string, len(results))
	for i, res := range results {
		r := res.Resource
		blocks[i] = fmt.Sprintf("Resource: %s\nDescription: %s\nServices: %s\nLocation: %s, %s, %s\nContact: %s | %s\nHours: %s\nRequirements: %s\nMatch Reason: %s",
			r.Name,
			r.Description,
			strings.Join(r.Services, ", "),
			r.Location.Address, r.Location.City, r.Location.State,
			orNA(r.Contact.Phone), orNA(r.Contact.Website),
			r.Hours,
			strings.Join(r.Requirements, ", "),
			res.MatchReason)
	}
	return strings.Join(blocks, "\n\n")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
