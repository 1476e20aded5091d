package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hyperjump/nextstep/internal/agent"
	"github.com/hyperjump/nextstep/internal/catalog"
	"github.com/hyperjump/nextstep/internal/config"
	"github.com/hyperjump/nextstep/internal/dataset"
	"github.com/hyperjump/nextstep/internal/embedding"
	"github.com/hyperjump/nextstep/internal/keyword"
	"github.com/hyperjump/nextstep/internal/llm"
	"github.com/hyperjump/nextstep/internal/models"
	"github.com/hyperjump/nextstep/internal/ranking"
	"github.com/hyperjump/nextstep/internal/search"
)

type staticChat struct {
	reply string
}

func (c *staticChat) Complete(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	return c.reply, nil
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	return newTestServerWithConfig(t, config.Default())
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	idx, err := keyword.NewBleveIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	provider := embedding.NewProvider(nil, embedding.NewHashEmbedder(embedding.DefaultHashDimensions))
	cat := catalog.New(provider, catalog.WithTextIndex(idx))
	records, err := dataset.Default()
	require.NoError(t, err)
	require.NoError(t, cat.Initialize(context.Background(), records))

	engine := search.NewEngine(cat, provider, ranking.NewRanker(nil))
	a := agent.New(nil, engine, &staticChat{reply: "Here are some places that can help."},
		agent.WithBackground(models.Background{Name: "Sam", Location: "Austin, TX"}))

	srv := NewServer(a, engine, cat, cfg, zap.NewNop())
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

type conversationBody struct {
	ConversationID string `json:"conversation_id"`
	Response       struct {
		Message           string                   `json:"message"`
		Resources         []map[string]interface{} `json:"resources"`
		FollowUpQuestions []string                 `json:"follow_up_questions"`
		UrgentNotice      string                   `json:"urgent_notice"`
	} `json:"response"`
	Conversation struct {
		History []models.Turn `json:"history"`
	} `json:"conversation"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(out))
}

func TestHealth(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestConversationFlow(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/api/v1/conversations", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var started conversationBody
	decode(t, w, &started)
	require.NotEmpty(t, started.ConversationID)
	assert.Equal(t, "Here are some places that can help.", started.Response.Message)
	require.Len(t, started.Conversation.History, 1)
	assert.Equal(t, models.RoleAssistant, started.Conversation.History[0].Role)

	path := "/api/v1/conversations/" + started.ConversationID
	w = do(t, h, http.MethodPost, path+"/messages", messageRequest{Message: "I need food for my kids"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var turn conversationBody
	decode(t, w, &turn)
	assert.NotEmpty(t, turn.Response.Resources)
	assert.Len(t, turn.Conversation.History, 3)

	w = do(t, h, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched conversationBody
	decode(t, w, &fetched)
	assert.Len(t, fetched.Conversation.History, 3)

	w = do(t, h, http.MethodPost, path+"/messages", messageRequest{Message: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, h, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMessage_UrgentNotice(t *testing.T) {
	h := newTestServer(t)
	w := do(t, h, http.MethodPost, "/api/v1/conversations", nil)
	var started conversationBody
	decode(t, w, &started)

	w = do(t, h, http.MethodPost, "/api/v1/conversations/"+started.ConversationID+"/messages",
		messageRequest{Message: "This is an emergency, I have nowhere to sleep tonight"})
	require.Equal(t, http.StatusOK, w.Code)
	var turn conversationBody
	decode(t, w, &turn)
	assert.Equal(t, agent.UrgentNotice, turn.Response.UrgentNotice)
}

func TestMessage_UnknownConversation(t *testing.T) {
	h := newTestServer(t)
	w := do(t, h, http.MethodPost, "/api/v1/conversations/nope/messages", messageRequest{Message: "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, h, http.MethodDelete, "/api/v1/conversations/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMessage_InvalidBody(t *testing.T) {
	h := newTestServer(t)
	w := do(t, h, http.MethodPost, "/api/v1/conversations", nil)
	var started conversationBody
	decode(t, w, &started)
	w = do(t, h, http.MethodPost, "/api/v1/conversations/"+started.ConversationID+"/messages", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearch(t *testing.T) {
	h := newTestServer(t)
	w := do(t, h, http.MethodPost, "/api/v1/search", models.Query{
		Text:       "food pantry groceries",
		Categories: []models.Category{models.CategoryFood},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out models.SearchResponse
	decode(t, w, &out)
	require.NotEmpty(t, out.Results)
	assert.Equal(t, models.CategoryFood, out.Results[0].Resource.Category)
	assert.Equal(t, 1, out.Results[0].Rank)
	assert.Equal(t, len(out.Results), out.Total)
}

func TestSearch_BadRequests(t *testing.T) {
	h := newTestServer(t)
	tests := []struct {
		name string
		body interface{}
	}{
		{"empty query", models.Query{}},
		{"unknown category", `{"text":"help","categories":["pets"]}`},
		{"bad urgency", `{"text":"help","urgency":"whenever"}`},
		{"malformed", `{"text":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/v1/search", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

type resourceList struct {
	Resources []*models.Resource `json:"resources"`
	Total     int                `json:"total"`
}

func TestListResources(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodGet, "/api/v1/resources", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all resourceList
	decode(t, w, &all)
	assert.Equal(t, 12, all.Total)

	w = do(t, h, http.MethodGet, "/api/v1/resources?category=housing", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var housing resourceList
	decode(t, w, &housing)
	require.NotEmpty(t, housing.Resources)
	for _, r := range housing.Resources {
		assert.Equal(t, models.CategoryHousing, r.Category)
	}

	w = do(t, h, http.MethodGet, "/api/v1/resources?city=Houston&state=TX", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var houston resourceList
	decode(t, w, &houston)
	require.NotEmpty(t, houston.Resources)
	for _, r := range houston.Resources {
		assert.Equal(t, "Houston", r.Location.City)
	}

	w = do(t, h, http.MethodGet, "/api/v1/resources?limit=2", nil)
	var limited resourceList
	decode(t, w, &limited)
	assert.Len(t, limited.Resources, 2)
}

func TestListResources_TextSearch(t *testing.T) {
	h := newTestServer(t)
	w := do(t, h, http.MethodGet, "/api/v1/resources?q=shelter", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out resourceList
	decode(t, w, &out)
	ids := make([]string, 0, len(out.Resources))
	for _, r := range out.Resources {
		ids = append(ids, r.ID)
	}
	assert.Contains(t, ids, "housing-001")
}

func TestListResources_BadParams(t *testing.T) {
	h := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/resources?limit=zero", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/v1/resources?category=pets", nil).Code)
}

func TestGetAndAddResource(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodGet, "/api/v1/resources/legal-001", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var legal models.Resource
	decode(t, w, &legal)
	assert.Equal(t, models.CategoryLegal, legal.Category)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/v1/resources/missing", nil).Code)

	w = do(t, h, http.MethodPost, "/api/v1/resources", `{
		"name": "Northside Diaper Bank",
		"description": "Free diapers and wipes for families",
		"category": "childcare",
		"location": {"city": "Austin", "state": "TX"}
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var added models.Resource
	decode(t, w, &added)
	require.NotEmpty(t, added.ID)

	w = do(t, h, http.MethodGet, "/api/v1/resources/"+added.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/resources", `{"name": "X", "category": "pets"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, h, http.MethodPost, "/api/v1/resources", `{"category": "food"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddResource_CategoryCaseInsensitive(t *testing.T) {
	h := newTestServer(t)

	w := do(t, h, http.MethodPost, "/api/v1/resources", `{
		"id": "housing-900",
		"name": "Eastside Rapid Rehousing",
		"category": "Housing",
		"location": {"city": "Austin", "state": "TX"}
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var added models.Resource
	decode(t, w, &added)
	assert.Equal(t, models.CategoryHousing, added.Category)

	w = do(t, h, http.MethodGet, "/api/v1/resources?category=housing&limit=200", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "housing-900")
}

func TestRequestBodyLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxBodyBytes = 64
	h := newTestServerWithConfig(t, cfg)

	big := fmt.Sprintf(`{"name": "X", "category": "food", "description": %q}`, strings.Repeat("a", 256))
	w := do(t, h, http.MethodPost, "/api/v1/resources", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/conversations", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var conv conversationBody
	decode(t, w, &conv)
	msg := fmt.Sprintf(`{"message": %q}`, strings.Repeat("food ", 64))
	w = do(t, h, http.MethodPost, "/api/v1/conversations/"+conv.ConversationID+"/messages", msg)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestConversationLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxConversations = 1
	h := newTestServerWithConfig(t, cfg)

	w := do(t, h, http.MethodPost, "/api/v1/conversations", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var first conversationBody
	decode(t, w, &first)

	w = do(t, h, http.MethodPost, "/api/v1/conversations", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var second conversationBody
	decode(t, w, &second)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/v1/conversations/"+first.ConversationID, nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/v1/conversations/"+second.ConversationID, nil).Code)
}

func TestStatus(t *testing.T) {
	h := newTestServer(t)
	do(t, h, http.MethodPost, "/api/v1/conversations", nil)

	w := do(t, h, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Catalog       catalog.Stats          `json:"catalog"`
		Conversations int                    `json:"conversations"`
		Ranking       ranking.RankingConfig  `json:"ranking"`
		Config        map[string]interface{} `json:"config"`
	}
	decode(t, w, &out)
	assert.Equal(t, 12, out.Catalog.Total)
	assert.Equal(t, 1, out.Conversations)
	assert.Equal(t, 0.8, out.Ranking.CategoryBoost)
	assert.Equal(t, "built-in", out.Config["dataset"])
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(agent.ErrEmptyQuery))
	assert.Equal(t, http.StatusNotFound, statusFor(catalog.ErrNotFound))
	assert.Equal(t, http.StatusNotImplemented, statusFor(catalog.ErrTextSearchDisabled))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
	assert.Equal(t, http.StatusBadRequest, statusFor(fmt.Errorf("wrapped: %w", search.ErrInvalidUrgency)))
}
