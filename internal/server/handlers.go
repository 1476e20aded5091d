package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/nextstep/internal/agent"
	"github.com/hyperjump/nextstep/internal/catalog"
	"github.com/hyperjump/nextstep/internal/keyword"
	"github.com/hyperjump/nextstep/internal/models"
	"github.com/hyperjump/nextstep/internal/search"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type conversationResponse struct {
	ConversationID string             `json:"conversation_id"`
	Response       *agent.Response    `json:"response,omitempty"`
	Conversation   agent.Conversation `json:"conversation"`
}

type messageRequest struct {
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

func (s *Server) handleStartConversation(w http.ResponseWriter, r *http.Request) {
	id, sess := s.sessions.create()
	sess.mu.Lock()
	defer sess.mu.Unlock()

	resp, next := s.agent.Intro(r.Context(), sess.conv)
	sess.conv = next
	s.logger.Debug("conversation started", zap.String("id", id))
	s.respondJSON(w, http.StatusCreated, conversationResponse{ConversationID: id, Response: resp, Conversation: next})
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok := s.sessions.get(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "conversation not found")
		return
	}
	sess.mu.Lock()
	conv := sess.conv
	sess.mu.Unlock()
	s.respondJSON(w, http.StatusOK, conversationResponse{ConversationID: id, Conversation: conv})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, ok := s.sessions.get(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "conversation not found")
		return
	}
	var req messageRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	location := strings.TrimSpace(req.Location)
	if location == "" {
		location = s.agent.Background().Location
	}
	s.logger.Debug("message request", zap.String("id", id), zap.String("location", location))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	resp, next, err := s.agent.Turn(r.Context(), sess.conv, models.Query{Text: req.Message, Location: location})
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	sess.conv = next
	s.respondJSON(w, http.StatusOK, conversationResponse{ConversationID: id, Response: resp, Conversation: next})
}

func (s *Server) handleClearConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.sessions.delete(id) {
		s.respondError(w, http.StatusNotFound, "conversation not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.Query
	if !s.decodeBody(w, r, &query) {
		return
	}
	s.logger.Debug("search request", zap.String("text", query.Text), zap.String("location", query.Location))
	response, err := s.engine.Search(r.Context(), &query)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("search failed", zap.Error(err))
		}
		s.respondError(w, status, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	limit := defaultListLimit
	if v := params.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxListLimit)
	}
	var category models.Category
	if v := params.Get("category"); v != "" {
		c, err := models.ParseCategory(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		category = c
	}

	var resources []*models.Resource
	if q := strings.TrimSpace(params.Get("q")); q != "" {
		opts := &keyword.SearchOptions{
			NameBoost:    2.0,
			Category:     category,
			FuzzyEnabled: params.Get("fuzzy") == "true" || s.config.Search.FuzzyText,
		}
		found, err := s.catalog.TextSearch(r.Context(), q, limit, opts)
		if err != nil {
			s.respondError(w, statusFor(err), err.Error())
			return
		}
		resources = found
	} else {
		switch {
		case category != "":
			resources = s.catalog.GetResourcesByCategory(category)
		case params.Get("city") != "":
			resources = s.catalog.ResourcesByLocation(params.Get("city"), params.Get("state"))
		default:
			resources = s.catalog.GetAllResources()
		}
		if len(resources) > limit {
			resources = resources[:limit]
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"resources": resources,
		"total":     len(resources),
	})
}

func (s *Server) handleGetResource(w http.ResponseWriter, r *http.Request) {
	res, err := s.catalog.GetResource(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleAddResource(w http.ResponseWriter, r *http.Request) {
	var input models.Resource
	if !s.decodeBody(w, r, &input) {
		return
	}
	if strings.TrimSpace(input.Name) == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	category, err := models.ParseCategory(string(input.Category))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	input.Category = category
	s.logger.Debug("add resource request", zap.String("id", input.ID), zap.String("name", input.Name))
	stored, err := s.catalog.AddResource(r.Context(), &input)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"catalog":       s.catalog.Stats(),
		"conversations": s.sessions.len(),
		"ranking":       s.engine.Ranker().Config(),
	}
	if s.config != nil {
		dataset := s.config.Dataset.Path
		if dataset == "" {
			dataset = "built-in"
		}
		resp["config"] = map[string]interface{}{
			"llm_model":       s.config.LLM.Model,
			"embedding_model": s.config.Embedding.Model,
			"dataset":         dataset,
			"dataset_watch":   s.config.Dataset.Watch,
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, agent.ErrEmptyQuery),
		errors.Is(err, search.ErrEmptyQuery),
		errors.Is(err, search.ErrInvalidUrgency),
		errors.Is(err, models.ErrUnknownCategory):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrTextSearchDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads a JSON body of at most s.maxBody bytes into v and writes
// the error response when it cannot.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if s.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
