// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/pubmed-assistant/internal/assistant"
	"github.com/pdiddy/pubmed-assistant/pkg/types"
)

const notFoundDetail = "Paper not found or couldn't be fetched"

// chatBody tells a missing field apart from an empty one. Empty strings
// are accepted; missing or null fields are rejected.
type chatBody struct {
	PMID    *string `json:"pmid"`
	Message *string `json:"message"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("query")
	if strings.TrimSpace(query) == "" {
		s.respondError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	maxResults := s.defaultMaxResults
	if raw := q.Get("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.respondError(w, http.StatusBadRequest, "max_results must be a positive integer")
			return
		}
		maxResults = n
	}

	s.logger.Debug("search request", zap.String("query", query), zap.Int("max_results", maxResults))
	results, err := s.backend.Search(r.Context(), query, maxResults)
	if err != nil {
		s.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, results)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var body chatBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.PMID == nil || body.Message == nil {
		s.respondError(w, http.StatusUnprocessableEntity, "pmid and message are required")
		return
	}
	req := types.ChatRequest{PMID: *body.PMID, Message: *body.Message}

	s.logger.Debug("chat request", zap.String("pmid", req.PMID), zap.Int("message_len", len(req.Message)))
	reply, err := s.backend.Chat(r.Context(), req.PMID, req.Message)
	if err != nil {
		if errors.Is(err, assistant.ErrPaperNotFound) {
			s.respondError(w, http.StatusNotFound, notFoundDetail)
			return
		}
		s.logger.Error("chat failed", zap.String("pmid", req.PMID), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, types.ChatResponse{Response: reply})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"cached_papers": s.backend.CachedPapers(),
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("writing response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, detail string) {
	s.respondJSON(w, status, map[string]string{"detail": detail})
}
