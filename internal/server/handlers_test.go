// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/pubmed-assistant/internal/assistant"
	"github.com/pdiddy/pubmed-assistant/pkg/types"
)

type mockBackend struct {
	results   []types.SearchResult
	searchErr error
	reply     string
	chatErr   error

	gotQuery string
	gotMax   int
	gotPMID  string
	gotMsg   string
}

func (m *mockBackend) Search(_ context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	m.gotQuery, m.gotMax = query, maxResults
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.results, nil
}

func (m *mockBackend) Chat(_ context.Context, pmid, message string) (string, error) {
	m.gotPMID, m.gotMsg = pmid, message
	return m.reply, m.chatErr
}

func (m *mockBackend) CachedPapers() int { return 3 }

func newTestServer(b Backend) http.Handler {
	return NewServer(b, types.ServerConfig{Port: 8000}, 50, zap.NewNop()).Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var out struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out.Detail
}

// --- search ---

func TestHandleSearch(t *testing.T) {
	b := &mockBackend{results: []types.SearchResult{
		{PMID: "1", Title: "A", Abstract: "a", Authors: []string{"Jane Smith"}, PublicationDate: "2024-01-01", RelevanceScore: 0.9},
		{PMID: "2", Title: "B", Abstract: "b", Authors: []string{}, PublicationDate: "2000-01-01", RelevanceScore: 0.4},
	}}
	w := do(t, newTestServer(b), http.MethodGet, "/api/search?query=prevention+of+autoimmune+diseases&max_results=5", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "prevention of autoimmune diseases", b.gotQuery)
	assert.Equal(t, 5, b.gotMax)

	var got []map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Len(t, got, 2)
	for _, key := range []string{"pmid", "title", "abstract", "authors", "publication_date", "relevance_score"} {
		assert.Contains(t, got[0], key)
	}
	assert.Equal(t, 0.9, got[0]["relevance_score"])
}

func TestHandleSearchDefaultMaxResults(t *testing.T) {
	b := &mockBackend{results: []types.SearchResult{}}
	w := do(t, newTestServer(b), http.MethodGet, "/api/search?query=asthma", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 50, b.gotMax)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestHandleSearchBadRequest(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"missing query", "/api/search"},
		{"blank query", "/api/search?query=%20"},
		{"non-integer max_results", "/api/search?query=x&max_results=ten"},
		{"zero max_results", "/api/search?query=x&max_results=0"},
		{"negative max_results", "/api/search?query=x&max_results=-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &mockBackend{}
			w := do(t, newTestServer(b), http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, b.gotQuery, "backend must not be called")
		})
	}
}

func TestHandleSearchFailure(t *testing.T) {
	b := &mockBackend{searchErr: fmt.Errorf("ranking results: %w", errors.New("OpenAI API error: HTTP 429"))}
	w := do(t, newTestServer(b), http.MethodGet, "/api/search?query=x", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, detail(t, w), "OpenAI API error: HTTP 429")
}

// --- chat ---

func TestHandleChat(t *testing.T) {
	b := &mockBackend{reply: "The study found X."}
	w := do(t, newTestServer(b), http.MethodPost, "/api/chat", `{"pmid":"39773054","message":"What was found?"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "39773054", b.gotPMID)
	assert.Equal(t, "What was found?", b.gotMsg)
	assert.JSONEq(t, `{"response":"The study found X."}`, w.Body.String())
}

func TestHandleChatNotFound(t *testing.T) {
	b := &mockBackend{chatErr: assistant.ErrPaperNotFound}
	w := do(t, newTestServer(b), http.MethodPost, "/api/chat", `{"pmid":"0","message":"hi"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, notFoundDetail, detail(t, w))
}

func TestHandleChatFailure(t *testing.T) {
	b := &mockBackend{chatErr: errors.New("chat completion: OpenAI API error: HTTP 500")}
	w := do(t, newTestServer(b), http.MethodPost, "/api/chat", `{"pmid":"1","message":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, detail(t, w), "OpenAI API error")
}

func TestHandleChatInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"not json", `{pmid`, http.StatusBadRequest},
		{"missing message", `{"pmid":"1"}`, http.StatusUnprocessableEntity},
		{"missing pmid", `{"message":"hi"}`, http.StatusUnprocessableEntity},
		{"null message", `{"pmid":"1","message":null}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &mockBackend{}
			w := do(t, newTestServer(b), http.MethodPost, "/api/chat", tt.body)
			assert.Equal(t, tt.want, w.Code)
			assert.Empty(t, b.gotPMID)
		})
	}
}

func TestHandleChatAcceptsEmptyMessage(t *testing.T) {
	b := &mockBackend{reply: "Please ask a question about the paper."}
	w := do(t, newTestServer(b), http.MethodPost, "/api/chat", `{"pmid":"39773054","message":""}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "39773054", b.gotPMID)
	assert.Equal(t, "", b.gotMsg)
}

// --- misc ---

func TestHandleHealth(t *testing.T) {
	w := do(t, newTestServer(&mockBackend{}), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","cached_papers":3}`, w.Body.String())
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	h := newTestServer(&mockBackend{results: []types.SearchResult{}})

	r := httptest.NewRequest(http.MethodGet, "/api/search?query=x", nil)
	r.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(&mockBackend{})

	r := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	r.Header.Set("Origin", "https://scholar.example.org")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	r.Header.Set("Access-Control-Request-Headers", "Content-Type, X-Custom")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Less(t, w.Code, 300)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestRequestID(t *testing.T) {
	h := newTestServer(&mockBackend{})

	w := do(t, h, http.MethodGet, "/health", "")
	generated := w.Header().Get("X-Request-Id")
	require.NotEmpty(t, generated)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.Header.Set("X-Request-Id", "trace-123")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, "trace-123", w.Header().Get("X-Request-Id"))
}

func TestStopBeforeOrDuringStart(t *testing.T) {
	for _, startFirst := range []bool{false, true} {
		s := NewServer(&mockBackend{}, types.ServerConfig{Host: "127.0.0.1", Port: 0}, 50, zap.NewNop())

		done := make(chan error, 1)
		if startFirst {
			go func() { done <- s.Start() }()
			require.NoError(t, s.Stop(context.Background()))
		} else {
			require.NoError(t, s.Stop(context.Background()))
			go func() { done <- s.Start() }()
		}
		assert.ErrorIs(t, <-done, http.ErrServerClosed)
	}
}
