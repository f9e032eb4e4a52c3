// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed talks to the NCBI E-utilities API: it resolves free-text
// queries to PubMed identifiers, batch-fetches and parses article records,
// and retrieves the content (PMC full text when available) of one paper
// for the chat assistant.
package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/pubmed-assistant/internal/httputil"
	"github.com/pdiddy/pubmed-assistant/pkg/types"
)

const serviceName = "PubMed"

// Client queries the E-utilities esearch and efetch endpoints.
type Client struct {
	HTTP   *http.Client
	Config types.EntrezConfig
	Logger *zap.Logger
}

// NewClient returns a Client for cfg. Zero-valued settings take their
// defaults; a nil logger discards output.
func NewClient(cfg types.EntrezConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = types.DefaultEntrezBaseURL
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = types.DefaultMaxResults
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		HTTP:   &http.Client{Timeout: cfg.Timeout},
		Config: cfg,
		Logger: logger,
	}
}

// Search resolves query to at most maxResults PMIDs in relevance order and
// fetches their records in one batch. maxResults <= 0 uses the configured
// default.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]types.PaperRecord, error) {
	ids, err := c.SearchIDs(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []types.PaperRecord{}, nil
	}
	return c.FetchRecords(ctx, ids)
}

// SearchIDs runs esearch and returns the matching PMIDs in relevance order.
func (c *Client) SearchIDs(ctx context.Context, query string, maxResults int) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if maxResults <= 0 {
		maxResults = c.Config.MaxResults
	}

	params := url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmax":  {strconv.Itoa(maxResults)},
		"retmode": {"json"},
		"sort":    {"relevance"},
	}
	body, err := c.get(ctx, "esearch.fcgi", params)
	if err != nil {
		return nil, err
	}

	var sr esearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("parsing esearch response: %w", err)
	}
	if sr.Error != "" {
		return nil, &httputil.UpstreamError{Service: serviceName, StatusCode: http.StatusOK, Body: sr.Error}
	}
	if sr.Result.Error != "" {
		return nil, &httputil.UpstreamError{Service: serviceName, StatusCode: http.StatusOK, Body: sr.Result.Error}
	}

	c.Logger.Debug("esearch complete",
		zap.String("query", query),
		zap.Int("ids", len(sr.Result.IDList)),
		zap.String("count", sr.Result.Count))
	return sr.Result.IDList, nil
}

// FetchRecords fetches the given PMIDs with a single efetch call and parses
// the returned article set. Articles that fail to parse are logged and
// omitted.
func (c *Client) FetchRecords(ctx context.Context, pmids []string) ([]types.PaperRecord, error) {
	if len(pmids) == 0 {
		return []types.PaperRecord{}, nil
	}

	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(pmids, ",")},
		"retmode": {"xml"},
	}
	body, err := c.get(ctx, "efetch.fcgi", params)
	if err != nil {
		return nil, err
	}

	res, err := ParseArticles(body)
	if err != nil {
		return nil, err
	}
	for _, s := range res.Skips {
		c.Logger.Warn("skipped PubMed article",
			zap.Int("index", s.Index),
			zap.String("pmid", s.PMID),
			zap.String("reason", s.Reason))
	}
	return res.Records, nil
}

// get issues one GET against an E-utilities endpoint.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c.Config.APIKey != "" {
		params.Set("api_key", c.Config.APIKey)
	}
	if c.Config.Tool != "" {
		params.Set("tool", c.Config.Tool)
	}
	if c.Config.Email != "" {
		params.Set("email", c.Config.Email)
	}

	reqURL := strings.TrimRight(c.Config.BaseURL, "/") + "/" + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.Config.UserAgent != "" {
		req.Header.Set("User-Agent", c.Config.UserAgent)
	}

	return httputil.Do(ctx, c.HTTP, req, serviceName)
}

// esearch JSON structures.
type esearchResponse struct {
	Error  string        `json:"error"`
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count  string   `json:"count"`
	IDList []string `json:"idlist"`
	Error  string   `json:"ERROR"`
}
