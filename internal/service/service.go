// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package service wires the PubMed client, the semantic ranker and the
// paper assistant into the two operations the API exposes: ranked search
// and grounded chat.
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/pubmed-assistant/internal/assistant"
	"github.com/pdiddy/pubmed-assistant/internal/openai"
	"github.com/pdiddy/pubmed-assistant/internal/pubmed"
	"github.com/pdiddy/pubmed-assistant/internal/rank"
	"github.com/pdiddy/pubmed-assistant/pkg/types"
)

// PaperSearcher resolves a query to paper records.
type PaperSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]types.PaperRecord, error)
}

// Ranker orders papers by relevance to a query.
type Ranker interface {
	Rank(ctx context.Context, query string, papers []types.PaperRecord) ([]types.SearchResult, error)
}

// Chatter answers a question about one paper.
type Chatter interface {
	Chat(ctx context.Context, pmid, message string) (string, error)
}

// Service runs searches and chat turns. The paper cache lives as long as
// the Service.
type Service struct {
	Papers    PaperSearcher
	Ranker    Ranker
	Assistant Chatter
	Cache     *assistant.Cache
	Logger    *zap.Logger
}

// New builds a Service backed by NCBI E-utilities and an OpenAI-compatible
// API as described by cfg.
func New(cfg types.ServiceConfig, logger *zap.Logger) *Service {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := pubmed.NewClient(cfg.Entrez, logger.Named("pubmed"))
	ai := openai.NewClient(cfg.AI)

	ranker := rank.New(ai, logger.Named("rank"))
	ranker.BatchSize = cfg.AI.EmbeddingBatchSize

	cache := assistant.NewCache()
	asst := assistant.New(cache, pm.FetchContent, ai, logger.Named("assistant"))
	asst.Temperature = cfg.AI.Temperature
	asst.MaxTokens = cfg.AI.MaxTokens

	return &Service{
		Papers:    pm,
		Ranker:    ranker,
		Assistant: asst,
		Cache:     cache,
		Logger:    logger,
	}
}

// Search fetches up to maxResults papers for query and returns them ranked
// by relevance, highest first.
func (s *Service) Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	papers, err := s.Papers.Search(ctx, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("searching PubMed: %w", err)
	}
	results, err := s.Ranker.Rank(ctx, query, papers)
	if err != nil {
		return nil, fmt.Errorf("ranking results: %w", err)
	}
	s.Logger.Info("search complete",
		zap.String("query", query),
		zap.Int("max_results", maxResults),
		zap.Int("results", len(results)))
	return results, nil
}

// Chat answers message about the paper identified by pmid. It returns
// assistant.ErrPaperNotFound when the paper content is unavailable.
func (s *Service) Chat(ctx context.Context, pmid, message string) (string, error) {
	return s.Assistant.Chat(ctx, pmid, message)
}

// CachedPapers returns the number of papers held for chat.
func (s *Service) CachedPapers() int {
	if s.Cache == nil {
		return 0
	}
	return s.Cache.Len()
}
