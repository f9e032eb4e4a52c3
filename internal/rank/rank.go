// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank orders candidate papers by semantic similarity to a query.
// Similarity is the raw dot product of embedding vectors; scores are not
// normalized, so their range depends on the embedding model.
package rank

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/pdiddy/pubmed-assistant/pkg/types"
)

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// BatchEmbedder embeds several texts in one call, returning vectors in
// input order. Embedders that implement it let the Ranker reduce the number
// of provider calls.
type BatchEmbedder interface {
	Embedder
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// Ranker scores papers against a query with an Embedder.
type Ranker struct {
	Embedder Embedder

	// BatchSize is the number of paper texts per EmbedBatch call when the
	// embedder supports batching. Values <= 1 embed papers one at a time.
	BatchSize int

	Logger *zap.Logger
}

// New returns a Ranker that embeds one paper per call.
func New(e Embedder, logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{Embedder: e, Logger: logger}
}

// Rank embeds the query and every paper, scores each paper by dot product
// with the query vector, and returns the results sorted by score,
// highest first. An empty paper list returns immediately without calling
// the embedder. Any embedding failure aborts the ranking.
func (r *Ranker) Rank(ctx context.Context, query string, papers []types.PaperRecord) ([]types.SearchResult, error) {
	if len(papers) == 0 {
		return []types.SearchResult{}, nil
	}

	qv, err := r.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	texts := make([]string, len(papers))
	for i, p := range papers {
		texts[i] = PaperText(p)
	}

	vecs, err := r.embedAll(ctx, texts)
	if err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, len(papers))
	for i, p := range papers {
		score, err := Dot(qv, vecs[i])
		if err != nil {
			return nil, fmt.Errorf("scoring paper %s: %w", p.PMID, err)
		}
		results[i] = types.NewSearchResult(p, score)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})

	r.Logger.Debug("ranked papers", zap.String("query", query), zap.Int("papers", len(results)))
	return results, nil
}

// embedAll embeds texts, batching when the embedder allows it.
func (r *Ranker) embedAll(ctx context.Context, texts []string) ([][]float64, error) {
	be, ok := r.Embedder.(BatchEmbedder)
	if !ok || r.BatchSize <= 1 {
		vecs := make([][]float64, len(texts))
		for i, t := range texts {
			v, err := r.Embedder.Embed(ctx, t)
			if err != nil {
				return nil, fmt.Errorf("embedding paper %d: %w", i, err)
			}
			vecs[i] = v
		}
		return vecs, nil
	}

	vecs := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += r.BatchSize {
		end := min(start+r.BatchSize, len(texts))
		batch, err := be.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding papers %d-%d: %w", start, end-1, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedding papers %d-%d: got %d vectors", start, end-1, len(batch))
		}
		vecs = append(vecs, batch...)
	}
	return vecs, nil
}

// PaperText is the text embedded for a paper.
func PaperText(p types.PaperRecord) string {
	return "Title: " + p.Title + "\nAbstract: " + p.Abstract
}

// Dot returns the inner product of a and b.
func Dot(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector length mismatch: %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}
