// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assistant answers questions about a single paper. Paper content is
// fetched once per PMID, kept in a Cache, and embedded in a grounding prompt
// that restricts the chat model to that content.
package assistant

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/pubmed-assistant/pkg/types"
)

// ErrPaperNotFound reports that no content could be retrieved for a PMID.
var ErrPaperNotFound = errors.New("paper not found or couldn't be fetched")

// ChatModel produces one reply to a system prompt and user message.
type ChatModel interface {
	Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error)
}

// groundingPromptTmpl is the system prompt sent with every question.
var groundingPromptTmpl = template.Must(template.New("grounding").Parse(`You are a helpful AI assistant that helps users understand research papers.
You have access to the following paper:

Title: {{.Title}}

Content: {{.FullText}}

Your task is to help the user understand this paper by answering their questions accurately based on the paper's content.
If the answer cannot be found in the paper, clearly state that. Always maintain scientific accuracy and cite specific sections
when possible. If you're making an inference or connection not explicitly stated in the paper, make that clear.`))

// Assistant answers questions grounded in cached paper content.
type Assistant struct {
	Cache       *Cache
	Fetch       FetchFunc
	Model       ChatModel
	Temperature float64
	MaxTokens   int
	Logger      *zap.Logger
}

// New returns an Assistant with the default sampling parameters
// (temperature 0.7, 1000 tokens).
func New(cache *Cache, fetch FetchFunc, model ChatModel, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{
		Cache:       cache,
		Fetch:       fetch,
		Model:       model,
		Temperature: types.DefaultTemperature,
		MaxTokens:   types.DefaultMaxTokens,
		Logger:      logger,
	}
}

// Chat answers message using the content of the paper identified by pmid.
// It returns ErrPaperNotFound when the content cannot be retrieved.
func (a *Assistant) Chat(ctx context.Context, pmid, message string) (string, error) {
	res := a.Cache.GetOrFetch(ctx, pmid, a.Fetch)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !res.Found() {
		a.Logger.Info("paper not found", zap.String("pmid", pmid), zap.Error(res.Err))
		return "", ErrPaperNotFound
	}

	prompt, err := GroundingPrompt(res.Paper)
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}

	reply, err := a.Model.Complete(ctx, prompt, message, a.Temperature, a.MaxTokens)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return reply, nil
}

// GroundingPrompt renders the system prompt for paper.
func GroundingPrompt(paper *types.CachedPaper) (string, error) {
	var buf bytes.Buffer
	if err := groundingPromptTmpl.Execute(&buf, paper); err != nil {
		return "", err
	}
	return buf.String(), nil
}
