// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/pubmed-assistant/pkg/types"
)

// ErrNoArticle reports an efetch response that contains no PubmedArticle.
var ErrNoArticle = errors.New("no PubMed article in response")

// ContentResult is the outcome of FetchContent: either a paper or the
// reason it could not be retrieved.
type ContentResult struct {
	Paper *types.CachedPaper
	Err   error
}

// Found reports whether the paper content was retrieved.
func (r ContentResult) Found() bool { return r.Paper != nil }

// FetchContent retrieves the title, abstract and, when the paper is in the
// PMC archive, the full body text for pmid. Any failure along the way
// yields an absent result carrying the reason; FetchContent never returns
// an error.
func (c *Client) FetchContent(ctx context.Context, pmid string) ContentResult {
	paper, err := c.fetchContent(ctx, pmid)
	if err != nil {
		c.Logger.Warn("paper content unavailable", zap.String("pmid", pmid), zap.Error(err))
		return ContentResult{Err: err}
	}
	c.Logger.Debug("paper content fetched",
		zap.String("pmid", pmid),
		zap.Bool("full_text", paper.HasFullText),
		zap.Int("chars", len(paper.FullText)))
	return ContentResult{Paper: paper}
}

func (c *Client) fetchContent(ctx context.Context, pmid string) (*types.CachedPaper, error) {
	if strings.TrimSpace(pmid) == "" {
		return nil, fmt.Errorf("empty PMID")
	}

	body, err := c.get(ctx, "efetch.fcgi", url.Values{
		"db":      {"pubmed"},
		"id":      {pmid},
		"retmode": {"xml"},
	})
	if err != nil {
		return nil, err
	}

	article, err := firstArticle(body)
	if err != nil {
		return nil, err
	}

	title := article.Article.Title.Or(types.ContentNoTitle)
	abstract := types.ContentNoAbstract
	if article.Article.Abstract != nil {
		abstract = article.Article.Abstract.All.Or(types.ContentNoAbstract)
	}

	var fullText string
	if pmcID := article.pmcID(); pmcID != "" {
		pmcBody, err := c.get(ctx, "efetch.fcgi", url.Values{
			"db":      {"pmc"},
			"id":      {pmcID},
			"rettype": {"xml"},
		})
		if err != nil {
			return nil, fmt.Errorf("fetching PMC%s: %w", pmcID, err)
		}
		fullText, err = bodyText(pmcBody)
		if err != nil {
			return nil, fmt.Errorf("parsing PMC%s: %w", pmcID, err)
		}
	}

	fullText = collapseSpace(fullText)
	abstract = collapseSpace(abstract)

	paper := &types.CachedPaper{
		Title:       title,
		Abstract:    abstract,
		FullText:    fullText,
		HasFullText: fullText != "",
	}
	if !paper.HasFullText {
		paper.FullText = abstract
	}
	return paper, nil
}

// firstArticle decodes the first PubmedArticle in an efetch document.
func firstArticle(data []byte) (*pubmedArticle, error) {
	chunks := splitArticles(data)
	if len(chunks) == 0 {
		if err := checkWellFormed(data); err != nil {
			return nil, fmt.Errorf("parsing PubMed XML: %w", err)
		}
		return nil, ErrNoArticle
	}
	var a pubmedArticle
	if err := newDecoder(chunks[0]).Decode(&a); err != nil {
		return nil, fmt.Errorf("parsing PubMed XML: %w", err)
	}
	return &a, nil
}

// bodyText joins the text of every <p> inside the first <body> of a PMC
// document, in document order, separated by blank lines. A document
// without a body yields "".
func bodyText(data []byte) (string, error) {
	dec := newDecoder(data)
	var paras []string
	inBody := false
	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if !inBody {
				inBody = el.Name.Local == "body"
				continue
			}
			if el.Name.Local == "p" {
				text, err := collectText(dec)
				if err != nil {
					return "", err
				}
				paras = append(paras, text)
				continue
			}
			depth++
		case xml.EndElement:
			if !inBody {
				continue
			}
			if depth == 0 {
				return strings.Join(paras, "\n\n"), nil
			}
			depth--
		}
	}
	return strings.Join(paras, "\n\n"), nil
}

// collapseSpace replaces every run of whitespace with one space and trims
// the ends.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
