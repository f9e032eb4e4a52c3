// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"errors"
	"fmt"
	"io"

	"github.com/pdiddy/pubmed-assistant/pkg/types"
)

// Date components substituted when PubDate omits them.
const (
	defaultYear  = "2000"
	defaultMonth = "01"
	defaultDay   = "01"
)

var errMissingPMID = errors.New("missing PMID")

// Skip records a PubmedArticle element that did not produce a record.
type Skip struct {
	// Index is the zero-based position of the element in the document.
	Index int
	// PMID is the identifier if it could be read.
	PMID   string
	Reason string
}

// ParseResult holds the records parsed from one efetch document and the
// elements that were skipped on the way.
type ParseResult struct {
	Records []types.PaperRecord
	Skips   []Skip
}

// ParseArticles converts a PubmedArticleSet document into paper records,
// one per PubmedArticle element. Each element is decoded on its own, so a
// malformed article is reported in Skips and the articles after it are
// still parsed. len(Records)+len(Skips) always equals the number of
// PubmedArticle elements. An error is returned only when the document
// holds no article and is not well-formed XML.
func ParseArticles(data []byte) (ParseResult, error) {
	res := ParseResult{Records: []types.PaperRecord{}}

	chunks := splitArticles(data)
	if len(chunks) == 0 {
		if err := checkWellFormed(data); err != nil {
			return res, fmt.Errorf("parsing PubMed XML: %w", err)
		}
		return res, nil
	}

	for i, chunk := range chunks {
		var raw pubmedArticle
		if err := newDecoder(chunk).Decode(&raw); err != nil {
			res.Skips = append(res.Skips, Skip{Index: i, PMID: sniffPMID(chunk), Reason: err.Error()})
			continue
		}

		rec, err := raw.record()
		if err != nil {
			res.Skips = append(res.Skips, Skip{Index: i, PMID: raw.PMID.Or(""), Reason: err.Error()})
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

// checkWellFormed reads data to the end and returns the first syntax error.
func checkWellFormed(data []byte) error {
	dec := newDecoder(data)
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// record applies the per-field defaults to a decoded article.
func (a *pubmedArticle) record() (types.PaperRecord, error) {
	pmid := a.PMID.Or("")
	if pmid == "" {
		return types.PaperRecord{}, errMissingPMID
	}

	abstract := types.NoAbstract
	if a.Article.Abstract != nil {
		abstract = a.Article.Abstract.FirstAT.Or(types.NoAbstract)
	}

	authors := []string{}
	for _, au := range a.Article.Authors {
		last := au.LastName.Or("")
		fore := au.ForeName.Or("")
		if last == "" || fore == "" {
			continue
		}
		authors = append(authors, fore+" "+last)
	}

	return types.PaperRecord{
		PMID:            pmid,
		Title:           a.Article.Title.Or(types.NoTitle),
		Abstract:        abstract,
		Authors:         authors,
		PublicationDate: a.Article.PubDate.format(),
	}, nil
}

// format assembles Year-Month-Day without validating the components;
// PubMed months are often abbreviations such as "Jan".
func (d *pubDate) format() string {
	if d == nil {
		return defaultYear + "-" + defaultMonth + "-" + defaultDay
	}
	return d.Year.Or(defaultYear) + "-" + d.Month.Or(defaultMonth) + "-" + d.Day.Or(defaultDay)
}
