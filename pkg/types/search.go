// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pubmed-assistant
// service: parsed PubMed records, ranked search results, cached paper
// content for the chat assistant, and service configuration.
package types

// SearchResult is a PaperRecord annotated with its relevance to a query.
// The score is the raw inner product of the query and paper embeddings, so
// it is not bounded to [-1, 1].
type SearchResult struct {
	// PMID is the PubMed identifier of the paper.
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the article title, or a placeholder when PubMed has none.
	Title string `json:"title" yaml:"title"`

	// Abstract is the article abstract, or a placeholder when PubMed has none.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Authors lists "ForeName LastName" entries in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// PublicationDate is the YYYY-MM-DD publication date.
	PublicationDate string `json:"publication_date" yaml:"publication_date"`

	// RelevanceScore is the embedding similarity to the query; higher is better.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`
}

// NewSearchResult copies the metadata of p and attaches score.
func NewSearchResult(p PaperRecord, score float64) SearchResult {
	authors := p.Authors
	if authors == nil {
		authors = []string{}
	}
	return SearchResult{
		PMID:            p.PMID,
		Title:           p.Title,
		Abstract:        p.Abstract,
		Authors:         authors,
		PublicationDate: p.PublicationDate,
		RelevanceScore:  score,
	}
}
