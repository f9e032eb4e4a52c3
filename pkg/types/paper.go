// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Placeholders substituted when PubMed omits a field. Downstream prompt and
// embedding text construction relies on these never being empty.
const (
	NoTitle    = "No title available"
	NoAbstract = "No abstract available"

	ContentNoTitle    = "Title not available"
	ContentNoAbstract = "Abstract not available"
)

// PaperRecord holds the metadata parsed from one PubmedArticle element.
// Records are built once by the parser and never mutated afterwards.
type PaperRecord struct {
	// PMID is the PubMed identifier; unique within a result set.
	PMID string `json:"pmid" yaml:"pmid"`

	// Title is the ArticleTitle text or NoTitle.
	Title string `json:"title" yaml:"title"`

	// Abstract is the first AbstractText or NoAbstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Authors lists "ForeName LastName" for every author with both parts.
	Authors []string `json:"authors" yaml:"authors"`

	// PublicationDate is "Year-Month-Day" from PubDate with 2000/01/01
	// substituted per missing component. Components are not validated.
	PublicationDate string `json:"publication_date" yaml:"publication_date"`
}

// CachedPaper is the content the chat assistant grounds its answers in.
type CachedPaper struct {
	// Title is the article title or ContentNoTitle.
	Title string `json:"title" yaml:"title"`

	// Abstract is the whitespace-normalized abstract or ContentNoAbstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// FullText is the whitespace-normalized PMC body text, or Abstract when
	// no full text could be retrieved.
	FullText string `json:"full_text" yaml:"full_text"`

	// HasFullText reports whether FullText came from the PMC archive.
	HasFullText bool `json:"has_full_text" yaml:"has_full_text"`
}

// ChatRequest is one user question about a paper.
type ChatRequest struct {
	PMID    string `json:"pmid"`
	Message string `json:"message"`
}

// ChatResponse carries the assistant's single reply.
type ChatResponse struct {
	Response string `json:"response"`
}
