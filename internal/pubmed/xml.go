// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// newDecoder returns an XML decoder that tolerates the HTML entities
// PubMed and PMC occasionally emit.
func newDecoder(data []byte) *xml.Decoder {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = xml.HTMLEntity
	return dec
}

var (
	articleOpen  = []byte("<PubmedArticle")
	articleClose = []byte("</PubmedArticle>")
	pmidOpen     = []byte("<PMID")
	pmidClose    = []byte("</PMID>")
)

// splitArticles returns the bytes of each PubmedArticle element in data, in
// document order. An element without a closing tag runs up to the next
// article or the end of data, so decoding it fails on its own.
func splitArticles(data []byte) [][]byte {
	var chunks [][]byte
	start := nextArticle(data, 0)
	for start >= 0 {
		next := nextArticle(data, start+len(articleOpen))
		limit := len(data)
		if next >= 0 {
			limit = next
		}
		end := limit
		if i := bytes.Index(data[start:limit], articleClose); i >= 0 {
			end = start + i + len(articleClose)
		}
		chunks = append(chunks, data[start:end])
		start = next
	}
	return chunks
}

// nextArticle returns the offset of the first <PubmedArticle> start tag at
// or after from, or -1. <PubmedArticleSet> does not match.
func nextArticle(data []byte, from int) int {
	for from < len(data) {
		i := bytes.Index(data[from:], articleOpen)
		if i < 0 {
			return -1
		}
		at := from + i
		after := at + len(articleOpen)
		if after < len(data) && isTagBoundary(data[after]) {
			return at
		}
		from = after
	}
	return -1
}

func isTagBoundary(b byte) bool {
	switch b {
	case '>', '/', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

// sniffPMID pulls the first PMID out of an article that failed to decode.
func sniffPMID(chunk []byte) string {
	i := bytes.Index(chunk, pmidOpen)
	if i < 0 {
		return ""
	}
	rest := chunk[i+len(pmidOpen):]
	gt := bytes.IndexByte(rest, '>')
	if gt < 0 {
		return ""
	}
	rest = rest[gt+1:]
	end := bytes.Index(rest, pmidClose)
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(string(rest[:end]))
}

// optionalText is the text content of an element that may be absent.
// Text is gathered from the element and all of its descendants, so inline
// markup such as <i> or <sup> keeps its words.
type optionalText struct {
	Value   string
	Present bool
}

func (t *optionalText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	text, err := collectText(d)
	if err != nil {
		return err
	}
	t.Value = text
	t.Present = true
	return nil
}

// Or returns the trimmed text, or def when the element is absent or blank.
func (t optionalText) Or(def string) string {
	v := strings.TrimSpace(t.Value)
	if !t.Present || v == "" {
		return def
	}
	return v
}

// abstractNode captures both the whole text of an <Abstract> element and
// the text of its first <AbstractText> child.
type abstractNode struct {
	All     optionalText
	FirstAT optionalText
}

func (a *abstractNode) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var all strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if depth == 0 && el.Name.Local == "AbstractText" && !a.FirstAT.Present {
				text, err := collectText(d)
				if err != nil {
					return err
				}
				a.FirstAT = optionalText{Value: text, Present: true}
				all.WriteString(text)
				continue
			}
			depth++
		case xml.EndElement:
			if depth == 0 {
				a.All = optionalText{Value: all.String(), Present: true}
				return nil
			}
			depth--
		case xml.CharData:
			all.Write(el)
		}
	}
}

// collectText consumes tokens up to the end of the current element and
// returns all character data seen, in document order.
func collectText(d *xml.Decoder) (string, error) {
	var b strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return "", err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				return b.String(), nil
			}
			depth--
		case xml.CharData:
			b.Write(el)
		}
	}
}

// pubmedArticle mirrors the parts of a <PubmedArticle> element that the
// service reads.
type pubmedArticle struct {
	PMID    optionalText  `xml:"MedlineCitation>PMID"`
	Article articleFields `xml:"MedlineCitation>Article"`
	IDs     []articleID   `xml:"PubmedData>ArticleIdList>ArticleId"`
}

type articleFields struct {
	Title    optionalText   `xml:"ArticleTitle"`
	Abstract *abstractNode  `xml:"Abstract"`
	Authors  []pubmedAuthor `xml:"AuthorList>Author"`
	PubDate  *pubDate       `xml:"Journal>JournalIssue>PubDate"`
}

type pubmedAuthor struct {
	LastName optionalText `xml:"LastName"`
	ForeName optionalText `xml:"ForeName"`
}

type pubDate struct {
	Year  optionalText `xml:"Year"`
	Month optionalText `xml:"Month"`
	Day   optionalText `xml:"Day"`
}

type articleID struct {
	IDType string `xml:"IdType,attr"`
	Value  string `xml:",chardata"`
}

// pmcID returns the PMC archive identifier without its "PMC" prefix, or ""
// when the article has none.
func (a *pubmedArticle) pmcID() string {
	for _, id := range a.IDs {
		if id.IDType == "pmc" {
			return strings.TrimSpace(strings.Replace(id.Value, "PMC", "", -1))
		}
	}
	return ""
}
