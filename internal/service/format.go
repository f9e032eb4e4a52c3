// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-assistant/pkg/types"
)

// Column widths in terminal cells.
const (
	titleWidth   = 60
	authorsWidth = 20
)

// FormatTable writes ranked results as a human-readable table to w.
func FormatTable(results []types.SearchResult, w io.Writer) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-10s  %s  %s  %-10s  %s\n",
		"Rank", "PMID", cell("Title", titleWidth), cell("Authors", authorsWidth), "Date", "Score")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i, r := range results {
		fmt.Fprintf(w, "%-4d  %-10s  %s  %s  %-10s  %.4f\n",
			i+1, r.PMID, cell(r.Title, titleWidth), cell(formatAuthors(r.Authors), authorsWidth), r.PublicationDate, r.RelevanceScore)
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
}

// FormatJSON writes v as indented JSON to w.
func FormatJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatYAML writes v as YAML to w.
func FormatYAML(v any, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], authorsWidth)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

// truncate shortens s to at most width terminal cells.
func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "...")
}

// cell truncates s and pads it to exactly width terminal cells.
func cell(s string, width int) string {
	return runewidth.FillRight(truncate(s, width), width)
}
