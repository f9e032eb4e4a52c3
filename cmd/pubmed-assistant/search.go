// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-assistant/internal/service"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search PubMed and rank results by semantic relevance",
	Long: `Search sends the query to PubMed, fetches the matching records and orders
them by embedding similarity to the query, most relevant first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		maxResults, _ := cmd.Flags().GetInt("max-results")
		asJSON, _ := cmd.Flags().GetBool("json")

		if strings.TrimSpace(query) == "" {
			return fmt.Errorf("--query is required")
		}

		svc, cfg, err := newService()
		if err != nil {
			return err
		}
		if maxResults <= 0 {
			maxResults = cfg.Entrez.MaxResults
		}

		results, err := svc.Search(cmd.Context(), query, maxResults)
		if err != nil {
			return err
		}

		if asJSON {
			return service.FormatJSON(results, os.Stdout)
		}
		service.FormatTable(results, os.Stdout)
		return nil
	},
}

func init() {
	searchCmd.Flags().String("query", "", "free-text PubMed query")
	searchCmd.Flags().Int("max-results", 0, "maximum number of papers to fetch (default from config, 50)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
