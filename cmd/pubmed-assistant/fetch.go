// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-assistant/internal/pubmed"
	"github.com/pdiddy/pubmed-assistant/internal/service"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch PMID...",
	Short: "Fetch PubMed records by PMID",
	Long: `Fetch retrieves the title, abstract, authors and publication date of each
PMID in a single E-utilities request and prints them as YAML. Records that
cannot be parsed are skipped and reported in the log.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newPubMedClient()
		if err != nil {
			return err
		}

		records, err := client.FetchRecords(cmd.Context(), args)
		if err != nil {
			return err
		}
		return service.FormatYAML(records, os.Stdout)
	},
}

var contentCmd = &cobra.Command{
	Use:   "content PMID",
	Short: "Fetch the chat content of one paper",
	Long: `Content retrieves the title and abstract of a paper and, when PubMed Central
has an open-access copy, its full text. This is the content the chat command
grounds its answers in.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newPubMedClient()
		if err != nil {
			return err
		}

		res := client.FetchContent(cmd.Context(), args[0])
		if !res.Found() {
			return fmt.Errorf("paper %s: %w", args[0], res.Err)
		}
		return service.FormatYAML(res.Paper, os.Stdout)
	},
}

func newPubMedClient() (*pubmed.Client, error) {
	cfg, err := loadServiceConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return nil, err
	}
	return pubmed.NewClient(cfg.Entrez, logger.Named("pubmed")), nil
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(contentCmd)
}
