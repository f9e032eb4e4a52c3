// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat PMID",
	Short: "Ask a question about one paper",
	Long: `Chat fetches the paper's content and asks the chat model to answer the
message using only that paper as context.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message, _ := cmd.Flags().GetString("message")
		if strings.TrimSpace(message) == "" {
			return fmt.Errorf("--message is required")
		}

		svc, _, err := newService()
		if err != nil {
			return err
		}

		reply, err := svc.Chat(cmd.Context(), args[0], message)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

func init() {
	chatCmd.Flags().StringP("message", "m", "", "question to ask about the paper")

	rootCmd.AddCommand(chatCmd)
}
