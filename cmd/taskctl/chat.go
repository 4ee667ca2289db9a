package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	var conversationID string
	chatCmd := &cobra.Command{
		Use:   "chat MESSAGE...",
		Short: "Send a chat message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{"message": strings.Join(args, " ")}
			if conversationID != "" {
				payload["conversationId"] = conversationID
			}
			resp, err := newClient().R().
				SetBody(payload).
				Post(fmt.Sprintf("/api/users/%s/chat", userFlag))
			return printResponse(resp, err)
		},
	}
	chatCmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "Continue an existing conversation")
	rootCmd.AddCommand(chatCmd)

	conversationsCmd := &cobra.Command{Use: "conversations", Short: "Conversation operations"}
	conversationsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Get(fmt.Sprintf("/api/users/%s/conversations", userFlag))
			return printResponse(resp, err)
		},
	})
	conversationsCmd.AddCommand(&cobra.Command{
		Use:   "show CONVERSATION_ID",
		Short: "Show a conversation with its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Get(fmt.Sprintf("/api/users/%s/conversations/%s", userFlag, args[0]))
			return printResponse(resp, err)
		},
	})
	rootCmd.AddCommand(conversationsCmd)
}
