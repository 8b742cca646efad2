package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aiprlassist/gavchat/internal/adk"
	"github.com/aiprlassist/gavchat/internal/appdir"
	"github.com/aiprlassist/gavchat/internal/chat"
	"github.com/aiprlassist/gavchat/internal/conversion"
	"github.com/aiprlassist/gavchat/internal/store"
)

var historyFormat string

// historyCmd prints the recovered conversation without opening a session.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the stored conversation history",
	Long: `Fetch the previously stored conversation from the backend and print
it, without starting a new conversation or touching the stored session.

Formats:
  text      - plain text, one message per block (default)
  markdown  - markdown with role headers
  html      - sanitized HTML`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyFormat, "format", "text", "Output format: text, markdown, html")
}

func runHistory(cmd *cobra.Command, args []string) error {
	statePath, err := appdir.StatePath()
	if err != nil {
		return fmt.Errorf("failed to resolve state path: %w", err)
	}
	st := store.NewFileStore(statePath)

	userID := st.UserID()
	sessionID := st.SessionID()
	if userID == "" || sessionID == "" {
		fmt.Println("No stored conversation.")
		return nil
	}

	backend := adk.New(cfg.BackendURL, cfg.AppName)
	session, err := backend.GetSession(context.Background(), userID, sessionID)
	if err != nil {
		if errors.Is(err, adk.ErrSessionNotFound) {
			fmt.Println("The stored conversation no longer exists on the backend.")
			return nil
		}
		return fmt.Errorf("failed to fetch conversation: %w", err)
	}

	msgs := chat.DecodeHistory(session.Events)
	if len(msgs) == 0 {
		fmt.Println("The stored conversation is empty.")
		return nil
	}

	switch historyFormat {
	case "text":
		printHistoryText(msgs)
	case "markdown":
		printHistoryMarkdown(msgs)
	case "html":
		printHistoryHTML(msgs)
	default:
		return fmt.Errorf("unknown format %q (want text, markdown or html)", historyFormat)
	}
	return nil
}

func printHistoryText(msgs []chat.Message) {
	for _, msg := range msgs {
		fmt.Printf("[%s] %s\n", roleLabel(msg), msg.Text)
	}
}

func printHistoryMarkdown(msgs []chat.Message) {
	for _, msg := range msgs {
		fmt.Printf("**%s**\n\n%s\n\n", roleLabel(msg), msg.Text)
	}
}

func printHistoryHTML(msgs []chat.Message) {
	conv := conversion.DefaultConverter()
	fmt.Println(`<div class="conversation">`)
	for _, msg := range msgs {
		fmt.Printf("<div class=\"message message-%s\">\n", msg.Role)
		fmt.Print(conv.ConvertToSafeHTML(msg.Text))
		fmt.Println("</div>")
	}
	fmt.Println("</div>")
}

// roleLabel names the message author for display, preferring the recorded
// author over the generic role.
func roleLabel(msg chat.Message) string {
	if msg.Author != "" && msg.Author != "user" {
		return msg.Author
	}
	switch msg.Role {
	case chat.RoleUser:
		return "you"
	case chat.RoleSystem:
		return "system"
	default:
		return "agent"
	}
}
