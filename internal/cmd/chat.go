package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/reeflective/readline"
	"github.com/spf13/cobra"

	"github.com/aiprlassist/gavchat/internal/adk"
	"github.com/aiprlassist/gavchat/internal/appdir"
	"github.com/aiprlassist/gavchat/internal/chat"
	"github.com/aiprlassist/gavchat/internal/inbox"
	"github.com/aiprlassist/gavchat/internal/logging"
	"github.com/aiprlassist/gavchat/internal/store"
)

var (
	// chat-specific flags
	onceMessage  string
	launchEmail  string
	customerID   string
	relatedIDs   string
	launchPage   string
	launchSource string
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat with the agent backend",
	Long: `Start an interactive conversation with the agent backend.

The previous conversation is recovered when possible, so closing and
reopening the client keeps the history. While a human agent holds the
conversation, messages are relayed silently and replies arrive through
the inbound channel.

Use --once to send a single message and exit:
  gavchat chat --once "Do you have the leather sofa in stock?"

Commands (interactive mode only):
  /quit, /exit  - Exit the chat
  /cancel       - Cancel the in-flight turn
  /reset        - Start a fresh conversation (keeps your identity)
  /status       - Show conversation status
  /help         - Show available commands`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&onceMessage, "once", "", "Send a single message and exit (non-interactive mode)")
	chatCmd.Flags().StringVar(&launchEmail, "email", "", "Visitor email (drives the persistent identity)")
	chatCmd.Flags().StringVar(&customerID, "customer-id", "", "Customer identifier from the embedding site")
	chatCmd.Flags().StringVar(&relatedIDs, "related-ids", "", "Comma-separated related identifiers (orders, tickets, ...)")
	chatCmd.Flags().StringVar(&launchPage, "page", "", "Page the conversation was started from")
	chatCmd.Flags().StringVar(&launchSource, "utm-source", "", "Campaign source to record on the session")
}

func runChat(cmd *cobra.Command, args []string) error {
	isOnceMode := onceMessage != ""

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conv, err := newConversation(newPrinter(isOnceMode))
	if err != nil {
		return err
	}
	defer conv.Close()

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		if !isOnceMode {
			fmt.Println("\n\n👋 Shutting down...")
		}
		conv.CancelTurn()
		cancel()
	}()

	if !isOnceMode || debug {
		fmt.Printf("🚀 Connecting to %s (app %s, user %s)\n", cfg.BackendURL, cfg.AppName, conv.UserID())
	}

	if isOnceMode {
		conv.SendTurn(ctx, onceMessage)
		return nil
	}
	return runInteractiveLoop(ctx, conv)
}

// newConversation wires the conversation to its collaborators from the
// loaded configuration and the durable state file.
func newConversation(p *printer) (*chat.Conversation, error) {
	statePath, err := appdir.StatePath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve state path: %w", err)
	}

	launch := cfg.Launch
	if launchEmail != "" {
		launch.Email = launchEmail
	}
	if customerID != "" {
		launch.CustomerID = customerID
	}
	if relatedIDs != "" {
		launch.RelatedIDs = relatedIDs
	}
	if launchPage != "" {
		launch.Page = launchPage
	}
	if launchSource != "" {
		launch.UTMSource = launchSource
	}

	backend := adk.New(cfg.BackendURL, cfg.AppName)
	listener := inbox.NewListener(cfg.BackendURL,
		inbox.WithReconnectInterval(cfg.ReconnectInterval()),
		inbox.WithLogger(logging.Inbox()),
	)
	st := store.NewFileStore(statePath)

	// The update callback needs the conversation it is attached to, so the
	// variable is captured before New assigns it. Callbacks only fire from
	// conversation methods, never during construction.
	var conv *chat.Conversation
	conv = chat.New(backend, listener, st, chat.Options{
		Launch:  launch,
		Welcome: cfg.WelcomeMessage,
		Logger:  logging.Chat(),
		Callbacks: chat.Callbacks{
			OnMessage: p.printMessage,
			OnStatus:  p.printStatus,
			OnUpdate: func() {
				if conv != nil {
					p.printActivities(conv.Activities())
				}
			},
		},
	})
	return conv, nil
}

// slashCommands defines the available slash commands with their descriptions.
var slashCommands = []struct {
	name        string
	description string
}{
	{"/help", "Show available commands"},
	{"/h", "Show available commands (alias)"},
	{"/?", "Show available commands (alias)"},
	{"/quit", "Exit the chat"},
	{"/exit", "Exit the chat (alias)"},
	{"/q", "Exit the chat (alias)"},
	{"/cancel", "Cancel the in-flight turn"},
	{"/reset", "Start a fresh conversation"},
	{"/status", "Show conversation status"},
}

func runInteractiveLoop(ctx context.Context, conv *chat.Conversation) error {
	rl := readline.NewShell()
	rl.Prompt.Primary(func() string { return "you> " })

	history := readline.NewInMemoryHistory()
	rl.History.Add("default", history)

	rl.Completer = func(line []rune, cursor int) readline.Completions {
		return completeInput(string(line), cursor)
	}

	fmt.Printf("\n💬 %s\n", cfg.WelcomeMessage)
	fmt.Println("📝 Type your message and press Enter. Use /help for commands. Tab completes commands.")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				fmt.Println("\n👋 Goodbye!")
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if handled := handleCommand(conv, line); handled {
				continue
			}
		}

		fmt.Println() // spacing before the response
		conv.SendTurn(ctx, line)
		fmt.Println() // spacing after the response
	}
}

func handleCommand(conv *chat.Conversation, line string) bool {
	cmd := strings.ToLower(strings.TrimPrefix(line, "/"))
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false
	}

	switch parts[0] {
	case "quit", "exit", "q":
		fmt.Println("👋 Goodbye!")
		conv.Close()
		os.Exit(0)
	case "cancel":
		conv.CancelTurn()
		fmt.Println("🛑 Cancelled")
	case "reset":
		conv.Reset()
		fmt.Println("🧹 Conversation reset")
	case "status":
		printConversationStatus(conv)
	case "help", "h", "?":
		printHelp()
	default:
		fmt.Printf("❓ Unknown command: %s (use /help for available commands)\n", parts[0])
	}
	return true
}

func printConversationStatus(conv *chat.Conversation) {
	fmt.Printf("Status:   %s\n", conv.Status())
	fmt.Printf("User:     %s\n", conv.UserID())
	if sid := conv.SessionID(); sid != "" {
		fmt.Printf("Session:  %s\n", sid)
	} else {
		fmt.Println("Session:  (not negotiated yet)")
	}
	if conv.AIPaused() {
		fmt.Println("Handling: human agent")
	} else {
		fmt.Println("Handling: AI agent")
	}
	fmt.Printf("Messages: %d\n", len(conv.Messages()))
}

func printHelp() {
	fmt.Println(`
Available commands:
  /quit, /exit, /q  - Exit the chat
  /cancel           - Cancel the in-flight turn
  /reset            - Start a fresh conversation (keeps your identity)
  /status           - Show conversation status
  /help, /h, /?     - Show this help message

Tips:
  - Type your message and press Enter to send it to the agent
  - Use Ctrl+C to exit gracefully
  - Use up/down arrows for message history
  - Use Tab to autocomplete slash commands`)
}

// completeInput provides tab completion for the chat input.
// It completes slash commands when the input starts with "/".
func completeInput(line string, cursor int) readline.Completions {
	if cursor > len(line) {
		cursor = len(line)
	}
	text := line[:cursor]

	if !strings.HasPrefix(text, "/") {
		return readline.Completions{}
	}

	var matches []string
	var descriptions []string
	for _, cmd := range slashCommands {
		if strings.HasPrefix(cmd.name, text) {
			matches = append(matches, cmd.name)
			descriptions = append(descriptions, cmd.description)
		}
	}

	if len(matches) == 0 {
		return readline.Completions{}
	}

	pairs := make([]string, 0, len(matches)*2)
	for i, match := range matches {
		pairs = append(pairs, match, descriptions[i])
	}

	return readline.CompleteValuesDescribed(pairs...).
		Tag("commands").
		NoSpace('/')
}
