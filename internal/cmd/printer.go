package cmd

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/aiprlassist/gavchat/internal/chat"
	"github.com/aiprlassist/gavchat/internal/stream"
)

// printer renders conversation events to the terminal. Callbacks arrive from
// the conversation's goroutines, so output is serialized with a mutex.
type printer struct {
	mu       sync.Mutex
	renderer *glamour.TermRenderer
	quiet    bool
	// printedActs counts the live-activity entries already printed for the
	// in-flight turn.
	printedActs int
}

// newPrinter creates the terminal printer. In quiet mode (--once) status
// transitions are not shown.
func newPrinter(quiet bool) *printer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		r = nil // fall back to plain text
	}
	return &printer{renderer: r, quiet: quiet}
}

// printMessage renders one timeline entry.
func (p *printer) printMessage(msg chat.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch msg.Role {
	case chat.RoleUser:
		// The user just typed it; echoing would duplicate the line.
		return
	case chat.RoleSystem:
		fmt.Printf("ℹ️  %s\n", msg.Text)
		return
	}

	if msg.Text != "" {
		fmt.Print(p.renderMarkdown(msg.Text))
	}

	for _, prod := range msg.Products {
		fmt.Printf("🛋️  %s ($%.2f)\n", prod.Name, prod.Price)
		if prod.URL != "" {
			fmt.Printf("    %s\n", prod.URL)
		}
	}
}

// printActivities shows tool invocations live, as the turn streams. The
// activity list resets between turns; a shrink rewinds the counter.
func (p *printer) printActivities(acts []stream.Activity) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(acts) < p.printedActs {
		p.printedActs = 0
	}
	for _, a := range acts[p.printedActs:] {
		if a.Kind == stream.KindFunctionCall {
			fmt.Printf("🔧 %s\n", a.Name)
		}
	}
	p.printedActs = len(acts)
}

// printStatus shows status transitions worth a line in the terminal.
func (p *printer) printStatus(s chat.Status) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	switch s {
	case chat.StatusRecovering:
		fmt.Println("⏳ Recovering previous conversation...")
	case chat.StatusHumanMode:
		fmt.Println("🧑 A human agent has joined the conversation")
	}
}

// renderMarkdown renders agent markdown for the terminal, falling back to
// the raw text when the renderer is unavailable or fails.
func (p *printer) renderMarkdown(text string) string {
	if p.renderer == nil {
		return text + "\n"
	}
	out, err := p.renderer.Render(text)
	if err != nil {
		return text + "\n"
	}
	return strings.TrimRight(out, "\n") + "\n"
}
