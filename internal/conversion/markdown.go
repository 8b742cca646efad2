// Package conversion renders agent markdown into safe HTML for embedding
// hosts. Agent output is untrusted, so everything passes through a
// sanitization policy before it is returned.
package conversion

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Converter handles markdown-to-HTML conversion.
type Converter struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// Option configures the Converter.
type Option func(*Converter)

// WithSanitization sets the HTML sanitization policy.
func WithSanitization(policy *bluemonday.Policy) Option {
	return func(c *Converter) {
		c.sanitizer = policy
	}
}

// NewConverter creates a new Converter with the given options.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithXHTML(),
			),
		),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// DefaultConverter returns a converter with settings suitable for agent
// messages: GFM markdown, sanitized output.
func DefaultConverter() *Converter {
	return NewConverter(
		WithSanitization(CreateSanitizer()),
	)
}

// CreateSanitizer creates a bluemonday policy for agent-authored markdown.
func CreateSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	// Heading anchors from goldmark's auto heading IDs.
	p.AllowAttrs("id").Matching(bluemonday.Paragraph).OnElements("h1", "h2", "h3", "h4", "h5", "h6")

	// Code block language classes.
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre")

	return p
}

// Convert converts markdown text to sanitized HTML.
func (c *Converter) Convert(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}

	result := buf.String()
	if c.sanitizer != nil {
		result = c.sanitizer.Sanitize(result)
	}
	return result, nil
}

// ConvertToSafeHTML converts markdown and falls back to an escaped
// preformatted block on error, so a rendering failure never breaks output.
func (c *Converter) ConvertToSafeHTML(markdown string) string {
	result, err := c.Convert(markdown)
	if err != nil {
		return "<pre>" + EscapeHTML(markdown) + "</pre>"
	}
	return result
}

// EscapeHTML escapes special HTML characters.
func EscapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&#39;")
	return s
}
