package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Sentinel errors for text rendering.
var (
	ErrTextRender       = errors.New("text rendering failed")
	ErrInvalidClassName = errors.New("invalid class name")
)

// DefaultTextClass is the class given to text modules without one.
// It matches the default auto-fit target.
const DefaultTextClass = "text-1"

// TextModule is a block of template text written in inline Markdown
// (**bold**, *italic*, ~~strike~~, line breaks).
type TextModule struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Content   string `json:"content" yaml:"content"`
	ClassName string `json:"className,omitempty" yaml:"className"`
}

var classNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*( [A-Za-z_][A-Za-z0-9_-]*)*$`)

// singleParagraph matches output that is exactly one <p> element.
var singleParagraph = regexp.MustCompile(`(?s)^<p>(.*)</p>\n?$`)

// TextRenderer converts text modules to HTML using Goldmark.
type TextRenderer struct {
	md goldmark.Markdown
}

// NewTextRenderer creates a TextRenderer with strikethrough support and hard
// wraps. Raw HTML in the source is escaped, never passed through.
func NewTextRenderer() *TextRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)
	return &TextRenderer{md: md}
}

// Render returns the HTML for m wrapped in a div carrying its class.
// A disabled module or one with blank content renders as "".
// A single paragraph is unwrapped so the text sits directly in the div.
func (r *TextRenderer) Render(ctx context.Context, m TextModule) (string, error) {
	if !m.Enabled || strings.TrimSpace(m.Content) == "" {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	className := m.ClassName
	if className == "" {
		className = DefaultTextClass
	}
	if !classNamePattern.MatchString(className) {
		return "", fmt.Errorf("%w: %q", ErrInvalidClassName, className)
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(m.Content), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTextRender, err)
	}

	inner := buf.String()
	if match := singleParagraph.FindStringSubmatch(inner); match != nil && !strings.Contains(match[1], "<p>") {
		inner = match[1]
	}

	return `<div class="` + className + `">` + strings.TrimSpace(inner) + `</div>`, nil
}
