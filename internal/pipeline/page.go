package pipeline

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
)

// ErrPageRender indicates the page template failed to execute.
var ErrPageRender = errors.New("page template rendering failed")

//go:embed templates/page.html
var defaultPageTemplate string

// DefaultPageTemplate returns the built-in page layout.
func DefaultPageTemplate() string {
	return defaultPageTemplate
}

// Default canvas dimensions (square social post).
const (
	DefaultWidth  = 1080
	DefaultHeight = 1080
)

// PageData holds the composed pieces of one template page.
// HTML fields must already be rendered by this package's renderers.
type PageData struct {
	Title       string
	LogoURL     string
	ArrowURL    string
	TitleHTML   template.HTML
	Body        []template.HTML
	ContentHTML template.HTML
}

// PageBuilder renders PageData through an html/template layout.
type PageBuilder struct {
	tmpl *template.Template
}

// NewPageBuilder creates a PageBuilder from template content.
// Returns error if the template cannot be parsed.
func NewPageBuilder(tmplContent string) (*PageBuilder, error) {
	tmpl, err := template.New("page").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	return &PageBuilder{tmpl: tmpl}, nil
}

// Build executes the layout with data.
func (b *PageBuilder) Build(ctx context.Context, data *PageData) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if data == nil {
		data = &PageData{}
	}

	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageRender, err)
	}
	return buf.String(), nil
}

// BuildBaseCSS returns the layout rules of the default page template for a
// width x height canvas. Non-positive dimensions fall back to the defaults.
// The container's bottom padding is the value title/arrow spacing adjusts.
func BuildBaseCSS(width, height int, bottomPadding float64) string {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return fmt.Sprintf(`*{margin:0;padding:0;box-sizing:border-box}
html,body{width:%[1]dpx;height:%[2]dpx;overflow:hidden;background:#fff}
.canvas{position:relative;width:%[1]dpx;height:%[2]dpx;overflow:hidden}
.container{position:absolute;inset:0;display:flex;flex-direction:column;justify-content:flex-end;gap:24px;padding:60px 60px %[3]gpx 60px}
.logo{position:absolute;top:40px;left:40px;max-height:80px}
.arrow{position:absolute;left:50%%;bottom:20px;transform:translateX(-50%%);height:48px}
.text-1{font-size:64px;line-height:1.2;font-weight:700}
%[4]s
`, width, height, bottomPadding, ContentModuleCSS)
}
