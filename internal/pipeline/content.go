package pipeline

import (
	"errors"
	"fmt"
	"html"
	"strings"
)

// Content module modes.
const (
	ModeSingle     = "single"
	ModeComparison = "comparison"
)

// ErrInvalidMode indicates a content module mode other than single or comparison.
var ErrInvalidMode = errors.New("invalid content module mode")

// ContentModule describes one composable image section of a template.
type ContentModule struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Mode    string `json:"mode" yaml:"mode"` // "single" or "comparison"
	URL     string `json:"url" yaml:"url"`
	URL2    string `json:"url2,omitempty" yaml:"url2"`
}

// RenderContext carries per-render settings.
type RenderContext struct {
	BaseURL string `json:"baseUrl,omitempty"`
}

// ContentModuleCSS styles the fragments produced by RenderContentModule.
const ContentModuleCSS = `.content-module{display:flex;gap:24px;width:100%}
.content-module--single .content-image{width:100%;height:auto;object-fit:contain}
.content-module--comparison .comparison-item{flex:1 1 0;min-width:0}
.content-module--comparison .content-image{width:100%;height:auto;object-fit:cover}`

// ValidateContentModule applies the strict mode check: only "single" and
// "comparison" are accepted. RenderContentModule itself is lenient and
// renders any other mode as a comparison.
func ValidateContentModule(m ContentModule) error {
	switch m.Mode {
	case ModeSingle, ModeComparison:
		return nil
	default:
		return fmt.Errorf("%w: %q (must be single or comparison)", ErrInvalidMode, m.Mode)
	}
}

// RenderContentModule returns the HTML fragment for m.
//
// The fragment is empty when the module is disabled, when neither URL is
// set, or in single mode when the primary URL is missing. Single mode emits
// one image; every other mode emits the primary and secondary images side by
// side, in that order. A comparison never emits an image with an empty src. URLs are resolved against rc.BaseURL when rc is set.
func RenderContentModule(m ContentModule, rc *RenderContext) string {
	if !m.Enabled || (m.URL == "" && m.URL2 == "") {
		return ""
	}

	var baseURL string
	if rc != nil {
		baseURL = rc.BaseURL
	}

	if m.Mode == ModeSingle {
		if m.URL == "" {
			return ""
		}
		var b strings.Builder
		b.WriteString(`<div class="content-module content-module--single">`)
		writeImage(&b, ResolveURL(m.URL, baseURL))
		b.WriteString(`</div>`)
		return b.String()
	}

	var b strings.Builder
	b.WriteString(`<div class="content-module content-module--comparison">`)
	for _, src := range comparisonSources(m, baseURL) {
		b.WriteString(`<div class="comparison-item">`)
		writeImage(&b, src)
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// comparisonSources returns the image sources of a comparison, primary
// first. An empty primary is dropped. A missing secondary resolves against
// the base URL like any relative URL, and is dropped when that leaves it empty.
func comparisonSources(m ContentModule, baseURL string) []string {
	srcs := make([]string, 0, 2)
	if m.URL != "" {
		srcs = append(srcs, ResolveURL(m.URL, baseURL))
	}
	if src := ResolveURL(m.URL2, baseURL); src != "" {
		srcs = append(srcs, src)
	}
	return srcs
}

func writeImage(b *strings.Builder, src string) {
	b.WriteString(`<img class="content-image" src="`)
	b.WriteString(html.EscapeString(src))
	b.WriteString(`" alt="">`)
}
