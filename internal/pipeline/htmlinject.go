package pipeline

import (
	"context"
	"path"
	"strings"
)

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// CSSInjection injects CSS as a <style> block into HTML content.
type CSSInjection struct{}

// InjectCSS inserts a <style> block before </head>, after <body> when there
// is no head, or at the start of the content as a last resort.
// CSS content is sanitized so it cannot close the style element.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" || ctx.Err() != nil {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}

	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		if closeIdx := strings.Index(htmlContent[idx:], ">"); closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + styleBlock + htmlContent[insertPos:]
		}
	}

	return styleBlock + htmlContent
}

// sanitizeCSS escapes "</" so CSS cannot break out of its <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// FontFace describes a font asset to declare with @font-face.
type FontFace struct {
	Family string // CSS family name
	URL    string // Resolved font URL
}

// fontFormats maps font file extensions to CSS format() hints.
var fontFormats = map[string]string{
	".ttf":   "truetype",
	".otf":   "opentype",
	".woff":  "woff",
	".woff2": "woff2",
}

// BuildFontFaceCSS returns an @font-face rule for f plus a rule applying the
// family to selector. Returns "" when f has no family or URL.
func BuildFontFaceCSS(f FontFace, selector string) string {
	if f.Family == "" || f.URL == "" {
		return ""
	}

	family := cssString(f.Family)
	var b strings.Builder
	b.WriteString("@font-face{font-family:")
	b.WriteString(family)
	b.WriteString(";src:url(")
	b.WriteString(cssString(f.URL))
	b.WriteString(")")
	if format, ok := fontFormats[strings.ToLower(path.Ext(stripQuery(f.URL)))]; ok {
		b.WriteString(" format(")
		b.WriteString(cssString(format))
		b.WriteString(")")
	}
	b.WriteString(";font-display:block}\n")

	if selector != "" {
		b.WriteString(selector)
		b.WriteString("{font-family:")
		b.WriteString(family)
		b.WriteString(",sans-serif}\n")
	}
	return b.String()
}

// cssString quotes s as a CSS string literal.
func cssString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\A `, "\r", "")
	return `"` + r.Replace(s) + `"`
}

func stripQuery(u string) string {
	if i := strings.IndexAny(u, "?#"); i != -1 {
		return u[:i]
	}
	return u
}
