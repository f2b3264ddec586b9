package assets

import (
	"fmt"
	"slices"
	"strings"
)

// Kind identifies a category of asset and the directory it lives in.
type Kind string

// Supported asset kinds.
const (
	KindFonts Kind = "fonts"
	KindLogos Kind = "logos"
)

// Upload size limits in bytes.
const (
	DefaultMaxFontSize int64 = 10 << 20
	DefaultMaxLogoSize int64 = 5 << 20
)

var (
	fontExtensions = []string{".ttf", ".otf", ".woff", ".woff2"}
	logoExtensions = []string{".svg", ".png", ".jpg", ".jpeg", ".webp", ".gif"}
)

// Kinds returns every supported kind in listing order.
func Kinds() []Kind {
	return []Kind{KindFonts, KindLogos}
}

// ParseKind converts a path segment such as "fonts" into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindFonts, KindLogos:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Extensions returns the allow-list for the kind, lower-case with leading dot.
func (k Kind) Extensions() []string {
	switch k {
	case KindFonts:
		return slices.Clone(fontExtensions)
	case KindLogos:
		return slices.Clone(logoExtensions)
	}
	return nil
}

// Allows reports whether ext (with leading dot) is in the kind's allow-list.
// The comparison is case-insensitive.
func (k Kind) Allows(ext string) bool {
	ext = strings.ToLower(ext)
	switch k {
	case KindFonts:
		return slices.Contains(fontExtensions, ext)
	case KindLogos:
		return slices.Contains(logoExtensions, ext)
	}
	return false
}

// FormField is the multipart field name carrying an upload of this kind.
func (k Kind) FormField() string {
	switch k {
	case KindFonts:
		return "font"
	case KindLogos:
		return "logo"
	}
	return ""
}

// PublicURL returns the path a stored file is served under.
func (k Kind) PublicURL(filename string) string {
	return "/" + string(k) + "/" + escapePathSegment(filename)
}
