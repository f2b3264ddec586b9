package layout

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Rect is an element's border box in CSS pixels, relative to the viewport.
type Rect struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Element is one rendered node. Reads must reflect every style written
// before them.
type Element interface {
	// BoundingRect returns the element's current border box.
	BoundingRect() (Rect, error)

	// ComputedStyle returns the computed value of a CSS property.
	ComputedStyle(property string) (string, error)

	// SetStyle writes an inline style property.
	SetStyle(property, value string) error

	// Property returns a DOM property as a string, e.g. an image's resolved src.
	Property(name string) (string, error)
}

// Document is a rendered page.
type Document interface {
	// Query returns the first element matching selector, or nil and no
	// error when nothing matches.
	Query(selector string) (Element, error)

	// URL returns the address the page was loaded from.
	URL() (string, error)
}

// ParsePixels parses a computed CSS length such as "60px" or "12.5px".
// A bare number is accepted as pixels.
func ParsePixels(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "px")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatPixels formats v as a CSS pixel length.
func FormatPixels(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// Settle blocks for d or until ctx is done, whichever comes first.
// Hosts call it between font loading and the first measurement.
func Settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
