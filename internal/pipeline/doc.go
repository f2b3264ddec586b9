// Package pipeline composes the HTML document an image template renders from.
//
// This package handles the composition stages:
//   - URL resolution of relative asset paths against a base URL
//   - Content module fragments (single image or side-by-side comparison)
//   - Text modules (inline Markdown via Goldmark)
//   - Page assembly from an html/template layout
//   - CSS and @font-face injection into the assembled document
//   - Rewriting of remaining relative image URLs
//
// Browser-side layout adjustment (text auto-fit, title/arrow spacing) is
// handled separately by the layout package and the root imagegen package.
// Every function here is pure apart from context checks.
package pipeline
