package pipeline

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RewriteRelativeURLs resolves relative image sources against baseURL so the
// document renders the same wherever it is loaded from.
// If baseURL is empty, returns the HTML unchanged.
//
// Rewrites img[src] and link[href] (stylesheets, preloaded fonts).
// Leaves alone anything carrying a scheme (http, https, data, blob, file),
// protocol-relative URLs and fragment-only references.
func RewriteRelativeURLs(htmlContent, baseURL string) (string, error) {
	if baseURL == "" {
		return htmlContent, nil
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	rewriteNode(doc, baseURL)

	return renderHTML(doc, isFragment)
}

// parseHTML parses full documents as-is and fragments in a body context.
// Returns the parsed node and whether the input was a fragment.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML renders doc back to a string. Fragments render their children
// only, so no <html><body> wrapper is added.
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func rewriteNode(n *html.Node, baseURL string) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img:
			rewriteAttr(n, "src", baseURL)
		case atom.Link:
			rewriteAttr(n, "href", baseURL)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, baseURL)
	}
}

func rewriteAttr(n *html.Node, attrName, baseURL string) {
	for i, attr := range n.Attr {
		if attr.Key == attrName && isRelativeURL(attr.Val) {
			n.Attr[i].Val = ResolveURL(attr.Val, baseURL)
		}
	}
}

// isRelativeURL reports whether u should be resolved against a base URL.
func isRelativeURL(u string) bool {
	if u == "" || strings.HasPrefix(u, "#") || strings.HasPrefix(u, "//") {
		return false
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return parsed.Scheme == ""
}
