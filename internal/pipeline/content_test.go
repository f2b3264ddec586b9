package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
)

// imageSources parses a fragment and returns every img src in document order.
func imageSources(t *testing.T, fragment string) []string {
	t.Helper()

	doc, _, err := parseHTML(fragment)
	if err != nil {
		t.Fatalf("parsing fragment: %v", err)
	}

	var srcs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			for _, a := range n.Attr {
				if a.Key == "src" {
					srcs = append(srcs, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return srcs
}

func TestRenderContentModule_Empty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		module ContentModule
	}{
		{name: "disabled", module: ContentModule{Enabled: false, Mode: ModeSingle, URL: "a.png"}},
		{name: "disabled comparison", module: ContentModule{Enabled: false, Mode: ModeComparison, URL: "a.png", URL2: "b.png"}},
		{name: "no urls single", module: ContentModule{Enabled: true, Mode: ModeSingle}},
		{name: "no urls comparison", module: ContentModule{Enabled: true, Mode: ModeComparison}},
		{name: "single without primary", module: ContentModule{Enabled: true, Mode: ModeSingle, URL2: "b.png"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := RenderContentModule(tt.module, &RenderContext{BaseURL: "https://x.com"}); got != "" {
				t.Errorf("RenderContentModule() = %q, want empty", got)
			}
		})
	}
}

func TestRenderContentModule_Single(t *testing.T) {
	t.Parallel()

	got := RenderContentModule(ContentModule{Enabled: true, Mode: ModeSingle, URL: "a.png"}, &RenderContext{BaseURL: "https://x.com"})

	if diff := cmp.Diff([]string{"https://x.com/a.png"}, imageSources(t, got)); diff != "" {
		t.Errorf("image sources mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(got, "content-module--single") {
		t.Errorf("fragment missing single layout class: %s", got)
	}
}

func TestRenderContentModule_Comparison(t *testing.T) {
	t.Parallel()

	t.Run("two images in order", func(t *testing.T) {
		t.Parallel()

		got := RenderContentModule(ContentModule{Enabled: true, Mode: ModeComparison, URL: "a.png", URL2: "b.png"}, nil)

		if diff := cmp.Diff([]string{"a.png", "b.png"}, imageSources(t, got)); diff != "" {
			t.Errorf("image sources mismatch (-want +got):\n%s", diff)
		}
		if strings.Count(got, `class="comparison-item"`) != 2 {
			t.Errorf("fragment should hold two comparison items: %s", got)
		}
	})

	t.Run("missing secondary resolves empty", func(t *testing.T) {
		t.Parallel()

		got := RenderContentModule(ContentModule{Enabled: true, Mode: ModeComparison, URL: "a.png"}, &RenderContext{BaseURL: "https://x.com"})

		want := []string{"https://x.com/a.png", "https://x.com/"}
		if diff := cmp.Diff(want, imageSources(t, got)); diff != "" {
			t.Errorf("image sources mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing primary is skipped", func(t *testing.T) {
		t.Parallel()

		got := RenderContentModule(ContentModule{Enabled: true, Mode: ModeComparison, URL2: "b.png"}, nil)

		if diff := cmp.Diff([]string{"b.png"}, imageSources(t, got)); diff != "" {
			t.Errorf("image sources mismatch (-want +got):\n%s", diff)
		}
		if strings.Contains(got, `src=""`) {
			t.Errorf("fragment holds an empty image source: %s", got)
		}
	})

	t.Run("missing secondary without base url is skipped", func(t *testing.T) {
		t.Parallel()

		got := RenderContentModule(ContentModule{Enabled: true, Mode: ModeComparison, URL: "a.png"}, nil)

		if diff := cmp.Diff([]string{"a.png"}, imageSources(t, got)); diff != "" {
			t.Errorf("image sources mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unknown mode renders as comparison", func(t *testing.T) {
		t.Parallel()

		got := RenderContentModule(ContentModule{Enabled: true, Mode: "grid", URL: "a.png", URL2: "b.png"}, nil)
		if !strings.Contains(got, "content-module--comparison") {
			t.Errorf("unknown mode should render comparison layout: %s", got)
		}
	})

	t.Run("absolute urls kept", func(t *testing.T) {
		t.Parallel()

		got := RenderContentModule(ContentModule{Enabled: true, Mode: ModeComparison, URL: "https://a.com/1.png", URL2: "/2.png"}, &RenderContext{BaseURL: "https://x.com/"})

		want := []string{"https://a.com/1.png", "https://x.com/2.png"}
		if diff := cmp.Diff(want, imageSources(t, got)); diff != "" {
			t.Errorf("image sources mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestRenderContentModule_EscapesAttributes(t *testing.T) {
	t.Parallel()

	got := RenderContentModule(ContentModule{Enabled: true, Mode: ModeSingle, URL: `a.png" onerror="alert(1)`}, nil)

	if strings.Contains(got, `" onerror="`) {
		t.Errorf("URL not escaped in fragment: %s", got)
	}
	if srcs := imageSources(t, got); len(srcs) != 1 || srcs[0] != `a.png" onerror="alert(1)` {
		t.Errorf("image sources = %q, want the raw URL as a single src", srcs)
	}
}

func TestRenderContentModule_Deterministic(t *testing.T) {
	t.Parallel()

	m := ContentModule{Enabled: true, Mode: ModeComparison, URL: "a.png", URL2: "b.png"}
	rc := &RenderContext{BaseURL: "https://x.com"}

	if first, second := RenderContentModule(m, rc), RenderContentModule(m, rc); first != second {
		t.Errorf("RenderContentModule not deterministic:\n%s\n%s", first, second)
	}
}

func TestValidateContentModule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode    string
		wantErr error
	}{
		{mode: ModeSingle},
		{mode: ModeComparison},
		{mode: "", wantErr: ErrInvalidMode},
		{mode: "Single", wantErr: ErrInvalidMode},
		{mode: "grid", wantErr: ErrInvalidMode},
	}

	for _, tt := range tests {
		tt := tt
		err := ValidateContentModule(ContentModule{Enabled: true, Mode: tt.mode, URL: "a.png"})
		if tt.wantErr == nil {
			if err != nil {
				t.Errorf("ValidateContentModule(mode=%q) unexpected error: %v", tt.mode, err)
			}
			continue
		}
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ValidateContentModule(mode=%q) error = %v, want %v", tt.mode, err, tt.wantErr)
		}
	}
}
