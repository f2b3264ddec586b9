package imagegen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/feBittar/image-gen-nextjs-sub003/internal/layout"
)

// fakeEngine is a layoutEngine that records its calls.
type fakeEngine struct {
	mu      sync.Mutex
	calls   []*layoutOptions
	html    []string
	out     *layoutOutput
	err     error
	panicOn bool
	closed  bool
}

func (f *fakeEngine) Layout(_ context.Context, htmlContent string, opts *layoutOptions) (*layoutOutput, error) {
	if f.panicOn {
		panic("measurement exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, opts)
	f.html = append(f.html, htmlContent)
	if f.err != nil {
		return nil, f.err
	}
	if f.out != nil {
		return f.out, nil
	}
	return &layoutOutput{HTML: htmlContent}, nil
}

func (f *fakeEngine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// withLayoutEngine injects a layout engine so no browser is launched.
func withLayoutEngine(e layoutEngine) Option {
	return func(g *Generator) {
		g.layoutEngine = e
	}
}

func newTestGenerator(t *testing.T, engine *fakeEngine, opts ...Option) *Generator {
	t.Helper()

	g, err := NewGenerator(append(opts, withLayoutEngine(engine))...)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func generateHTML(t *testing.T, g *Generator, input Input) string {
	t.Helper()

	res, err := g.Generate(context.Background(), input)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return string(res.HTML)
}

func TestGenerate_Composition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		input   Input
		want    []string
		notWant []string
	}{
		{
			name:  "title uses text-1",
			input: Input{Title: TextModule{Enabled: true, Content: "**Big** news"}},
			want:  []string{`<div class="title"><div class="text-1"><strong>Big</strong> news</div></div>`},
		},
		{
			name: "body modules number from text-2",
			input: Input{Body: []TextModule{
				{Enabled: true, Content: "first"},
				{Enabled: true, Content: "second"},
				{Enabled: true, Content: "custom", ClassName: "caption"},
			}},
			want: []string{
				`<div class="text-2">first</div>`,
				`<div class="text-3">second</div>`,
				`<div class="caption">custom</div>`,
			},
		},
		{
			name:    "disabled title is omitted",
			input:   Input{Title: TextModule{Enabled: false, Content: "hidden"}},
			notWant: []string{"hidden", `class="title"`},
		},
		{
			name: "content module single",
			input: Input{Content: ContentModule{
				Enabled: true, Mode: ModeSingle, URL: "/img/a.png",
			}},
			want: []string{`content-module--single`, `src="/img/a.png"`},
		},
		{
			name: "content module comparison",
			input: Input{Content: ContentModule{
				Enabled: true, Mode: ModeComparison, URL: "a.png", URL2: "b.png",
			}},
			want: []string{`content-module--comparison`, `src="a.png"`, `src="b.png"`},
		},
		{
			name:  "font face from asset name",
			input: Input{Font: "Inter.ttf"},
			want: []string{
				`@font-face{font-family:"Inter";src:url("/fonts/Inter.ttf") format("truetype")`,
				`body{font-family:"Inter",sans-serif}`,
			},
		},
		{
			name:  "logo and arrow",
			input: Input{Logo: "brand.svg", Arrow: "/img/arrow.png"},
			want:  []string{`<img class="logo" src="/logos/brand.svg"`, `<img class="arrow" src="/img/arrow.png"`},
		},
		{
			name:  "custom canvas size",
			input: Input{Width: 1080, Height: 1350},
			want:  []string{"width:1080px;height:1350px"},
		},
		{
			name:  "document title",
			input: Input{Name: "Launch post"},
			want:  []string{"<title>Launch post</title>"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := newTestGenerator(t, &fakeEngine{}, tt.opts...)
			got := generateHTML(t, g, tt.input)

			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("HTML missing %q\n%s", want, got)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(got, notWant) {
					t.Errorf("HTML should not contain %q\n%s", notWant, got)
				}
			}
		})
	}
}

func TestGenerate_BaseURL(t *testing.T) {
	t.Parallel()

	input := Input{
		Title:   TextModule{Enabled: true, Content: "![chart](/img/chart.png)"},
		Content: ContentModule{Enabled: true, Mode: ModeSingle, URL: "/img/hero.png"},
		Font:    "Inter.woff2",
		Logo:    "brand.png",
	}

	t.Run("generator default", func(t *testing.T) {
		t.Parallel()

		g := newTestGenerator(t, &fakeEngine{}, WithBaseURL("https://cdn.example.com/app/"))
		got := generateHTML(t, g, input)

		for _, want := range []string{
			`src="https://cdn.example.com/img/chart.png"`,
			`src="https://cdn.example.com/img/hero.png"`,
			`src="https://cdn.example.com/logos/brand.png"`,
			`url("https://cdn.example.com/fonts/Inter.woff2") format("woff2")`,
		} {
			if !strings.Contains(got, want) {
				t.Errorf("HTML missing %q\n%s", want, got)
			}
		}
	})

	t.Run("input overrides generator", func(t *testing.T) {
		t.Parallel()

		g := newTestGenerator(t, &fakeEngine{}, WithBaseURL("https://cdn.example.com"))
		in := input
		in.BaseURL = "https://assets.example.org"
		got := generateHTML(t, g, in)

		if !strings.Contains(got, `src="https://assets.example.org/img/hero.png"`) {
			t.Errorf("HTML should resolve against input base URL\n%s", got)
		}
		if strings.Contains(got, "cdn.example.com") {
			t.Errorf("HTML should not use the generator base URL\n%s", got)
		}
	})
}

func TestGenerate_CSSOrder(t *testing.T) {
	t.Parallel()

	g := newTestGenerator(t, &fakeEngine{})
	got := generateHTML(t, g, Input{Font: "Inter.ttf", CSS: ".text-1{color:#f00}"})

	base := strings.Index(got, "box-sizing:border-box")
	font := strings.Index(got, "@font-face")
	user := strings.Index(got, ".text-1{color:#f00}")
	if base < 0 || font < 0 || user < 0 {
		t.Fatalf("missing CSS section (base=%d font=%d user=%d)\n%s", base, font, user, got)
	}
	if !(base < font && font < user) {
		t.Errorf("CSS order = base %d, font %d, user %d; want base < font < user", base, font, user)
	}
	if strings.Index(got, "<style>") > strings.Index(got, "</head>") {
		t.Error("style block should be inside <head>")
	}
}

func TestGenerate_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   Input
		wantErr error
	}{
		{name: "width too small", input: Input{Width: 50}, wantErr: ErrInvalidDimension},
		{name: "height too large", input: Input{Height: 5000}, wantErr: ErrInvalidDimension},
		{name: "font extension", input: Input{Font: "tool.exe"}, wantErr: ErrInvalidFont},
		{name: "font traversal", input: Input{Font: "../secret.ttf"}, wantErr: ErrInvalidFont},
		{name: "logo extension", input: Input{Logo: "brand.ttf"}, wantErr: ErrInvalidLogo},
		{name: "negative step", input: Input{TextFit: &FitConfig{Step: -1}}, wantErr: ErrInvalidTextFit},
		{name: "empty target", input: Input{TextFit: &FitConfig{Targets: []string{""}}}, wantErr: ErrInvalidTextFit},
		{name: "negative gap", input: Input{ArrowLayout: &ArrowConfig{RequiredGap: -5}}, wantErr: ErrInvalidArrow},
		{
			name:    "bad class name",
			input:   Input{Title: TextModule{Enabled: true, Content: "x", ClassName: `a"><script>`}},
			wantErr: ErrInvalidClassName,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := &fakeEngine{}
			g := newTestGenerator(t, engine)
			input := tt.input
			input.Layout = true
			_, err := g.Generate(context.Background(), input)

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Generate() error = %v, want %v", err, tt.wantErr)
			}
			if engine.callCount() != 0 {
				t.Errorf("layout ran %d times for invalid input, want 0", engine.callCount())
			}
		})
	}
}

func TestGenerate_Layout(t *testing.T) {
	t.Parallel()

	t.Run("skipped unless requested", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{}
		g := newTestGenerator(t, engine)
		res, err := g.Generate(context.Background(), Input{Title: TextModule{Enabled: true, Content: "x"}})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if engine.callCount() != 0 {
			t.Errorf("layout ran %d times, want 0", engine.callCount())
		}
		if res.Layout != nil {
			t.Errorf("Layout = %+v, want nil", res.Layout)
		}
	})

	t.Run("returns adjusted DOM and report", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{out: &layoutOutput{
			HTML: "<html>adjusted</html>",
			Report: layout.Report{
				Fit: []layout.FitResult{{
					Selector: ".text-1", InitialFontSize: 64, FontSize: 44, Attempts: 5, Outcome: layout.OutcomeFitted,
				}},
				Arrow: &layout.ArrowResult{Adjusted: true, Gap: 10, PaddingBefore: 60, PaddingAfter: 70},
			},
		}}
		g := newTestGenerator(t, engine)

		res, err := g.Generate(context.Background(), Input{Layout: true})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if string(res.HTML) != "<html>adjusted</html>" {
			t.Errorf("HTML = %q, want adjusted DOM", res.HTML)
		}

		want := &LayoutReport{
			Fit:   []FitResult{{Selector: ".text-1", InitialFontSize: 64, FontSize: 44, Attempts: 5, Outcome: "fitted"}},
			Arrow: &ArrowResult{Adjusted: true, Gap: 10, PaddingBefore: 60, PaddingAfter: 70},
		}
		if diff := cmp.Diff(want, res.Layout); diff != "" {
			t.Errorf("Layout mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("canvas defaults passed to engine", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{}
		g := newTestGenerator(t, engine)
		if _, err := g.Generate(context.Background(), Input{Layout: true, Height: 1350}); err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		opts := engine.calls[0]
		if opts.Width != 1080 || opts.Height != 1350 {
			t.Errorf("viewport = %dx%d, want 1080x1350", opts.Width, opts.Height)
		}
		if opts.Fit != nil || opts.Arrow != nil {
			t.Errorf("Fit = %+v, Arrow = %+v, want nil without configuration", opts.Fit, opts.Arrow)
		}
	})

	t.Run("input configuration overrides generator defaults", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{}
		g := newTestGenerator(t, engine,
			WithTextFit(&FitConfig{Enabled: true, MinFontSize: 48}),
			WithArrowLayout(&ArrowConfig{Enabled: true, RequiredGap: 20}),
		)
		input := Input{
			Layout:  true,
			TextFit: &FitConfig{Enabled: true, MinFontSize: 32, Targets: []string{".text-2"}},
		}
		if _, err := g.Generate(context.Background(), input); err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		opts := engine.calls[0]
		wantFit := &layout.FitConfig{Enabled: true, MinFontSize: 32, Targets: []string{".text-2"}}
		if diff := cmp.Diff(wantFit, opts.Fit); diff != "" {
			t.Errorf("Fit mismatch (-want +got):\n%s", diff)
		}
		if opts.Arrow == nil || opts.Arrow.RequiredGap != 20 {
			t.Errorf("Arrow = %+v, want generator default", opts.Arrow)
		}
	})

	t.Run("arrow padding seeds base CSS", func(t *testing.T) {
		t.Parallel()

		g := newTestGenerator(t, &fakeEngine{})
		got := generateHTML(t, g, Input{ArrowLayout: &ArrowConfig{DefaultPadding: 90}})
		if !strings.Contains(got, "padding:60px 60px 90px 60px") {
			t.Errorf("container padding should start at 90px\n%s", got)
		}
	})

	t.Run("engine errors are wrapped", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{err: fmt.Errorf("%w: chrome missing", ErrBrowserConnect)}
		g := newTestGenerator(t, engine)

		_, err := g.Generate(context.Background(), Input{Layout: true})
		if !errors.Is(err, ErrBrowserConnect) {
			t.Errorf("Generate() error = %v, want ErrBrowserConnect", err)
		}
	})

	t.Run("panics become errors", func(t *testing.T) {
		t.Parallel()

		g := newTestGenerator(t, &fakeEngine{panicOn: true})
		_, err := g.Generate(context.Background(), Input{Layout: true})
		if err == nil || !strings.Contains(err.Error(), "internal error") {
			t.Errorf("Generate() error = %v, want internal error", err)
		}
	})
}

func TestGenerate_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := newTestGenerator(t, &fakeEngine{})
	_, err := g.Generate(ctx, Input{Title: TextModule{Enabled: true, Content: "x"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
}

func TestNewGenerator_BadTemplate(t *testing.T) {
	t.Parallel()

	_, err := NewGenerator(WithPageTemplate("{{.Broken"), withLayoutEngine(&fakeEngine{}))
	if err == nil {
		t.Fatal("NewGenerator() error = nil, want template parse error")
	}
}

func TestWithTimeout_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("WithTimeout(0) did not panic")
		}
	}()
	WithTimeout(0)
}

func TestGenerator_Close(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{}
	g, err := NewGenerator(withLayoutEngine(engine))
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !engine.closed {
		t.Error("Close() did not close the layout engine")
	}
}

func TestComposeContent(t *testing.T) {
	t.Parallel()

	got := ComposeContent(ContentModule{Enabled: true, Mode: "grid", URL: "a.png", URL2: "b.png"}, "https://cdn.example.com")
	want := `<div class="content-module content-module--comparison">` +
		`<div class="comparison-item"><img class="content-image" src="https://cdn.example.com/a.png" alt=""></div>` +
		`<div class="comparison-item"><img class="content-image" src="https://cdn.example.com/b.png" alt=""></div>` +
		`</div>`
	if got != want {
		t.Errorf("ComposeContent() =\n%s\nwant\n%s", got, want)
	}

	if got := ComposeContent(ContentModule{Enabled: false, URL: "a.png"}, ""); got != "" {
		t.Errorf("ComposeContent(disabled) = %q, want empty", got)
	}
}
