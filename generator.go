package imagegen

import (
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/feBittar/image-gen-nextjs-sub003/internal/assets"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/layout"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.CSSInjector = (*pipeline.CSSInjection)(nil)
	_ layoutEngine         = (*rodEngine)(nil)
	_ layout.Document      = (*rodDocument)(nil)
	_ layout.Element       = (*rodElement)(nil)
)

// defaultTimeout bounds one browser layout pass.
const defaultTimeout = 30 * time.Second

// fontSelector receives the selected font family.
const fontSelector = "body"

// Option configures a Generator.
type Option func(*Generator)

// generatorConfig holds internal configuration for Generator.
type generatorConfig struct {
	timeout     time.Duration
	baseURL     string
	pageLayout  string
	textFit     *FitConfig
	arrowLayout *ArrowConfig
}

// WithTimeout sets the layout pass timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("imagegen: WithTimeout duration must be positive")
	}
	return func(g *Generator) {
		g.cfg.timeout = d
	}
}

// WithBaseURL sets the origin relative asset URLs resolve against when the
// input carries none.
func WithBaseURL(baseURL string) Option {
	return func(g *Generator) {
		g.cfg.baseURL = baseURL
	}
}

// WithPageTemplate replaces the built-in html/template page layout.
func WithPageTemplate(content string) Option {
	return func(g *Generator) {
		g.cfg.pageLayout = content
	}
}

// WithTextFit sets the auto-fit configuration used when an input has none.
func WithTextFit(cfg *FitConfig) Option {
	return func(g *Generator) {
		g.cfg.textFit = cfg
	}
}

// WithArrowLayout sets the title-arrow configuration used when an input has none.
func WithArrowLayout(cfg *ArrowConfig) Option {
	return func(g *Generator) {
		g.cfg.arrowLayout = cfg
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Generator composes template pages and optionally lays them out in a
// headless browser. Create with NewGenerator, use Generate, and Close when
// done. Composition is safe for concurrent use; the browser is shared, so
// use a GeneratorPool to run layout passes in parallel.
type Generator struct {
	cfg          generatorConfig
	logger       *zap.Logger
	textRenderer *pipeline.TextRenderer
	pageBuilder  *pipeline.PageBuilder
	cssInjector  pipeline.CSSInjector
	layoutEngine layoutEngine
}

// NewGenerator creates a Generator with default configuration.
// Returns error if the page template cannot be parsed.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		cfg: generatorConfig{
			timeout:    defaultTimeout,
			pageLayout: pipeline.DefaultPageTemplate(),
		},
		logger:       zap.NewNop(),
		textRenderer: pipeline.NewTextRenderer(),
		cssInjector:  &pipeline.CSSInjection{},
	}

	for _, opt := range opts {
		opt(g)
	}

	builder, err := pipeline.NewPageBuilder(g.cfg.pageLayout)
	if err != nil {
		return nil, err
	}
	g.pageBuilder = builder

	// Create layout engine if not injected (e.g., by tests)
	if g.layoutEngine == nil {
		g.layoutEngine = newRodEngine(g.cfg.timeout, g.logger)
	}

	return g, nil
}

// Generate composes the page described by input. When input.Layout is set
// the page is rendered in headless Chrome, auto-fit and title-arrow spacing
// run against the live DOM, and the adjusted DOM is returned.
//
// Measurement failures inside the layout pass are logged and leave the page
// as composed; failures to reach the browser are returned.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (g *Generator) Generate(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := g.validateInput(input); err != nil {
		return nil, err
	}

	htmlContent, err := g.compose(ctx, input)
	if err != nil {
		return nil, err
	}

	res := &Result{HTML: []byte(htmlContent)}
	if !input.Layout {
		return res, nil
	}

	fit := input.TextFit
	if fit == nil {
		fit = g.cfg.textFit
	}
	arrow := input.ArrowLayout
	if arrow == nil {
		arrow = g.cfg.arrowLayout
	}

	out, err := g.layoutEngine.Layout(ctx, htmlContent, &layoutOptions{
		Width:  canvasSize(input.Width, pipeline.DefaultWidth),
		Height: canvasSize(input.Height, pipeline.DefaultHeight),
		Fit:    toLayoutFit(fit),
		Arrow:  toLayoutArrow(arrow),
	})
	if err != nil {
		return nil, fmt.Errorf("running layout: %w", err)
	}

	res.HTML = []byte(out.HTML)
	res.Layout = toLayoutReport(out.Report)
	return res, nil
}

// ComposeContent returns the HTML fragment for a content module, resolving
// relative image URLs against baseURL.
func ComposeContent(m ContentModule, baseURL string) string {
	return pipeline.RenderContentModule(pipeline.ContentModule(m), &pipeline.RenderContext{BaseURL: baseURL})
}

// Close releases resources (headless Chrome browser).
func (g *Generator) Close() error {
	if g.layoutEngine != nil {
		return g.layoutEngine.Close()
	}
	return nil
}

// compose renders the page template and injects the page CSS.
func (g *Generator) compose(ctx context.Context, input Input) (string, error) {
	baseURL := input.BaseURL
	if baseURL == "" {
		baseURL = g.cfg.baseURL
	}

	data := &pipeline.PageData{Title: input.Name}

	titleHTML, err := g.textRenderer.Render(ctx, pipeline.TextModule(input.Title))
	if err != nil {
		return "", fmt.Errorf("rendering title: %w", err)
	}
	data.TitleHTML = template.HTML(titleHTML) // #nosec G203 -- goldmark output, raw HTML escaped

	for i, m := range input.Body {
		if m.ClassName == "" {
			m.ClassName = fmt.Sprintf("text-%d", i+2)
		}
		bodyHTML, err := g.textRenderer.Render(ctx, pipeline.TextModule(m))
		if err != nil {
			return "", fmt.Errorf("rendering text module %d: %w", i+1, err)
		}
		if bodyHTML != "" {
			data.Body = append(data.Body, template.HTML(bodyHTML)) // #nosec G203 -- goldmark output
		}
	}

	data.ContentHTML = template.HTML(ComposeContent(input.Content, baseURL)) // #nosec G203 -- attributes escaped

	if input.Logo != "" {
		data.LogoURL = pipeline.ResolveURL(assets.KindLogos.PublicURL(input.Logo), baseURL)
	}
	if input.Arrow != "" {
		data.ArrowURL = pipeline.ResolveURL(input.Arrow, baseURL)
	}

	htmlContent, err := g.pageBuilder.Build(ctx, data)
	if err != nil {
		return "", err
	}

	// Markdown images in text modules may still be relative
	if baseURL != "" {
		htmlContent, err = pipeline.RewriteRelativeURLs(htmlContent, baseURL)
		if err != nil {
			return "", fmt.Errorf("rewriting relative URLs: %w", err)
		}
	}

	// Order matters: base layout first, font next, user CSS last (can override)
	css := pipeline.BuildBaseCSS(input.Width, input.Height, g.bottomPadding(input))
	if input.Font != "" {
		css += pipeline.BuildFontFaceCSS(pipeline.FontFace{
			Family: fontFamily(input.Font),
			URL:    pipeline.ResolveURL(assets.KindFonts.PublicURL(input.Font), baseURL),
		}, fontSelector)
	}
	if input.CSS != "" {
		css += "\n" + input.CSS
	}

	htmlContent = g.cssInjector.InjectCSS(ctx, htmlContent, css)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return htmlContent, nil
}

// bottomPadding is the container padding the arrow adjustment starts from.
func (g *Generator) bottomPadding(input Input) float64 {
	cfg := input.ArrowLayout
	if cfg == nil {
		cfg = g.cfg.arrowLayout
	}
	if cfg != nil && cfg.DefaultPadding > 0 {
		return cfg.DefaultPadding
	}
	return layout.DefaultContainerPadding
}

// validateInput checks that all fields are usable before any rendering.
//
// This is a TRUST BOUNDARY for direct library users who build Input manually.
// HTTP and CLI callers decode into Input and converge here.
func (g *Generator) validateInput(input Input) error {
	if err := validateDimension("width", input.Width); err != nil {
		return err
	}
	if err := validateDimension("height", input.Height); err != nil {
		return err
	}
	if err := validateAsset(assets.KindFonts, input.Font, ErrInvalidFont); err != nil {
		return err
	}
	if err := validateAsset(assets.KindLogos, input.Logo, ErrInvalidLogo); err != nil {
		return err
	}
	if err := input.TextFit.Validate(); err != nil {
		return err
	}
	if err := input.ArrowLayout.Validate(); err != nil {
		return err
	}
	return nil
}

// fontFamily derives the CSS family name from a font filename.
func fontFamily(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

func canvasSize(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
