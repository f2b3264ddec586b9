package imagegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/feBittar/image-gen-nextjs-sub003/internal/assets"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/layout"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/pipeline"
)

// Canvas bounds in CSS pixels.
const (
	MinDimension = 100
	MaxDimension = 4096
)

// Content module modes.
const (
	ModeSingle     = "single"
	ModeComparison = "comparison"
)

// Input describes one template page.
type Input struct {
	// Document title (optional)
	Name        string        `json:"name,omitempty" yaml:"name,omitempty"`
	// Headline, class "text-1" unless set
	Title       TextModule    `json:"title" yaml:"title"`
	// Further text blocks, "text-2" onward unless set
	Body        []TextModule  `json:"body,omitempty" yaml:"body,omitempty"`
	// Image module
	Content     ContentModule `json:"content" yaml:"content"`
	// Font asset filename, e.g. "Inter.ttf"
	Font        string        `json:"font,omitempty" yaml:"font,omitempty"`
	// Logo asset filename
	Logo        string        `json:"logo,omitempty" yaml:"logo,omitempty"`
	// Arrow image URL
	Arrow       string        `json:"arrow,omitempty" yaml:"arrow,omitempty"`
	// Custom CSS, applied last
	CSS         string        `json:"css,omitempty" yaml:"css,omitempty"`
	// Canvas size in CSS pixels, 0 = default
	Width       int           `json:"width,omitempty" yaml:"width,omitempty"`
	Height      int           `json:"height,omitempty" yaml:"height,omitempty"`
	// Overrides the generator's base URL
	BaseURL     string        `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
	TextFit     *FitConfig    `json:"textFit,omitempty" yaml:"textFit,omitempty"`
	ArrowLayout *ArrowConfig  `json:"arrowLayout,omitempty" yaml:"arrowLayout,omitempty"`
	// Run the browser layout pass
	Layout      bool          `json:"layout,omitempty" yaml:"layout,omitempty"`
}

// TextModule is a block of inline Markdown.
type TextModule struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Content   string `json:"content" yaml:"content"`
	ClassName string `json:"className,omitempty" yaml:"className,omitempty"`
}

// ContentModule places one image, or two side by side.
// Any mode other than "single" renders as a comparison.
type ContentModule struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Mode    string `json:"mode" yaml:"mode"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
	URL2    string `json:"url2,omitempty" yaml:"url2,omitempty"`
}

// ValidateMode applies the strict mode check: only "single" and
// "comparison" are accepted. Rendering itself never rejects a mode.
func (m ContentModule) ValidateMode() error {
	return pipeline.ValidateContentModule(pipeline.ContentModule(m))
}

// FitConfig configures text auto-fit. Zero sizing fields take the defaults
// (minimum 48px, step 4px, 20 attempts, target ".text-1").
type FitConfig struct {
	Enabled     bool     `json:"enabled" yaml:"enabled"`
	Targets     []string `json:"targets,omitempty" yaml:"targets,omitempty"`
	MinFontSize float64  `json:"minFontSize,omitempty" yaml:"minFontSize,omitempty"`
	Step        float64  `json:"step,omitempty" yaml:"step,omitempty"`
	MaxAttempts int      `json:"maxAttempts,omitempty" yaml:"maxAttempts,omitempty"`
}

// Validate checks that no sizing field is negative.
// Returns nil if c is nil (nil means no auto-fit).
func (c *FitConfig) Validate() error {
	if c == nil {
		return nil
	}
	if c.MinFontSize < 0 {
		return fmt.Errorf("%w: minFontSize %v is negative", ErrInvalidTextFit, c.MinFontSize)
	}
	if c.Step < 0 {
		return fmt.Errorf("%w: step %v is negative", ErrInvalidTextFit, c.Step)
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("%w: maxAttempts %d is negative", ErrInvalidTextFit, c.MaxAttempts)
	}
	for _, t := range c.Targets {
		if t == "" {
			return fmt.Errorf("%w: empty target selector", ErrInvalidTextFit)
		}
	}
	return nil
}

// ArrowConfig configures title-arrow spacing. Empty fields take the defaults
// (".arrow", ".container", ".title", 20px gap, 60px padding, 100ms settle).
// In JSON, settleDelay is a duration string ("250ms") or a number of
// milliseconds.
type ArrowConfig struct {
	Enabled           bool          `json:"enabled" yaml:"enabled"`
	ArrowSelector     string        `json:"arrowSelector,omitempty" yaml:"arrowSelector,omitempty"`
	ContainerSelector string        `json:"containerSelector,omitempty" yaml:"containerSelector,omitempty"`
	TitleSelector     string        `json:"titleSelector,omitempty" yaml:"titleSelector,omitempty"`
	RequiredGap       float64       `json:"requiredGap,omitempty" yaml:"requiredGap,omitempty"`
	DefaultPadding    float64       `json:"defaultPadding,omitempty" yaml:"defaultPadding,omitempty"`
	SettleDelay       time.Duration `json:"settleDelay,omitempty" yaml:"settleDelay,omitempty"`
}

// Validate checks that no numeric field is negative.
// Returns nil if c is nil.
func (c *ArrowConfig) Validate() error {
	if c == nil {
		return nil
	}
	if c.RequiredGap < 0 {
		return fmt.Errorf("%w: requiredGap %v is negative", ErrInvalidArrow, c.RequiredGap)
	}
	if c.DefaultPadding < 0 {
		return fmt.Errorf("%w: defaultPadding %v is negative", ErrInvalidArrow, c.DefaultPadding)
	}
	if c.SettleDelay < 0 {
		return fmt.Errorf("%w: settleDelay %v is negative", ErrInvalidArrow, c.SettleDelay)
	}
	return nil
}

// UnmarshalJSON decodes settleDelay from a duration string or a number of
// milliseconds.
func (c *ArrowConfig) UnmarshalJSON(data []byte) error {
	type plain ArrowConfig
	aux := struct {
		*plain
		SettleDelay json.RawMessage `json:"settleDelay,omitempty"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	raw := bytes.TrimSpace(aux.SettleDelay)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("%w: settleDelay: %v", ErrInvalidArrow, err)
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("%w: settleDelay: %v", ErrInvalidArrow, err)
		}
		c.SettleDelay = d
		return nil
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return fmt.Errorf("%w: settleDelay must be a duration string or milliseconds", ErrInvalidArrow)
	}
	c.SettleDelay = time.Duration(ms * float64(time.Millisecond))
	return nil
}

// MarshalJSON encodes settleDelay as a duration string.
func (c ArrowConfig) MarshalJSON() ([]byte, error) {
	type plain ArrowConfig
	aux := struct {
		plain
		SettleDelay string `json:"settleDelay,omitempty"`
	}{plain: plain(c)}
	if c.SettleDelay != 0 {
		aux.SettleDelay = c.SettleDelay.String()
	}
	return json.Marshal(aux)
}

// Result holds a generated page.
type Result struct {
	HTML   []byte        // Page HTML; the adjusted DOM when a layout pass ran
	Layout *LayoutReport // nil unless Input.Layout was set
}

// LayoutReport describes what the layout pass changed.
type LayoutReport struct {
	Fit   []FitResult  `json:"fit,omitempty" yaml:"fit,omitempty"`
	Arrow *ArrowResult `json:"arrow,omitempty" yaml:"arrow,omitempty"`
}

// FitResult reports auto-fit for one target.
type FitResult struct {
	Selector        string  `json:"selector" yaml:"selector"`
	InitialFontSize float64 `json:"initialFontSize" yaml:"initialFontSize"`
	FontSize        float64 `json:"fontSize" yaml:"fontSize"`
	Attempts        int     `json:"attempts" yaml:"attempts"`
	Outcome         string  `json:"outcome" yaml:"outcome"` // "fitted", "min-font-size" or "max-attempts"
}

// ArrowResult reports title-arrow spacing.
type ArrowResult struct {
	Adjusted      bool    `json:"adjusted" yaml:"adjusted"`
	Gap           float64 `json:"gap" yaml:"gap"`
	PaddingBefore float64 `json:"paddingBefore,omitempty" yaml:"paddingBefore,omitempty"`
	PaddingAfter  float64 `json:"paddingAfter,omitempty" yaml:"paddingAfter,omitempty"`
	Skipped       string  `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// validateDimension accepts 0 (default) or a value within bounds.
func validateDimension(name string, v int) error {
	if v == 0 {
		return nil
	}
	if v < MinDimension || v > MaxDimension {
		return fmt.Errorf("%w: %s %d (must be between %d and %d)", ErrInvalidDimension, name, v, MinDimension, MaxDimension)
	}
	return nil
}

// validateAsset checks an asset filename against the kind's rules.
// An empty name means no asset.
func validateAsset(kind assets.Kind, name string, sentinel error) error {
	if name == "" {
		return nil
	}
	if err := assets.ValidateFilename(name); err != nil {
		return fmt.Errorf("%w: %v", sentinel, err)
	}
	if !kind.Allows(filepath.Ext(name)) {
		return fmt.Errorf("%w: %q has an unsupported extension", sentinel, name)
	}
	return nil
}

// toLayoutFit converts the public FitConfig to layout.FitConfig.
func toLayoutFit(c *FitConfig) *layout.FitConfig {
	if c == nil {
		return nil
	}
	return &layout.FitConfig{
		Enabled:     c.Enabled,
		Targets:     append([]string(nil), c.Targets...),
		MinFontSize: c.MinFontSize,
		Step:        c.Step,
		MaxAttempts: c.MaxAttempts,
	}
}

// toLayoutArrow converts the public ArrowConfig to layout.ArrowConfig.
func toLayoutArrow(c *ArrowConfig) *layout.ArrowConfig {
	if c == nil {
		return nil
	}
	lc := layout.ArrowConfig(*c)
	return &lc
}

// toLayoutReport converts a layout.Report to the public LayoutReport.
func toLayoutReport(r layout.Report) *LayoutReport {
	out := &LayoutReport{}
	for _, f := range r.Fit {
		out.Fit = append(out.Fit, FitResult{
			Selector:        f.Selector,
			InitialFontSize: f.InitialFontSize,
			FontSize:        f.FontSize,
			Attempts:        f.Attempts,
			Outcome:         string(f.Outcome),
		})
	}
	if r.Arrow != nil {
		a := ArrowResult(*r.Arrow)
		out.Arrow = &a
	}
	return out
}
