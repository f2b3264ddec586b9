package layout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Title-arrow defaults.
const (
	DefaultArrowSelector     = ".arrow"
	DefaultContainerSelector = ".container"
	DefaultTitleSelector     = ".title"
	DefaultRequiredGap       = 20
	DefaultContainerPadding  = 60
	DefaultSettleDelay       = 100 * time.Millisecond
)

// Reasons AdjustTitleArrow reports when it leaves the page untouched.
const (
	SkipDisabled      = "disabled"
	SkipNoArrow       = "arrow not found"
	SkipNoContainer   = "container not found"
	SkipInvalidSrc    = "arrow has no image source"
	SkipNoTitle       = "title not found"
	SkipGapSufficient = "gap sufficient"
)

// ArrowConfig configures title-arrow spacing.
type ArrowConfig struct {
	Enabled           bool          `json:"enabled" yaml:"enabled"`
	ArrowSelector     string        `json:"arrowSelector,omitempty" yaml:"arrowSelector"`
	ContainerSelector string        `json:"containerSelector,omitempty" yaml:"containerSelector"`
	TitleSelector     string        `json:"titleSelector,omitempty" yaml:"titleSelector"`
	RequiredGap       float64       `json:"requiredGap,omitempty" yaml:"requiredGap"`
	DefaultPadding    float64       `json:"defaultPadding,omitempty" yaml:"defaultPadding"`
	SettleDelay       time.Duration `json:"settleDelay,omitempty" yaml:"settleDelay"`
}

// DefaultArrowConfig returns an enabled configuration with default selectors.
func DefaultArrowConfig() *ArrowConfig {
	return &ArrowConfig{
		Enabled:           true,
		ArrowSelector:     DefaultArrowSelector,
		ContainerSelector: DefaultContainerSelector,
		TitleSelector:     DefaultTitleSelector,
		RequiredGap:       DefaultRequiredGap,
		DefaultPadding:    DefaultContainerPadding,
		SettleDelay:       DefaultSettleDelay,
	}
}

func (c ArrowConfig) withDefaults() ArrowConfig {
	if c.ArrowSelector == "" {
		c.ArrowSelector = DefaultArrowSelector
	}
	if c.ContainerSelector == "" {
		c.ContainerSelector = DefaultContainerSelector
	}
	if c.TitleSelector == "" {
		c.TitleSelector = DefaultTitleSelector
	}
	if c.RequiredGap <= 0 {
		c.RequiredGap = DefaultRequiredGap
	}
	if c.DefaultPadding <= 0 {
		c.DefaultPadding = DefaultContainerPadding
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = DefaultSettleDelay
	}
	return c
}

// ArrowResult reports one title-arrow adjustment.
type ArrowResult struct {
	Adjusted      bool    `json:"adjusted"`
	Gap           float64 `json:"gap"`
	PaddingBefore float64 `json:"paddingBefore,omitempty"`
	PaddingAfter  float64 `json:"paddingAfter,omitempty"`
	Skipped       string  `json:"skipped,omitempty"`
}

// AdjustTitleArrow measures the vertical gap between the bottom of the title
// and the top of the arrow image. When the gap is below cfg.RequiredGap the
// container's bottom padding grows by exactly the shortfall, which lifts the
// bottom-anchored title away from the arrow.
//
// Missing elements or an arrow without a usable image source leave the page
// unchanged and are reported through ArrowResult.Skipped. A nil cfg applies
// the defaults; a non-nil disabled cfg does nothing.
func AdjustTitleArrow(ctx context.Context, doc Document, cfg *ArrowConfig) (ArrowResult, error) {
	if cfg == nil {
		cfg = DefaultArrowConfig()
	}
	if !cfg.Enabled {
		return ArrowResult{Skipped: SkipDisabled}, nil
	}
	c := cfg.withDefaults()

	if err := ctx.Err(); err != nil {
		return ArrowResult{}, err
	}

	arrow, err := doc.Query(c.ArrowSelector)
	if err != nil {
		return ArrowResult{}, fmt.Errorf("querying arrow: %w", err)
	}
	if arrow == nil {
		return ArrowResult{Skipped: SkipNoArrow}, nil
	}
	container, err := doc.Query(c.ContainerSelector)
	if err != nil {
		return ArrowResult{}, fmt.Errorf("querying container: %w", err)
	}
	if container == nil {
		return ArrowResult{Skipped: SkipNoContainer}, nil
	}

	ok, err := hasImageSource(doc, arrow)
	if err != nil {
		return ArrowResult{}, err
	}
	if !ok {
		return ArrowResult{Skipped: SkipInvalidSrc}, nil
	}

	title, err := doc.Query(c.TitleSelector)
	if err != nil {
		return ArrowResult{}, fmt.Errorf("querying title: %w", err)
	}
	if title == nil {
		return ArrowResult{Skipped: SkipNoTitle}, nil
	}

	arrowRect, err := arrow.BoundingRect()
	if err != nil {
		return ArrowResult{}, fmt.Errorf("measuring arrow: %w", err)
	}
	titleRect, err := title.BoundingRect()
	if err != nil {
		return ArrowResult{}, fmt.Errorf("measuring title: %w", err)
	}

	gap := arrowRect.Top - titleRect.Bottom
	if gap >= c.RequiredGap {
		return ArrowResult{Gap: gap, Skipped: SkipGapSufficient}, nil
	}

	current := c.DefaultPadding
	if raw, err := container.ComputedStyle("padding-bottom"); err == nil {
		if v, ok := ParsePixels(raw); ok {
			current = v
		}
	}

	next := current + (c.RequiredGap - gap)
	if err := container.SetStyle("padding-bottom", FormatPixels(next)); err != nil {
		return ArrowResult{}, fmt.Errorf("writing padding-bottom: %w", err)
	}

	return ArrowResult{
		Adjusted:      true,
		Gap:           gap,
		PaddingBefore: current,
		PaddingAfter:  next,
	}, nil
}

// hasImageSource reports whether the arrow image points at a real resource.
// Browsers resolve an empty src to the page address, so that case and a
// bare directory URL both count as missing.
func hasImageSource(doc Document, arrow Element) (bool, error) {
	src, err := arrow.Property("src")
	if err != nil {
		return false, fmt.Errorf("reading arrow src: %w", err)
	}
	src = strings.TrimSpace(src)
	if src == "" || strings.HasSuffix(src, "/") {
		return false, nil
	}

	pageURL, err := doc.URL()
	if err != nil {
		return false, fmt.Errorf("reading page url: %w", err)
	}
	return src != pageURL, nil
}

// RunLayout runs auto-fit and then title-arrow spacing, logging rather than
// returning failures. The arrow pass runs last, after the settle delay, so it
// measures the final title height.
func RunLayout(ctx context.Context, doc Document, fit *FitConfig, arrow *ArrowConfig, logger *zap.Logger) Report {
	if logger == nil {
		logger = zap.NewNop()
	}

	report := Report{Fit: RunAutoFit(ctx, doc, fit, logger)}
	if arrow == nil || !arrow.Enabled {
		return report
	}

	if err := Settle(ctx, arrow.withDefaults().SettleDelay); err != nil {
		return report
	}

	res, err := AdjustTitleArrow(ctx, doc, arrow)
	if err != nil {
		logger.Warn("title-arrow adjustment failed", zap.Error(err))
		return report
	}
	if res.Adjusted {
		logger.Debug("title-arrow padding adjusted",
			zap.Float64("gap", res.Gap),
			zap.Float64("paddingBefore", res.PaddingBefore),
			zap.Float64("paddingAfter", res.PaddingAfter))
	} else {
		logger.Debug("title-arrow adjustment skipped", zap.String("reason", res.Skipped))
	}
	report.Arrow = &res
	return report
}

// Report collects the results of one layout pass.
type Report struct {
	Fit   []FitResult  `json:"fit,omitempty"`
	Arrow *ArrowResult `json:"arrow,omitempty"`
}
