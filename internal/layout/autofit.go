package layout

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Auto-fit defaults.
const (
	DefaultMinFontSize = 48
	DefaultFontStep    = 4
	DefaultMaxAttempts = 20
)

// singleLineTolerance scales the line height into the tallest box still
// considered one line.
const singleLineTolerance = 1.5

// normalLineHeight approximates `line-height: normal` as a multiple of the
// font size.
const normalLineHeight = 1.2

// DefaultTargets are the selectors auto-fit applies to when none are configured.
func DefaultTargets() []string {
	return []string{".text-1"}
}

// FitConfig configures text auto-fit.
type FitConfig struct {
	Enabled     bool     `json:"enabled" yaml:"enabled"`
	Targets     []string `json:"targets,omitempty" yaml:"targets"`
	MinFontSize float64  `json:"minFontSize,omitempty" yaml:"minFontSize"`
	Step        float64  `json:"step,omitempty" yaml:"step"`
	MaxAttempts int      `json:"maxAttempts,omitempty" yaml:"maxAttempts"`
}

// DefaultFitConfig returns an enabled configuration with default sizing.
func DefaultFitConfig() *FitConfig {
	return &FitConfig{
		Enabled:     true,
		Targets:     DefaultTargets(),
		MinFontSize: DefaultMinFontSize,
		Step:        DefaultFontStep,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// withDefaults fills zero or negative sizing fields with their defaults.
func (c FitConfig) withDefaults() FitConfig {
	if len(c.Targets) == 0 {
		c.Targets = DefaultTargets()
	}
	if c.MinFontSize <= 0 {
		c.MinFontSize = DefaultMinFontSize
	}
	if c.Step <= 0 {
		c.Step = DefaultFontStep
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	return c
}

// FitOutcome records why auto-fit stopped.
type FitOutcome string

// Auto-fit outcomes.
const (
	OutcomeFitted      FitOutcome = "fitted"
	OutcomeMinFontSize FitOutcome = "min-font-size"
	OutcomeMaxAttempts FitOutcome = "max-attempts"
)

// FitResult reports one auto-fit run.
type FitResult struct {
	Selector        string     `json:"selector,omitempty"`
	InitialFontSize float64    `json:"initialFontSize"`
	FontSize        float64    `json:"fontSize"`
	Attempts        int        `json:"attempts"`
	Outcome         FitOutcome `json:"outcome"`
}

// AutoFit shrinks el's font size by cfg.Step until its rendered height is at
// most 1.5 line heights, the size is at or below cfg.MinFontSize, or
// cfg.MaxAttempts reductions have been made. The font size is written as an
// inline style after each reduction and left at the last size tried.
func AutoFit(el Element, cfg FitConfig) (FitResult, error) {
	cfg = cfg.withDefaults()

	raw, err := el.ComputedStyle("font-size")
	if err != nil {
		return FitResult{}, fmt.Errorf("reading font-size: %w", err)
	}
	fontSize, ok := ParsePixels(raw)
	if !ok {
		return FitResult{}, fmt.Errorf("unparseable font-size %q", raw)
	}

	res := FitResult{InitialFontSize: fontSize, FontSize: fontSize}
	for {
		fits, err := fitsOneLine(el, res.FontSize)
		if err != nil {
			return res, err
		}
		switch {
		case fits:
			res.Outcome = OutcomeFitted
			return res, nil
		case res.FontSize <= cfg.MinFontSize:
			res.Outcome = OutcomeMinFontSize
			return res, nil
		case res.Attempts >= cfg.MaxAttempts:
			res.Outcome = OutcomeMaxAttempts
			return res, nil
		}

		res.FontSize -= cfg.Step
		res.Attempts++
		if err := el.SetStyle("font-size", FormatPixels(res.FontSize)); err != nil {
			return res, fmt.Errorf("writing font-size: %w", err)
		}
	}
}

// fitsOneLine measures el and compares its height with the single-line
// threshold for fontSize.
func fitsOneLine(el Element, fontSize float64) (bool, error) {
	rect, err := el.BoundingRect()
	if err != nil {
		return false, fmt.Errorf("measuring element: %w", err)
	}

	lineHeight := fontSize * normalLineHeight
	if raw, err := el.ComputedStyle("line-height"); err == nil {
		if v, ok := ParsePixels(raw); ok {
			lineHeight = v
		}
	}

	return rect.Height <= lineHeight*singleLineTolerance, nil
}

// RunAutoFit applies AutoFit to the first element matching each configured
// target. A nil or disabled cfg does nothing. Missing targets and measuring
// failures are logged and skipped so one bad target never stops the rest.
func RunAutoFit(ctx context.Context, doc Document, cfg *FitConfig, logger *zap.Logger) []FitResult {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	effective := cfg.withDefaults()

	results := make([]FitResult, 0, len(effective.Targets))
	for _, selector := range effective.Targets {
		if ctx.Err() != nil {
			break
		}

		el, err := doc.Query(selector)
		if err != nil {
			logger.Warn("auto-fit query failed", zap.String("selector", selector), zap.Error(err))
			continue
		}
		if el == nil {
			logger.Warn("auto-fit target not found", zap.String("selector", selector))
			continue
		}

		res, err := AutoFit(el, effective)
		if err != nil {
			logger.Warn("auto-fit failed", zap.String("selector", selector), zap.Error(err))
			continue
		}
		res.Selector = selector

		if res.Outcome == OutcomeMaxAttempts {
			logger.Info("auto-fit gave up after max attempts",
				zap.String("selector", selector),
				zap.Float64("fontSize", res.FontSize),
				zap.Int("attempts", res.Attempts))
		} else {
			logger.Debug("auto-fit finished",
				zap.String("selector", selector),
				zap.String("outcome", string(res.Outcome)),
				zap.Float64("fontSize", res.FontSize),
				zap.Int("attempts", res.Attempts))
		}
		results = append(results, res)
	}
	return results
}
