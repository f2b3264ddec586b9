package imagegen

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/feBittar/image-gen-nextjs-sub003/internal/fileutil"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/layout"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/process"
)

// layoutEngine renders composed HTML and runs the layout routines on it.
type layoutEngine interface {
	Layout(ctx context.Context, htmlContent string, opts *layoutOptions) (*layoutOutput, error)
	Close() error
}

// layoutOptions holds options for one layout pass.
type layoutOptions struct {
	Width  int
	Height int
	Fit    *layout.FitConfig
	Arrow  *layout.ArrowConfig
}

// layoutOutput is the adjusted page and what changed.
type layoutOutput struct {
	HTML   string
	Report layout.Report
}

// rodEngine implements layoutEngine using go-rod.
// Rod automatically downloads Chromium on first run if not found.
type rodEngine struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
	logger   *zap.Logger
}

// newRodEngine creates a rodEngine with the given timeout.
func newRodEngine(timeout time.Duration, logger *zap.Logger) *rodEngine {
	return &rodEngine{timeout: timeout, logger: logger}
}

// ensureBrowser lazily connects to the browser.
func (r *rodEngine) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.browser = browser
	r.launcher = l
	r.logger.Debug("browser connected", zap.String("controlURL", u))
	return browser, nil
}

// Close shuts the browser down and kills any Chrome helper processes left
// in its process group.
func (r *rodEngine) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		if pid := r.launcher.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		r.launcher.Kill()
		r.launcher = nil
	}
	return err
}

// Layout opens htmlContent in a page sized to the canvas, waits for web
// fonts, runs the layout routines and returns the resulting DOM.
func (r *rodEngine) Layout(ctx context.Context, htmlContent string, opts *layoutOptions) (*layoutOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	// Bound the pass by the engine timeout or the context deadline, whichever is sooner
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, context.DeadlineExceeded
		}
		if remaining < timeout {
			timeout = remaining
		}
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(timeout)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Width,
		Height:            opts.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrPageLoad, err)
	}

	if err := page.Navigate(fileutil.FileURL(tmpPath)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	// Measurements are only meaningful once the custom font is applied
	if _, err := page.Eval(`() => document.fonts.ready.then(() => true)`); err != nil {
		r.logger.Warn("waiting for fonts failed", zap.Error(err))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := layout.RunLayout(ctx, &rodDocument{page: page}, opts.Fit, opts.Arrow, r.logger)

	adjusted, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("%w: reading DOM: %v", ErrLayout, err)
	}

	return &layoutOutput{HTML: adjusted, Report: report}, nil
}

// rodDocument adapts a rod page to layout.Document.
type rodDocument struct {
	page *rod.Page
}

// Query returns the first element matching selector without waiting for it.
func (d *rodDocument) Query(selector string) (layout.Element, error) {
	has, el, err := d.page.Has(selector)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}
	return &rodElement{el: el}, nil
}

func (d *rodDocument) URL() (string, error) {
	info, err := d.page.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

// rodElement adapts a rod element to layout.Element. Every call evaluates in
// the page, so reads always see earlier writes.
type rodElement struct {
	el *rod.Element
}

func (e *rodElement) BoundingRect() (layout.Rect, error) {
	res, err := e.el.Eval(`() => {
		const r = this.getBoundingClientRect();
		return {top: r.top, bottom: r.bottom, left: r.left, right: r.right, width: r.width, height: r.height};
	}`)
	if err != nil {
		return layout.Rect{}, err
	}
	v := res.Value
	return layout.Rect{
		Top:    v.Get("top").Num(),
		Bottom: v.Get("bottom").Num(),
		Left:   v.Get("left").Num(),
		Right:  v.Get("right").Num(),
		Width:  v.Get("width").Num(),
		Height: v.Get("height").Num(),
	}, nil
}

func (e *rodElement) ComputedStyle(property string) (string, error) {
	res, err := e.el.Eval(`(p) => getComputedStyle(this).getPropertyValue(p)`, property)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (e *rodElement) SetStyle(property, value string) error {
	_, err := e.el.Eval(`(p, v) => { this.style.setProperty(p, v); }`, property, value)
	return err
}

func (e *rodElement) Property(name string) (string, error) {
	v, err := e.el.Property(name)
	if err != nil {
		return "", err
	}
	if v.Nil() {
		return "", nil
	}
	return v.Str(), nil
}
