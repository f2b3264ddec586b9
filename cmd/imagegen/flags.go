package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// errUsage marks invalid flags or arguments.
var errUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	publicDir string
	baseURL   string
	timeout   time.Duration
	workers   int
	logLevel  string
	logFormat string
	verbose   bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common      commonFlags
	addr        string
	corsOrigins []string
}

// renderFlags holds flags for the render command.
type renderFlags struct {
	common commonFlags
	output string
	css    string
	layout bool
	width  int
	height int
}

// newFlagSet returns a FlagSet that reports errors instead of exiting.
func newFlagSet(name string, w io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.SortFlags = false
	return fs
}

// addCommonFlags registers the flags every config-driven command accepts.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.publicDir, "public", "", "public directory holding fonts/ and logos/")
	fs.StringVar(&f.baseURL, "base-url", "", "origin relative asset URLs resolve against")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "layout pass timeout (e.g. 30s)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "browser instances (0 = auto)")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: json, console")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
}

// parseServeFlags parses serve arguments. No positional arguments are accepted.
func parseServeFlags(args []string, w io.Writer) (*serveFlags, *flag.FlagSet, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve", w)
	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (e.g. :8080)")
	fs.StringSliceVar(&f.corsOrigins, "cors-origin", nil, "allowed CORS origin (repeatable)")

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, nil, fmt.Errorf("%w: unexpected argument %q", errUsage, fs.Arg(0))
	}
	return f, fs, nil
}

// parseRenderFlags parses render arguments. Exactly one positional argument,
// the input file ("-" for stdin), is required.
func parseRenderFlags(args []string, w io.Writer) (*renderFlags, *flag.FlagSet, string, error) {
	f := &renderFlags{}
	fs := newFlagSet("render", w)
	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.output, "output", "o", "", "output HTML file (default: stdout)")
	fs.StringVar(&f.css, "css", "", "CSS file path or inline CSS")
	fs.BoolVarP(&f.layout, "layout", "l", false, "run auto-fit and arrow spacing in headless Chrome")
	fs.IntVar(&f.width, "width", 0, "canvas width in pixels")
	fs.IntVar(&f.height, "height", 0, "canvas height in pixels")

	if err := fs.Parse(args); err != nil {
		return nil, nil, "", fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() != 1 {
		return nil, nil, "", fmt.Errorf("%w: render takes exactly one input file", errUsage)
	}
	return f, fs, fs.Arg(0), nil
}
