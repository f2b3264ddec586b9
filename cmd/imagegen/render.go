package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	imagegen "github.com/feBittar/image-gen-nextjs-sub003"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/assets"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/config"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/fileutil"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/hints"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/yamlutil"
)

// filePermissions is rw-r--r--: owner read+write, others read.
const filePermissions = 0o644

// Sentinel errors for the render command.
var (
	errReadInput   = errors.New("failed to read input file")
	errInputParse  = errors.New("failed to parse input file")
	errReadCSS     = errors.New("failed to read CSS file")
	errWriteOutput = errors.New("failed to write output file")
)

// pageGenerator is the slice of *imagegen.Generator the render command uses.
type pageGenerator interface {
	Generate(ctx context.Context, input imagegen.Input) (*imagegen.Result, error)
	Close() error
}

// newPageGenerator is replaced in tests to avoid launching Chrome.
var newPageGenerator = func(opts ...imagegen.Option) (pageGenerator, error) {
	return imagegen.NewGenerator(opts...)
}

// runRender composes one page from a YAML or JSON input file and writes the
// HTML to --output or stdout.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, fs, inputPath, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(fs, &flags.common)
	if err != nil {
		return err
	}

	input, err := readInput(inputPath, env.Stdin)
	if err != nil {
		return err
	}

	if flags.css != "" {
		css, err := resolveCSS(flags.css)
		if err != nil {
			return err
		}
		input.CSS = joinCSS(input.CSS, css)
	}
	if fs.Changed("width") {
		input.Width = flags.width
	}
	if fs.Changed("height") {
		input.Height = flags.height
	}
	if flags.layout {
		input.Layout = true
	}

	if err := checkAssets(ctx, cfg, input); err != nil {
		return err
	}

	logger := newCLILogger(env.Stderr, flags.common.verbose)
	defer func() { _ = logger.Sync() }()

	gen, err := newPageGenerator(generatorOptions(cfg, logger)...)
	if err != nil {
		return err
	}
	defer func() { _ = gen.Close() }()

	result, err := gen.Generate(ctx, *input)
	if err != nil {
		return err
	}

	if flags.common.verbose && result.Layout != nil {
		printLayoutReport(env.Stderr, result.Layout)
	}

	return writeOutput(flags.output, result.HTML, env.Stdout)
}

// readInput decodes the page input from path, or from stdin when path is "-".
// JSON input is accepted since JSON is a YAML subset. Unknown keys are errors.
func readInput(path string, stdin io.Reader) (*imagegen.Input, error) {
	input := &imagegen.Input{}

	if path == "-" {
		data, err := io.ReadAll(io.LimitReader(stdin, int64(yamlutil.MaxInputSize)+1))
		if err != nil {
			return nil, fmt.Errorf("%w: stdin: %v", errReadInput, err)
		}
		if err := yamlutil.UnmarshalStrict(data, input); err != nil {
			return nil, fmt.Errorf("%w: stdin: %v", errInputParse, err)
		}
		return input, nil
	}

	if err := yamlutil.ReadFileStrict(path, input); err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("%w: %w", errReadInput, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", errInputParse, path, err)
	}
	return input, nil
}

// resolveCSS returns inline CSS as-is or the content of a CSS file.
func resolveCSS(value string) (string, error) {
	if !fileutil.IsFilePath(value) {
		return value, nil
	}
	data, err := os.ReadFile(value)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errReadCSS, err)
	}
	return string(data), nil
}

func joinCSS(a, b string) string {
	if a == "" {
		return b
	}
	return a + "\n" + b
}

// checkAssets verifies the selected font and logo exist in the public
// directory. The error lists the files that do exist.
func checkAssets(ctx context.Context, cfg *config.Config, input *imagegen.Input) error {
	if input.Font == "" && input.Logo == "" {
		return nil
	}

	dir, err := assets.NewDirectory(cfg.Assets.PublicDir)
	if err != nil {
		return err
	}

	for _, check := range []struct {
		kind assets.Kind
		name string
	}{
		{assets.KindFonts, input.Font},
		{assets.KindLogos, input.Logo},
	} {
		if check.name == "" || fileutil.FileExists(filepath.Join(dir.Path(check.kind), check.name)) {
			continue
		}

		records, err := dir.List(ctx, check.kind)
		if err != nil {
			return err
		}
		available := make([]string, len(records))
		for i, r := range records {
			available[i] = r.Filename
		}
		return fmt.Errorf("%w: %s/%s%s", assets.ErrAssetNotFound, check.kind, check.name, hints.ForAssetNotFound(available))
	}
	return nil
}

// writeOutput writes html to path, or to stdout when path is empty.
func writeOutput(path string, html []byte, stdout io.Writer) error {
	if path == "" {
		if _, err := stdout.Write(html); err != nil {
			return fmt.Errorf("%w: stdout: %v", errWriteOutput, err)
		}
		return nil
	}
	if err := os.WriteFile(path, html, filePermissions); err != nil {
		return fmt.Errorf("%w: %w", errWriteOutput, err)
	}
	return nil
}

// printLayoutReport summarizes what the layout pass changed.
func printLayoutReport(w io.Writer, r *imagegen.LayoutReport) {
	for _, f := range r.Fit {
		fmt.Fprintf(w, "auto-fit %s: %gpx -> %gpx after %d attempts (%s)\n",
			f.Selector, f.InitialFontSize, f.FontSize, f.Attempts, f.Outcome)
	}
	if a := r.Arrow; a != nil {
		if a.Adjusted {
			fmt.Fprintf(w, "arrow: gap %gpx, padding %gpx -> %gpx\n", a.Gap, a.PaddingBefore, a.PaddingAfter)
		} else {
			fmt.Fprintf(w, "arrow: unchanged (%s)\n", a.Skipped)
		}
	}
}
