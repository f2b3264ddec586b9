// Package imagegen composes social-media image templates as HTML pages and
// lays them out in headless Chrome.
//
// # Quick Start
//
// Create a generator, compose a page, and close when done:
//
//	gen, err := imagegen.NewGenerator()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gen.Close()
//
//	result, err := gen.Generate(ctx, imagegen.Input{
//	    Title: imagegen.TextModule{Enabled: true, Content: "Ship **faster**"},
//	    Font:  "Inter.ttf",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("post.html", result.HTML, 0644)
//
// # Composition Pipeline
//
// A page is built in these stages:
//
//  1. Input validation (canvas size, asset filenames, layout configuration)
//  2. Text modules to HTML via Goldmark (inline Markdown, raw HTML escaped)
//  3. Content module fragment (single image or side-by-side comparison)
//  4. Page template, relative URLs resolved against the base URL
//  5. CSS injection: base layout, @font-face for the selected font, custom CSS
//  6. Optional layout pass in headless Chrome (go-rod)
//
// # Layout Pass
//
// With Input.Layout set, the page is loaded at canvas size, web fonts are
// awaited, and two routines adjust the live DOM:
//
//   - Text auto-fit shrinks each target's font size until its height is at
//     most 1.5 line heights (FitConfig).
//   - Title-arrow spacing grows the container's bottom padding until the
//     arrow clears the title by the required gap (ArrowConfig).
//
// The adjusted DOM is returned in Result.HTML and what changed in
// Result.Layout. Measurement problems are logged and never fail a pass.
//
// # Parallel Processing
//
// Each Generator owns one browser. GeneratorPool bounds how many run at once:
//
//	pool := imagegen.NewGeneratorPool(imagegen.ResolvePoolSize(0))
//	defer pool.Close()
//
//	result, err := pool.Generate(ctx, input)
//
// # Error Handling
//
// Errors wrap sentinels that can be checked with errors.Is:
//
//	if errors.Is(err, imagegen.ErrBrowserConnect) {
//	    // Chrome could not be started
//	}
//
// Validation sentinels: ErrInvalidDimension, ErrInvalidFont, ErrInvalidLogo,
// ErrInvalidTextFit, ErrInvalidArrow, ErrInvalidClassName, ErrInvalidMode.
// Browser sentinels: ErrBrowserConnect, ErrPageCreate, ErrPageLoad, ErrLayout.
//
// # Browser Requirements
//
// Only the layout pass needs Chrome/Chromium. The go-rod library downloads a
// managed Chromium on first use (~/.cache/rod/browser/) unless
// ROD_BROWSER_BIN names an installed binary. Set ROD_NO_SANDBOX=1 in
// containers and CI.
package imagegen
