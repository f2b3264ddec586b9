package imagegen_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	imagegen "github.com/feBittar/image-gen-nextjs-sub003"
)

// Example composes a page without the browser layout pass.
// Set Layout to true to run text auto-fit and arrow spacing (requires Chrome).
func Example() {
	gen, err := imagegen.NewGenerator()
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer gen.Close()

	result, err := gen.Generate(context.Background(), imagegen.Input{
		Title: imagegen.TextModule{Enabled: true, Content: "Ship **faster**"},
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	if strings.Contains(string(result.HTML), `<div class="text-1">Ship <strong>faster</strong></div>`) {
		fmt.Println("page composed")
	}
	// Output: page composed
}

// Example_withAssets references an uploaded font and logo by filename.
func Example_withAssets() {
	gen, err := imagegen.NewGenerator(imagegen.WithBaseURL("https://cdn.example.com"))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer gen.Close()

	result, err := gen.Generate(context.Background(), imagegen.Input{
		Font: "Inter.woff2",
		Logo: "brand.svg",
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	page := string(result.HTML)
	fmt.Println(strings.Contains(page, `url("https://cdn.example.com/fonts/Inter.woff2")`))
	fmt.Println(strings.Contains(page, `src="https://cdn.example.com/logos/brand.svg"`))
	// Output:
	// true
	// true
}

func ExampleComposeContent() {
	html := imagegen.ComposeContent(imagegen.ContentModule{
		Enabled: true,
		Mode:    imagegen.ModeSingle,
		URL:     "/uploads/hero.png",
	}, "https://cdn.example.com/dashboard")

	fmt.Println(html)
	// Output: <div class="content-module content-module--single"><img class="content-image" src="https://cdn.example.com/uploads/hero.png" alt=""></div>
}

func ExampleGeneratorPool() {
	pool := imagegen.NewGeneratorPool(2)

	titles := []string{"First post", "Second post"}
	results := make(chan bool, len(titles))
	var wg sync.WaitGroup

	for _, title := range titles {
		wg.Add(1)
		go func(title string) {
			defer wg.Done()

			res, err := pool.Generate(context.Background(), imagegen.Input{
				Title: imagegen.TextModule{Enabled: true, Content: title},
			})
			results <- err == nil && strings.Contains(string(res.HTML), title)
		}(title)
	}

	// Wait for all goroutines to finish before closing pool
	wg.Wait()
	pool.Close()

	success := 0
	for range titles {
		if <-results {
			success++
		}
	}
	fmt.Printf("Composed %d pages\n", success)
	// Output: Composed 2 pages
}
