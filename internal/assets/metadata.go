package assets

import (
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"strings"

	"golang.org/x/image/font/sfnt"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// probeMetadata fills the optional metadata fields of rec from the file at
// path. Unreadable or unparseable files leave the fields empty.
func probeMetadata(rec *Record, path string) {
	switch rec.Extension {
	case ".ttf", ".otf":
		if family, err := fontFamily(path); err == nil {
			rec.Family = family
		}
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		if w, h, err := imageSize(path); err == nil {
			rec.Width, rec.Height = w, h
		}
	}
}

// fontFamily reads the family name from a TTF or OTF name table.
// Prefers the typographic family (name ID 16) and falls back to ID 1.
func fontFamily(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path built from a listed directory entry
	if err != nil {
		return "", err
	}

	f, err := sfnt.Parse(data)
	if err != nil {
		return "", err
	}

	var buf sfnt.Buffer
	if name, err := f.Name(&buf, sfnt.NameIDTypographicFamily); err == nil && strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name), nil
	}
	name, err := f.Name(&buf, sfnt.NameIDFamily)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(name), nil
}

// imageSize decodes only the header of a raster image.
func imageSize(path string) (int, int, error) {
	f, err := os.Open(path) // #nosec G304 -- path built from a listed directory entry
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
