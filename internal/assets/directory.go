package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Record describes one asset file available to templates.
type Record struct {
	Name      string `json:"name"`      // Filename without extension
	Filename  string `json:"filename"`  // Filename as stored
	URL       string `json:"url"`       // Public path, e.g. /fonts/Inter.ttf
	Extension string `json:"extension"` // Lower-case, with leading dot
	Size      int64  `json:"size,omitempty"`
	Family    string `json:"family,omitempty"` // Font family from the name table (TTF/OTF only)
	Width     int    `json:"width,omitempty"`  // Raster logo width in pixels
	Height    int    `json:"height,omitempty"` // Raster logo height in pixels
}

// Stored is the result of a successful upload.
type Stored struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Option configures a Directory.
type Option func(*Directory)

// WithMaxSize overrides the upload size limit for a kind.
// Panics if n <= 0 (programmer error).
func WithMaxSize(kind Kind, n int64) Option {
	if n <= 0 {
		panic("assets: WithMaxSize limit must be positive")
	}
	return func(d *Directory) {
		d.maxSize[kind] = n
	}
}

// WithMetadata enables reading font family names and logo dimensions while
// listing. Metadata failures never fail a listing.
func WithMetadata(enabled bool) Option {
	return func(d *Directory) {
		d.metadata = enabled
	}
}

// Directory lists and stores assets below a public root directory.
// It holds no state between calls beyond its configuration and is safe for
// concurrent use.
type Directory struct {
	root     string
	maxSize  map[Kind]int64
	metadata bool
}

// NewDirectory creates a Directory rooted at publicDir.
// The root need not exist yet; it is created on first upload.
// Returns ErrInvalidRoot if publicDir is empty or exists but is not a directory.
func NewDirectory(publicDir string, opts ...Option) (*Directory, error) {
	if publicDir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidRoot)
	}

	absPath, err := filepath.Abs(publicDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}

	// Resolve symlinks so containment checks compare real paths
	if realPath, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = realPath
	}

	if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidRoot, absPath)
	}

	d := &Directory{
		root: absPath,
		maxSize: map[Kind]int64{
			KindFonts: DefaultMaxFontSize,
			KindLogos: DefaultMaxLogoSize,
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Root returns the absolute public directory.
func (d *Directory) Root() string {
	return d.root
}

// Path returns the directory holding assets of the given kind.
func (d *Directory) Path(kind Kind) string {
	return filepath.Join(d.root, string(kind))
}

// MaxSize returns the upload size limit for kind.
func (d *Directory) MaxSize(kind Kind) int64 {
	return d.maxSize[kind]
}

// List returns the assets of kind whose extension is in the kind's
// allow-list, ordered by filename. A missing directory yields an empty,
// non-nil slice.
func (d *Directory) List(ctx context.Context, kind Kind) ([]Record, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}

	dir := d.Path(kind)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}

	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.Type().IsRegular() {
			continue
		}

		filename := entry.Name()
		ext := filepath.Ext(filename)
		if !kind.Allows(ext) {
			continue
		}

		rec := Record{
			Name:      strings.TrimSuffix(filename, ext),
			Filename:  filename,
			URL:       kind.PublicURL(filename),
			Extension: strings.ToLower(ext),
		}
		if info, err := entry.Info(); err == nil {
			rec.Size = info.Size()
		}
		if d.metadata {
			probeMetadata(&rec, filepath.Join(dir, filename))
		}
		records = append(records, rec)
	}

	return records, nil
}

// Upload stores the content of r as fileName in kind's directory,
// overwriting any file of the same name.
//
// size is the declared content length, or -1 if unknown. Filename, extension
// and declared size are validated before any filesystem access; an unknown or
// understated size is still capped while copying.
func (d *Directory) Upload(ctx context.Context, kind Kind, fileName string, r io.Reader, size int64) (*Stored, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	limit := d.MaxSize(kind)
	if err := ValidateUpload(kind, fileName, size, limit); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := d.Path(kind)
	target := filepath.Join(dir, fileName)
	if err := d.verifyPathContainment(dir, target); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", ErrWrite, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	written, err := io.Copy(tmp, io.LimitReader(r, limit+1))
	if err != nil {
		_ = tmp.Close()
		cleanup()
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if written > limit {
		_ = tmp.Close()
		cleanup()
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, limit)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		cleanup()
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		cleanup()
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}

	return &Stored{
		Filename: fileName,
		URL:      kind.PublicURL(fileName),
	}, nil
}

// Delete removes fileName from kind's directory.
// Returns ErrAssetNotFound if the file does not exist.
func (d *Directory) Delete(ctx context.Context, kind Kind, fileName string) error {
	if _, err := ParseKind(string(kind)); err != nil {
		return err
	}
	if err := ValidateFilename(fileName); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := d.Path(kind)
	target := filepath.Join(dir, fileName)
	if err := d.verifyPathContainment(dir, target); err != nil {
		return err
	}

	if err := os.Remove(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s/%s", ErrAssetNotFound, kind, fileName)
		}
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// verifyPathContainment ensures target resolves to a path inside dir.
// dir is resolved first and the base name joined onto it, so a symlinked
// root compares equal whether or not its subdirectory exists yet. The full
// target is resolved only when it already exists so an existing link cannot
// redirect a write outside the asset directory.
func (d *Directory) verifyPathContainment(dir, target string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}
	if realDir, err := filepath.EvalSymlinks(absDir); err == nil {
		absDir = realDir
	}

	base := filepath.Base(target)
	if base == "." || base == ".." || filepath.Join(dir, base) != filepath.Clean(target) {
		return fmt.Errorf("%w: path escapes %s", ErrPathTraversal, absDir)
	}

	absTarget := filepath.Join(absDir, base)
	if _, err := os.Lstat(absTarget); err == nil {
		realPath, err := filepath.EvalSymlinks(absTarget)
		if err != nil {
			return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
		}
		absTarget = realPath
	}

	if !strings.HasPrefix(absTarget, absDir+string(filepath.Separator)) {
		return fmt.Errorf("%w: path escapes %s", ErrPathTraversal, absDir)
	}
	return nil
}
