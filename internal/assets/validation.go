package assets

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ValidateFilename checks that a filename is safe to store inside an asset
// directory. Returns ErrInvalidFilename if the name is empty, is a dot entry,
// contains path separators or control characters, or has nothing before its
// extension.
func ValidateFilename(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidFilename)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("%w: %q contains control characters", ErrInvalidFilename, name)
		}
	}
	if strings.TrimSuffix(name, filepath.Ext(name)) == "" {
		return fmt.Errorf("%w: %q has no base name", ErrInvalidFilename, name)
	}
	return nil
}

// ValidateUpload runs every pre-write check for an upload in order:
// filename, extension, then size against limit. A negative size means the
// size is not known up front and is enforced while copying instead.
func ValidateUpload(kind Kind, name string, size, limit int64) error {
	if err := ValidateFilename(name); err != nil {
		return err
	}
	if ext := filepath.Ext(name); !kind.Allows(ext) {
		return fmt.Errorf("%w: %q (allowed: %s)", ErrInvalidExtension, ext, strings.Join(kind.Extensions(), ", "))
	}
	if size > limit {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, size, limit)
	}
	return nil
}

func escapePathSegment(s string) string {
	return url.PathEscape(s)
}
