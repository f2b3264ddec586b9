// Package assets lists and stores the font and logo files that templates
// draw on when composing social-media graphics.
//
// # Directory Structure
//
// Assets live under a public root, one directory per kind:
//
//	{publicDir}/
//	├── fonts/
//	│   └── {name}.ttf|.otf|.woff|.woff2
//	└── logos/
//	    └── {name}.svg|.png|.jpg|.jpeg|.webp|.gif
//
// Every file is served under /{kind}/{filename}, which is the URL stored in
// each Record.
//
// # Listing
//
// Directory.List scans the kind's directory on every call; there is no
// persisted index. A missing directory lists as empty rather than failing.
//
// # Uploads
//
// Directory.Upload validates the filename, extension and size before touching
// the filesystem. Files are written to a temporary file in the target
// directory and renamed into place, so concurrent uploads of the same name
// resolve to whichever rename lands last.
//
// # Security
//
// Filenames are validated to reject path separators and traversal sequences,
// and resolved paths are checked to stay within the kind's directory.
package assets
