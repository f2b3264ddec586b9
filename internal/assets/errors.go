package assets

import "errors"

// Sentinel errors for asset operations.
var (
	// ErrUnknownKind indicates an asset kind other than fonts or logos.
	ErrUnknownKind = errors.New("unknown asset kind")

	// ErrInvalidExtension indicates the file extension is not in the kind's allow-list.
	ErrInvalidExtension = errors.New("invalid file extension")

	// ErrFileTooLarge indicates the upload exceeds the kind's size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrInvalidFilename indicates the filename is empty or contains path
	// separators, traversal sequences or control characters.
	ErrInvalidFilename = errors.New("invalid filename")

	// ErrAssetNotFound indicates the requested asset file does not exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrWrite indicates a filesystem failure while storing or removing an asset.
	ErrWrite = errors.New("failed to write asset")

	// ErrRead indicates an I/O error while scanning an asset directory.
	ErrRead = errors.New("failed to read asset directory")

	// ErrPathTraversal indicates an attempt to access files outside the kind's directory.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrInvalidRoot indicates the configured public directory cannot be used.
	ErrInvalidRoot = errors.New("invalid public directory")
)
