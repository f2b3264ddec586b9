package main

import (
	"context"
	"errors"
	"os"
	"syscall"

	imagegen "github.com/feBittar/image-gen-nextjs-sub003"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/assets"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/config"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/hints"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/logging"
)

// Exit codes for the imagegen CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or input
	ExitIO      = 3 // File not found, permission denied, address in use
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, imagegen.ErrBrowserConnect) ||
		errors.Is(err, imagegen.ErrPageCreate) ||
		errors.Is(err, imagegen.ErrPageLoad) ||
		errors.Is(err, imagegen.ErrLayout) {
		return ExitBrowser
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, errUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, logging.ErrInvalidLevel) ||
		errors.Is(err, errInputParse) ||
		errors.Is(err, assets.ErrAssetNotFound) ||
		errors.Is(err, assets.ErrInvalidRoot) ||
		errors.Is(err, imagegen.ErrInvalidDimension) ||
		errors.Is(err, imagegen.ErrInvalidFont) ||
		errors.Is(err, imagegen.ErrInvalidLogo) ||
		errors.Is(err, imagegen.ErrInvalidTextFit) ||
		errors.Is(err, imagegen.ErrInvalidArrow) ||
		errors.Is(err, imagegen.ErrInvalidMode) ||
		errors.Is(err, imagegen.ErrInvalidClassName) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, syscall.EADDRINUSE) ||
		errors.Is(err, errReadInput) ||
		errors.Is(err, errReadCSS) ||
		errors.Is(err, errWriteOutput) {
		return ExitIO
	}

	return ExitGeneral
}

// hintFor returns the actionable hint appended to an error message, if any.
// Hints that need call-site context are attached where the error is wrapped.
func hintFor(err error) string {
	switch {
	case errors.Is(err, imagegen.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, errWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, syscall.EADDRINUSE):
		return hints.ForAddressInUse()
	}
	return ""
}
