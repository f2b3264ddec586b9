package imagegen

import (
	"errors"

	"github.com/feBittar/image-gen-nextjs-sub003/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrLayout         = errors.New("layout pass failed")

	// Input validation errors.
	ErrInvalidDimension = errors.New("invalid canvas dimension")
	ErrInvalidFont      = errors.New("invalid font asset")
	ErrInvalidLogo      = errors.New("invalid logo asset")
	ErrInvalidTextFit   = errors.New("invalid text-fit configuration")
	ErrInvalidArrow     = errors.New("invalid arrow configuration")

	// Errors raised while rendering, shared with the composition pipeline.
	ErrInvalidMode      = pipeline.ErrInvalidMode
	ErrInvalidClassName = pipeline.ErrInvalidClassName
	ErrTextRender       = pipeline.ErrTextRender
)
