package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	imagegen "github.com/feBittar/image-gen-nextjs-sub003"
	"github.com/feBittar/image-gen-nextjs-sub003/internal/assets"
)

// errBadRequest marks request decoding failures.
var errBadRequest = errors.New("bad request")

// errNoRenderer is returned when the server was built without a renderer.
var errNoRenderer = errors.New("rendering is not available")

// errorBody is the JSON shape of every failed response.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeJSON writes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status and writes the error body.
// 5xx errors are also logged with the request id.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID(r)),
			zap.Error(err),
		)
	}
	writeJSON(w, status, errorBody{Success: false, Error: err.Error()})
}

// statusFor maps sentinel errors to HTTP status codes.
// Oversize uploads are a client error (400), never 413.
func statusFor(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, errNoRenderer):
		return http.StatusServiceUnavailable
	case errors.Is(err, assets.ErrAssetNotFound),
		errors.Is(err, assets.ErrUnknownKind):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.As(err, &maxBytesErr),
		errors.Is(err, assets.ErrInvalidExtension),
		errors.Is(err, assets.ErrFileTooLarge),
		errors.Is(err, assets.ErrInvalidFilename),
		errors.Is(err, assets.ErrPathTraversal),
		errors.Is(err, imagegen.ErrInvalidMode),
		errors.Is(err, imagegen.ErrInvalidClassName),
		errors.Is(err, imagegen.ErrInvalidDimension),
		errors.Is(err, imagegen.ErrInvalidFont),
		errors.Is(err, imagegen.ErrInvalidLogo),
		errors.Is(err, imagegen.ErrInvalidTextFit),
		errors.Is(err, imagegen.ErrInvalidArrow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
