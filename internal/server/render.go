package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	imagegen "github.com/feBittar/image-gen-nextjs-sub003"
)

// contentRequest is the body of POST /render/content.
type contentRequest struct {
	imagegen.ContentModule
	BaseURL string `json:"baseUrl,omitempty"`
}

type contentResponse struct {
	Success bool   `json:"success"`
	HTML    string `json:"html"`
}

type pageResponse struct {
	Success bool                   `json:"success"`
	HTML    string                 `json:"html"`
	Layout  *imagegen.LayoutReport `json:"layout,omitempty"`
}

// decodeJSON reads a single JSON value from the size-limited body.
// Unknown fields are rejected.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodySize)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("%w: body exceeds %d bytes", errBadRequest, s.opts.MaxBodySize)
		}
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after JSON body", errBadRequest)
	}
	return nil
}

// handleRenderContent answers POST /render/content with the content module
// fragment. The mode is validated strictly only when ?strict=true.
func (s *Server) handleRenderContent(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if strict, _ := strconv.ParseBool(r.URL.Query().Get("strict")); strict {
		if err := req.ValidateMode(); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	baseURL := req.BaseURL
	if baseURL == "" {
		baseURL = s.opts.BaseURL
	}

	writeJSON(w, http.StatusOK, contentResponse{
		Success: true,
		HTML:    imagegen.ComposeContent(req.ContentModule, baseURL),
	})
}

// handleRenderPage answers POST /render/page with the composed page and,
// when requested, the layout report.
func (s *Server) handleRenderPage(w http.ResponseWriter, r *http.Request) {
	if s.renderer == nil {
		s.writeError(w, r, errNoRenderer)
		return
	}

	var input imagegen.Input
	if err := s.decodeJSON(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.renderer.Generate(r.Context(), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pageResponse{
		Success: true,
		HTML:    string(result.HTML),
		Layout:  result.Layout,
	})
}
