package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/feBittar/image-gen-nextjs-sub003/internal/assets"
)

// multipartMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const multipartMemory = 1 << 20

// multipartOverhead allows for boundaries and headers around the file part.
const multipartOverhead = 64 << 10

type uploadResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type deleteResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
}

func (s *Server) kindParam(r *http.Request) (assets.Kind, error) {
	return assets.ParseKind(chi.URLParam(r, "kind"))
}

// handleListAssets answers GET /assets/{kind} with {success, <kind>: [...]}.
func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	kind, err := s.kindParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	records, err := s.dir.List(r.Context(), kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		string(kind): records,
	})
}

// handleUploadAsset answers POST /assets/{kind}. The file is read from the
// multipart field named after the kind ("font" or "logo").
func (s *Server) handleUploadAsset(w http.ResponseWriter, r *http.Request) {
	kind, err := s.kindParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	limit := s.dir.MaxSize(kind)
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.writeError(w, r, fmt.Errorf("%w: more than %d bytes", assets.ErrFileTooLarge, limit))
			return
		}
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(kind.FormField())
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: no file provided in field %q", errBadRequest, kind.FormField()))
		return
	}
	defer func() { _ = file.Close() }()

	stored, err := s.dir.Upload(r.Context(), kind, header.Filename, file, header.Size)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Success:  true,
		Filename: stored.Filename,
		URL:      stored.URL,
	})
}

// handleDeleteAsset answers DELETE /assets/{kind}/{filename}.
func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	kind, err := s.kindParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	filename := chi.URLParam(r, "filename")
	if err := s.dir.Delete(r.Context(), kind, filename); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{Success: true, Filename: filename})
}

// assetFS serves only regular files whose extension the kind allows.
// Directories and dotfiles (such as in-flight uploads) are reported missing.
type assetFS struct {
	dir  http.FileSystem
	kind assets.Kind
}

func (a assetFS) Open(name string) (http.File, error) {
	base := path.Base(name)
	if base == "." || base == "/" || base[0] == '.' || !a.kind.Allows(path.Ext(base)) {
		return nil, fs.ErrNotExist
	}

	f, err := a.dir.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
