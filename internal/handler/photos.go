package handler

import (
	"net/http"

	"github.com/mkarlsen/triplog/internal/blob"
)

// maxPhotoUploadBytes bounds one multipart upload request.
const maxPhotoUploadBytes = 32 << 20

// UploadPhotos handles POST /photos: a multipart form whose "photos" parts
// are uploaded to blob storage. The batch is fail-fast — the first failed
// part aborts the request and nothing partial is reported as success.
func (s *Server) UploadPhotos(w http.ResponseWriter, r *http.Request) {
	if s.photos == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: errorDetail{Code: "unavailable", Message: "photo storage is not configured"}})
		return
	}
	id, ok := s.authn.Current()
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: errorDetail{Code: "not_authenticated", Message: "sign in to upload photos"}})
		return
	}

	if err := r.ParseMultipartForm(maxPhotoUploadBytes); err != nil {
		writeBadRequest(w, "invalid multipart form")
		return
	}
	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		writeBadRequest(w, "at least one photo is required")
		return
	}

	refs := make([]blob.Ref, 0, len(files))
	opened := make([]interface{ Close() error }, 0, len(files))
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeBadRequest(w, "unreadable photo part")
			return
		}
		opened = append(opened, f)
		refs = append(refs, blob.Ref{Name: fh.Filename, Body: f})
	}

	urls, err := s.photos.UploadMany(r.Context(), id.UID, refs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string][]string{"urls": urls})
}
