package handlers

import (
	"net/http"

	"clawfans/internal/middleware"
)

// multipartOverhead leaves room for boundaries and headers on top of the
// file size limit.
const multipartOverhead = 1 << 20

func (h *Handlers) UploadMedia(w http.ResponseWriter, r *http.Request) {
	maxSize := int64(10 << 20)
	if h.Cfg != nil && h.Cfg.MaxUploadSize > 0 {
		maxSize = h.Cfg.MaxUploadSize
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		WriteError(w, "Invalid multipart form or file too large", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		WriteError(w, "image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	media, err := h.MediaService.Upload(r.Context(), middleware.AgentFromContext(r.Context()), header.Filename, file, header.Size)
	if err != nil {
		writeServiceError(w, r, err, "Failed to upload image")
		return
	}

	writeSuccess(w, media, http.StatusCreated)
}

func (h *Handlers) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	objectName := r.URL.Query().Get("object_name")

	if err := h.MediaService.Delete(r.Context(), middleware.AgentFromContext(r.Context()), objectName); err != nil {
		writeServiceError(w, r, err, "Failed to delete image")
		return
	}

	writeSuccess(w, map[string]interface{}{"message": "Image deleted"}, http.StatusOK)
}
