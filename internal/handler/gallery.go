package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wastenexus/wastenexus/internal/auth"
	"github.com/wastenexus/wastenexus/internal/model"
	"github.com/wastenexus/wastenexus/internal/storage"
	"github.com/wastenexus/wastenexus/internal/store"
)

type GalleryHandler struct {
	gallery *store.GalleryStore
	media   *storage.Media
	logger  *slog.Logger
}

func NewGalleryHandler(gallery *store.GalleryStore, media *storage.Media, logger *slog.Logger) *GalleryHandler {
	return &GalleryHandler{gallery: gallery, media: media, logger: logger}
}

// List returns the public gallery of approved photos.
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.gallery.ListApproved()
	if err != nil {
		h.logger.Error("list gallery", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list gallery")
		return
	}
	if items == nil {
		items = []model.GalleryItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"gallery": items})
}

// Submit uploads a photo that goes through admin review before appearing in
// the public gallery.
func (h *GalleryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	if h.media == nil || !h.media.Enabled() {
		writeError(w, http.StatusBadRequest, "photo uploads are not enabled")
		return
	}

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	caption := strings.TrimSpace(r.FormValue("caption"))
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "photo is required")
		return
	}
	defer file.Close()

	key := storage.NewKey("gallery", header.Filename)
	if err := h.media.Upload(r.Context(), key, file, header.Size, header.Header.Get("Content-Type")); err != nil {
		h.logger.Error("upload gallery photo", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store photo")
		return
	}

	item, err := h.gallery.Create(userID, caption, key)
	if err != nil {
		h.logger.Error("create gallery item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to submit photo")
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// Photo streams a gallery photo. Unapproved photos are only visible to their
// owner and admins.
func (h *GalleryHandler) Photo(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := h.gallery.GetByID(id)
	if err != nil {
		h.logger.Error("get gallery item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get photo")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "photo not found")
		return
	}

	if item.Status != model.GalleryApproved {
		ac, ok := auth.FromContext(r.Context())
		if !ok || (ac.UserID != item.UserID && ac.Role != model.RoleAdmin) {
			writeError(w, http.StatusNotFound, "photo not found")
			return
		}
	}

	serveMedia(w, r, h.media, item.PhotoKey, h.logger)
}

// ListPending returns items awaiting review. Admin only.
func (h *GalleryHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	items, err := h.gallery.ListPending()
	if err != nil {
		h.logger.Error("list pending gallery", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list gallery")
		return
	}
	if items == nil {
		items = []model.GalleryItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"gallery": items})
}

// Review approves or rejects a pending item. Admin only.
func (h *GalleryHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	status := model.GalleryStatus(req.Status)
	if status != model.GalleryApproved && status != model.GalleryRejected {
		writeError(w, http.StatusBadRequest, "status must be approved or rejected")
		return
	}

	item, err := h.gallery.GetByID(id)
	if err != nil {
		h.logger.Error("get gallery item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to review photo")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "photo not found")
		return
	}

	ok, err := h.gallery.Review(id, status)
	if err != nil {
		h.logger.Error("review gallery item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to review photo")
		return
	}
	if !ok {
		writeError(w, http.StatusConflict, "photo already reviewed")
		return
	}

	item, _ = h.gallery.GetByID(id)
	writeJSON(w, http.StatusOK, item)
}

// serveMedia streams one object from media storage to the response.
func serveMedia(w http.ResponseWriter, r *http.Request, media *storage.Media, key string, logger *slog.Logger) {
	if media == nil || !media.Enabled() {
		writeError(w, http.StatusNotFound, "photo not found")
		return
	}

	rc, contentType, err := media.Download(r.Context(), key)
	if err != nil {
		logger.Error("download media", "error", err, "key", key)
		writeError(w, http.StatusNotFound, "photo not found")
		return
	}
	defer rc.Close()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	io.Copy(w, rc)
}
