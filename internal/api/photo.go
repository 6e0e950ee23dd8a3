package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/trego/provider/internal/media"
)

const (
	profilePhotoName = "profile/photo"
	profilePhotoURL  = "/api/profile/photo"
)

func (h *Handlers) UploadProfilePhoto(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, media.MaxImageSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	contentType, err := h.media.PutImage(profilePhotoName, body)
	switch {
	case errors.Is(err, media.ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case errors.Is(err, media.ErrNotImage):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	case err != nil:
		h.log.WithError(err).Error("store profile photo")
		writeError(w, http.StatusInternalServerError, "failed to store photo")
		return
	}

	if err := h.setProfilePhoto(profilePhotoURL); err != nil {
		h.log.WithError(err).Error("link profile photo")
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"path":        profilePhotoURL,
		"contentType": contentType,
		"size":        len(body),
	})
}

func (h *Handlers) GetProfilePhoto(w http.ResponseWriter, r *http.Request) {
	content, err := h.media.Get(profilePhotoName)
	if errors.Is(err, media.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.log.WithError(err).Error("read profile photo")
		writeError(w, http.StatusInternalServerError, "failed to read photo")
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(content))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

func (h *Handlers) DeleteProfilePhoto(w http.ResponseWriter, r *http.Request) {
	err := h.media.Delete(profilePhotoName)
	if errors.Is(err, media.ErrNotFound) {
		writeError(w, http.StatusNotFound, "photo not found")
		return
	}
	if err != nil {
		h.log.WithError(err).Error("delete profile photo")
		writeError(w, http.StatusInternalServerError, "failed to delete photo")
		return
	}
	if err := h.setProfilePhoto(""); err != nil {
		h.log.WithError(err).Error("unlink profile photo")
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// setProfilePhoto records the photo URL on a stored profile. Without a profile
// the photo is kept and linked when onboarding saves one.
func (h *Handlers) setProfilePhoto(url string) error {
	p, err := h.profiles.Profile()
	if err != nil || p == nil {
		return err
	}
	p.ProfilePhoto = url
	return h.profiles.SaveProfile(p)
}
