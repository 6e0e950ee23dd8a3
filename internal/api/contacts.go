package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/trego/provider/internal/contact"
	"github.com/trego/provider/internal/validate"
)

type ContactHandlers struct {
	store *contact.Store
	log   logrus.FieldLogger
}

func NewContactHandlers(store *contact.Store, log logrus.FieldLogger) *ContactHandlers {
	return &ContactHandlers{store: store, log: log}
}

type ContactListResponse struct {
	Contacts []contact.Contact `json:"contacts"`
	Count    int               `json:"count"`
}

func (h *ContactHandlers) List(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.store.List(r.URL.Query().Get("q"))
	if err != nil {
		h.log.WithError(err).Error("list contacts")
		writeError(w, http.StatusInternalServerError, "failed to load contacts")
		return
	}
	writeJSON(w, http.StatusOK, ContactListResponse{Contacts: contacts, Count: len(contacts)})
}

func (h *ContactHandlers) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "failed to load contact")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ContactHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var c contact.Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c.ID = ""
	if err := h.store.Save(&c); err != nil {
		h.writeError(w, err, "failed to save contact")
		return
	}
	h.log.WithField("contact_id", c.ID).Info("contact created")
	writeJSON(w, http.StatusCreated, c)
}

func (h *ContactHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.Get(id); err != nil {
		h.writeError(w, err, "failed to load contact")
		return
	}
	var c contact.Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c.ID = id
	if err := h.store.Save(&c); err != nil {
		h.writeError(w, err, "failed to save contact")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *ContactHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err, "failed to delete contact")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContactHandlers) writeError(w http.ResponseWriter, err error, msg string) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, verr)
	case errors.Is(err, contact.ErrNotFound):
		writeError(w, http.StatusNotFound, "contact not found")
	default:
		h.log.WithError(err).Error(msg)
		writeError(w, http.StatusInternalServerError, msg)
	}
}
