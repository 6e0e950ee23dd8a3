package kv

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// Handlers exposes raw storage access over HTTP.
type Handlers struct {
	store Store
	log   logrus.FieldLogger
}

func NewHandlers(store Store, log logrus.FieldLogger) *Handlers {
	return &Handlers{store: store, log: log}
}

type GetResponse struct {
	Key    string `json:"key"`
	Value  any    `json:"value"`
	Exists bool   `json:"exists"`
}

func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	value, err := h.store.Get(key)
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, GetResponse{Key: key})
		return
	}
	if err != nil {
		h.log.WithError(err).WithField("key", key).Error("read storage key")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read key"})
		return
	}

	var jsonValue any
	if err := json.Unmarshal(value, &jsonValue); err != nil {
		// If not JSON, return as string
		jsonValue = string(value)
	}

	writeJSON(w, http.StatusOK, GetResponse{
		Key:    key,
		Value:  jsonValue,
		Exists: true,
	})
}

type SetRequest struct {
	Value any `json:"value"`
}

func (h *Handlers) Set(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req SetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := SetJSON(h.store, key, req.Value); err != nil {
		h.log.WithError(err).WithField("key", key).Error("write storage key")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to write key"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if _, err := h.store.Get(key); errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "key not found"})
		return
	}

	if err := h.store.Delete(key); err != nil {
		h.log.WithError(err).WithField("key", key).Error("delete storage key")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete key"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type ListResponse struct {
	Keys  []string `json:"keys"`
	Count int      `json:"count"`
}

func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")

	keys, err := h.store.Keys(prefix)
	if err != nil {
		h.log.WithError(err).Error("list storage keys")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list keys"})
		return
	}
	if keys == nil {
		keys = []string{}
	}

	writeJSON(w, http.StatusOK, ListResponse{
		Keys:  keys,
		Count: len(keys),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
