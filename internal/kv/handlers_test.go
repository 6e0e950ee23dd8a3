package kv

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus/hooks/test"
)

func newTestRouter(store Store) http.Handler {
	log, _ := test.NewNullLogger()
	h := NewHandlers(store, log)
	r := chi.NewRouter()
	r.Get("/api/storage", h.List)
	r.Get("/api/storage/{key}", h.Get)
	r.Put("/api/storage/{key}", h.Set)
	r.Delete("/api/storage/{key}", h.Delete)
	return r
}

func TestHandlers_SetThenGet(t *testing.T) {
	store := NewMemoryStore()
	router := newTestRouter(store)

	body := `{"value":"#FF5500"}`
	req := httptest.NewRequest("PUT", "/api/storage/"+KeyOrbColor, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest("GET", "/api/storage/"+KeyOrbColor, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp GetResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Exists || resp.Value != "#FF5500" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHandlers_GetNotFound(t *testing.T) {
	router := newTestRouter(NewMemoryStore())

	req := httptest.NewRequest("GET", "/api/storage/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandlers_Delete(t *testing.T) {
	store := NewMemoryStore()
	store.Set(KeyOrbColor, []byte(`"#1E6FF7"`))
	router := newTestRouter(store)

	req := httptest.NewRequest("DELETE", "/api/storage/"+KeyOrbColor, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}

	req = httptest.NewRequest("DELETE", "/api/storage/"+KeyOrbColor, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestHandlers_List(t *testing.T) {
	store := NewMemoryStore()
	store.Set(KeyJobs, []byte(`[]`))
	store.Set(KeyInvoices, []byte(`{}`))
	router := newTestRouter(store)

	req := httptest.NewRequest("GET", "/api/storage", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp ListResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Count != 2 {
		t.Errorf("expected 2 keys, got %d", resp.Count)
	}
}
