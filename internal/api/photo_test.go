package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngData = append([]byte("\x89PNG\x0D\x0A\x1A\x0A"), bytes.Repeat([]byte{0}, 16)...)

func (s *testServer) upload(body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest("PUT", "/api/profile/photo", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestProfilePhoto_LinkedToProfile(t *testing.T) {
	s := newTestServer(t)
	rec := s.do("PUT", "/api/profile", `{"firstName":"Joana","lastName":"Ferreira"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 13.0, decode(t, rec)["completion"])

	rec = s.upload(pngData)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", decode(t, rec)["contentType"])

	rec = s.do("GET", "/api/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, 25.0, resp["completion"])
	assert.Equal(t, "/api/profile/photo", resp["profile"].(map[string]any)["profilePhoto"])

	rec = s.do("GET", "/api/profile/photo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngData, rec.Body.Bytes())

	rec = s.do("DELETE", "/api/profile/photo", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do("GET", "/api/profile", "")
	assert.NotContains(t, decode(t, rec)["profile"], "profilePhoto")

	rec = s.do("DELETE", "/api/profile/photo", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfilePhoto_BeforeProfile(t *testing.T) {
	s := newTestServer(t)

	rec := s.upload(pngData)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do("PUT", "/api/profile", `{"firstName":"Joana"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/api/profile/photo", decode(t, rec)["profile"].(map[string]any)["profilePhoto"])
}

func TestProfilePhoto_RejectsNonImage(t *testing.T) {
	s := newTestServer(t)

	rec := s.upload([]byte("definitely not an image"))

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = s.do("GET", "/api/profile/photo", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
