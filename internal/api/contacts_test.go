package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContacts_CRUD(t *testing.T) {
	s := newTestServer(t)

	rec := s.do("POST", "/api/contacts", `{"name":"Ana Costa","phones":[{"label":"mobile","number":"+351 912 000 111"}],"tags":["vip"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	id := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "2024-05-01T09:00:00Z", created["createdAt"])

	rec = s.do("GET", "/api/contacts?q=vip", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, decode(t, rec)["count"])

	rec = s.do("PUT", "/api/contacts/"+id, `{"name":"Ana Costa","notes":"Gate code 1234"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Gate code 1234", decode(t, rec)["notes"])

	rec = s.do("GET", "/api/contacts/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-05-01T09:00:00Z", decode(t, rec)["createdAt"])

	rec = s.do("DELETE", "/api/contacts/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do("GET", "/api/contacts/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContacts_Errors(t *testing.T) {
	s := newTestServer(t)

	rec := s.do("POST", "/api/contacts", `{"relationship":"Friend"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode(t, rec)["fields"].(map[string]any)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "relationship")

	rec = s.do("PUT", "/api/contacts/missing", `{"name":"Nobody"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do("DELETE", "/api/contacts/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
