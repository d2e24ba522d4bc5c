package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desiigner101/stunotes/core/note"
)

func Test_noteApi_crud(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "Alice", "alice", "", false, false)
	token := getToken(t, alice)

	rec := app.request(t, http.MethodPost, "/v1/notes", token, map[string]interface{}{
		"title":   "Derivatives",
		"content": "d/dx x^2 = 2x",
		"subject": "math",
		"tags":    "calculus, exam",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	id := body["id"].(string)
	assert.Equal(t, alice.ID, body["user_id"])

	rec = app.request(t, http.MethodGet, "/v1/notes/"+id, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Derivatives", decodeBody(t, rec)["title"])

	// partial update keeps untouched fields
	rec = app.request(t, http.MethodPut, "/v1/notes/"+id, token, map[string]interface{}{
		"content": "d/dx x^3 = 3x^2",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, "d/dx x^3 = 3x^2", body["content"])
	assert.Equal(t, "math", body["subject"])

	rec = app.request(t, http.MethodGet, "/v1/notes?search=deriv", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var notes []note.Note
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notes))
	assert.Len(t, notes, 1)

	rec = app.request(t, http.MethodDelete, "/v1/notes/"+id, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.request(t, http.MethodGet, "/v1/notes/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_noteApi_validation(t *testing.T) {
	app := newTestApp(t)
	token := getToken(t, app.createUser(t, "Alice", "alice", "", false, false))

	rec := app.request(t, http.MethodPost, "/v1/notes", token,
		map[string]interface{}{"title": "no content"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_noteApi_isolation(t *testing.T) {
	app := newTestApp(t)
	alice := app.createUser(t, "Alice", "alice", "", false, false)
	eve := app.createUser(t, "Eve", "evelyn", "", false, false)

	rec := app.request(t, http.MethodPost, "/v1/notes", getToken(t, alice),
		map[string]interface{}{"title": "Private", "content": "secret"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody(t, rec)["id"].(string)

	eveToken := getToken(t, eve)
	rec = app.request(t, http.MethodGet, "/v1/notes/"+id, eveToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = app.request(t, http.MethodPut, "/v1/notes/"+id, eveToken,
		map[string]interface{}{"title": "hijack"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_noteApi_adminOnlyBarred(t *testing.T) {
	app := newTestApp(t)
	dave := app.createUser(t, "Dave", "dave", "", true, true)

	rec := app.request(t, http.MethodGet, "/v1/notes", getToken(t, dave), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
