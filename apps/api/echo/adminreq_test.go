package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desiigner101/stunotes/core/adminreq"
)

func Test_adminReqApi_submit(t *testing.T) {
	app := newTestApp(t)

	alice := app.createUser(t, "Alice", "alice", "", false, false)
	carol := app.createUser(t, "Carol", "carol", "", true, false)

	t.Run("ok", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/admin-requests", getToken(t, alice),
			map[string]string{"reason": "I tutor the study group"})
		require.Equal(t, http.StatusCreated, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "pending", body["status"])
		assert.Equal(t, alice.ID, body["requester_id"])
	})

	t.Run("blank reason", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/admin-requests", getToken(t, alice),
			map[string]string{"reason": "   "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("admins cannot apply", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/admin-requests", getToken(t, carol),
			map[string]string{"reason": "more power"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_adminReqApi_listPending(t *testing.T) {
	app := newTestApp(t)

	alice := app.createUser(t, "Alice", "alice", "", false, false)
	carol := app.createUser(t, "Carol", "carol", "", true, false)

	rec := app.request(t, http.MethodPost, "/v1/admin-requests", getToken(t, alice),
		map[string]string{"reason": "I tutor the study group"})
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("forbidden for non-admins", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/admin-requests", getToken(t, alice), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin sees the queue with requesters", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/admin-requests", getToken(t, carol), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var reqs []adminreq.AdminRequest
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reqs))
		require.Len(t, reqs, 1)
		assert.Equal(t, alice.ID, reqs[0].RequesterID)
		assert.Equal(t, alice.Username, reqs[0].Requester.Username)
	})
}

func Test_adminReqApi_decisions(t *testing.T) {
	app := newTestApp(t)

	alice := app.createUser(t, "Alice", "alice", "", false, false)
	bob := app.createUser(t, "Bob", "bobby", "", false, false)
	carol := app.createUser(t, "Carol", "carol", "", true, false)

	submit := func(t *testing.T, token string) string {
		rec := app.request(t, http.MethodPost, "/v1/admin-requests", token,
			map[string]string{"reason": "I tutor the study group"})
		require.Equal(t, http.StatusCreated, rec.Code)
		return decodeBody(t, rec)["id"].(string)
	}

	t.Run("approve promotes the requester", func(t *testing.T) {
		id := submit(t, getToken(t, alice))

		rec := app.request(t, http.MethodPost, "/v1/admin-requests/"+id+"/approve", getToken(t, carol), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "approved", body["status"])
		assert.Equal(t, carol.ID, body["reviewer_id"])

		promoted, err := app.usrRepo.GetUserByID(context.Background(), alice.ID)
		require.NoError(t, err)
		assert.True(t, promoted.IsAdmin)
		assert.False(t, promoted.IsAdminOnly)

		// already processed
		rec = app.request(t, http.MethodPost, "/v1/admin-requests/"+id+"/reject", getToken(t, carol), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reject leaves roles alone", func(t *testing.T) {
		id := submit(t, getToken(t, bob))

		rec := app.request(t, http.MethodPost, "/v1/admin-requests/"+id+"/reject", getToken(t, carol), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "rejected", decodeBody(t, rec)["status"])

		unchanged, err := app.usrRepo.GetUserByID(context.Background(), bob.ID)
		require.NoError(t, err)
		assert.False(t, unchanged.IsAdmin)
	})

	t.Run("forbidden for non-admin reviewers", func(t *testing.T) {
		id := submit(t, getToken(t, bob))
		rec := app.request(t, http.MethodPost, "/v1/admin-requests/"+id+"/approve", getToken(t, bob), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown request", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/admin-requests/nope/approve", getToken(t, carol), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
