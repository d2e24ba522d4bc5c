package echoapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desiigner101/stunotes/core/user"
)

func Test_dashboardApi_resolution(t *testing.T) {
	app := newTestApp(t)

	alice := app.createUser(t, "Alice", "alice", "", false, false)
	carol := app.createUser(t, "Carol", "carol", "", true, false)
	dave := app.createUser(t, "Dave", "dave", "", true, true)

	t.Run("regular user gets the user dashboard", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/dashboard", getToken(t, alice), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user", decodeBody(t, rec)["mode"])
	})

	t.Run("admin defaults to the admin dashboard", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/dashboard", getToken(t, carol), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "admin", decodeBody(t, rec)["mode"])
	})

	t.Run("admin-only always gets the admin dashboard", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/dashboard", getToken(t, dave), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "admin", decodeBody(t, rec)["mode"])
	})

	t.Run("unauthenticated", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/dashboard", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func Test_dashboardApi_switchRoundTrip(t *testing.T) {
	app := newTestApp(t)
	carol := app.createUser(t, "Carol", "carol", "", true, false)

	// one login session; the toggle lives with it
	token := getToken(t, carol)

	rec := app.request(t, http.MethodPost, "/v1/dashboard/switch-to-user", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user", decodeBody(t, rec)["mode"])

	rec = app.request(t, http.MethodGet, "/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user", decodeBody(t, rec)["mode"])

	// a different login session is unaffected
	rec = app.request(t, http.MethodGet, "/v1/dashboard", getToken(t, carol), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", decodeBody(t, rec)["mode"])

	rec = app.request(t, http.MethodPost, "/v1/dashboard/switch-to-admin", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", decodeBody(t, rec)["mode"])

	rec = app.request(t, http.MethodGet, "/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", decodeBody(t, rec)["mode"])

	// switching to admin is idempotent
	rec = app.request(t, http.MethodPost, "/v1/dashboard/switch-to-admin", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_dashboardApi_switchDenied(t *testing.T) {
	app := newTestApp(t)

	alice := app.createUser(t, "Alice", "alice", "", false, false)
	dave := app.createUser(t, "Dave", "dave", "", true, true)

	tests := []struct {
		name  string
		token string
		path  string
	}{
		{name: "regular user cannot switch to user view", token: getToken(t, alice), path: "/v1/dashboard/switch-to-user"},
		{name: "regular user cannot switch to admin view", token: getToken(t, alice), path: "/v1/dashboard/switch-to-admin"},
		{name: "admin-only cannot switch to user view", token: getToken(t, dave), path: "/v1/dashboard/switch-to-user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.request(t, http.MethodPost, tt.path, tt.token, nil)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}

func Test_dashboardApi_staleToggleIgnored(t *testing.T) {
	app := newTestApp(t)
	dave := app.createUser(t, "Dave", "dave", "", true, true)

	// plant a stale user-view flag directly in the session store
	claims := GetUserClaims(dave)
	token, err := GenerateToken(claims)
	require.NoError(t, err)
	require.NoError(t, app.sessions.Set(context.Background(), claims.SessionID(), user.ViewStateKey, string(user.ViewStateUser)))

	rec := app.request(t, http.MethodGet, "/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", decodeBody(t, rec)["mode"])
}

func Test_dashboardApi_adminRoute(t *testing.T) {
	app := newTestApp(t)

	alice := app.createUser(t, "Alice", "alice", "", false, false)
	carol := app.createUser(t, "Carol", "carol", "", true, false)

	t.Run("forbidden for non-admins", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/dashboard/admin", getToken(t, alice), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("entering it clears the user-view toggle", func(t *testing.T) {
		token := getToken(t, carol)

		rec := app.request(t, http.MethodPost, "/v1/dashboard/switch-to-user", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = app.request(t, http.MethodGet, "/v1/dashboard/admin", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "admin", decodeBody(t, rec)["mode"])

		rec = app.request(t, http.MethodGet, "/v1/dashboard", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "admin", decodeBody(t, rec)["mode"])
	})
}

func Test_dashboardApi_calendar(t *testing.T) {
	app := newTestApp(t)

	alice := app.createUser(t, "Alice", "alice", "", false, false)
	dave := app.createUser(t, "Dave", "dave", "", true, true)

	rec := app.request(t, http.MethodGet, "/v1/dashboard/calendar?year=2026&month=3", getToken(t, alice), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 2026, body["year"])
	assert.EqualValues(t, 3, body["month"])
	assert.NotEmpty(t, body["weeks"])

	// no calendar for admin-only accounts
	rec = app.request(t, http.MethodGet, "/v1/dashboard/calendar", getToken(t, dave), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
