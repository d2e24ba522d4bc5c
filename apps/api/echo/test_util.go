package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/desiigner101/stunotes/core"
	"github.com/desiigner101/stunotes/core/adminreq"
	"github.com/desiigner101/stunotes/core/dashboard"
	"github.com/desiigner101/stunotes/core/note"
	"github.com/desiigner101/stunotes/core/task"
	"github.com/desiigner101/stunotes/core/user"
	emailsvc "github.com/desiigner101/stunotes/services/email"
	inmemdb "github.com/desiigner101/stunotes/storage/database/inmem"
	"github.com/desiigner101/stunotes/storage/sessions"
)

type noopLogger struct{}

var _ core.Logger = (*noopLogger)(nil)

func (noopLogger) Enable(bool)                  {}
func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) Fatal(string, ...interface{}) {}

type testApp struct {
	server   Server
	usrRepo  user.Repository
	taskRepo task.Repository
	noteRepo note.Repository
	reqRepo  adminreq.Repository
	sessions core.SessionStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := inmemdb.Open()
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	sessionStore := sessions.NewRedisStore(
		redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		time.Hour,
	)

	mailSvc := emailsvc.NewConsoleServiceMock()

	usrRepo := inmemdb.NewUserRepository(db)
	taskRepo := inmemdb.NewTaskRepository(db)
	noteRepo := inmemdb.NewNoteRepository(db)
	reqRepo := inmemdb.NewAdminRequestRepository(db)

	usrSvc := user.NewService(usrRepo, mailSvc)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	server := NewServer(
		&Options{
			DisableReqLogs: true,
			UserSvc:        usrSvc,
			TaskSvc:        task.NewService(taskRepo),
			NoteSvc:        note.NewService(noteRepo),
			AdminReqSvc:    adminreq.NewService(reqRepo, usrSvc, mailSvc),
			DashSvc:        dashboard.NewService(usrRepo, taskRepo, noteRepo, reqRepo),
			Sessions:       sessionStore,
			Logger:         noopLogger{},
			Validate:       validate,
			Translator:     translator,
		},
		make(chan os.Signal, 1),
	)

	return &testApp{
		server:   server,
		usrRepo:  usrRepo,
		taskRepo: taskRepo,
		noteRepo: noteRepo,
		reqRepo:  reqRepo,
		sessions: sessionStore,
	}
}

func (app *testApp) createUser(t *testing.T, name, uname, pwd string, isAdmin, isAdminOnly bool) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		Name:        name,
		Username:    uname,
		Email:       uname + "@test.cd",
		IsActive:    true,
		IsAdmin:     isAdmin,
		IsAdminOnly: isAdminOnly,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if pwd != "" {
		require.NoError(t, usr.SetPassword(pwd))
	}
	usr, err := app.usrRepo.CreateUser(context.Background(), usr)
	require.NoError(t, err)
	return usr
}

func (app *testApp) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()

	token, err := GenerateToken(GetUserClaims(usr))
	require.NoError(t, err)
	return token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	return data
}
