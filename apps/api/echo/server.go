// Package echoapi is the HTTP JSON API.
package echoapi

import (
	"context"
	"net/http"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/desiigner101/stunotes/core"
	"github.com/desiigner101/stunotes/core/adminreq"
	"github.com/desiigner101/stunotes/core/dashboard"
	"github.com/desiigner101/stunotes/core/note"
	"github.com/desiigner101/stunotes/core/task"
	"github.com/desiigner101/stunotes/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		UserSvc     user.Service
		TaskSvc     task.Service
		NoteSvc     note.Service
		AdminReqSvc adminreq.Service
		DashSvc     dashboard.Service
		Sessions    core.SessionStore

		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options, shutdown chan os.Signal) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: shutdown,
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts)
	registerDashboardAPI(v1, jwt, s.opts)
	registerAdminRequestAPI(v1, jwt, s.opts)
	registerTaskAPI(v1, jwt, s.opts)
	registerNoteAPI(v1, jwt, s.opts)
}

// signalShutdown notifies main() to gracefully shut the Server down.
func (s *server) signalShutdown() {
	s.shutdown <- os.Interrupt
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to StuNotes API!")
}
