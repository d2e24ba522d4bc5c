package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/desiigner101/stunotes/apps/api/echo"
	"github.com/desiigner101/stunotes/core"
	"github.com/desiigner101/stunotes/core/adminreq"
	"github.com/desiigner101/stunotes/core/dashboard"
	"github.com/desiigner101/stunotes/core/note"
	"github.com/desiigner101/stunotes/core/task"
	"github.com/desiigner101/stunotes/core/user"
	emailsvc "github.com/desiigner101/stunotes/services/email"
	logsvc "github.com/desiigner101/stunotes/services/logger"
	"github.com/desiigner101/stunotes/storage/database"
	sqlxrepos "github.com/desiigner101/stunotes/storage/database/sqlx"
	"github.com/desiigner101/stunotes/storage/sessions"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	// set up DB
	db, err := database.Open(core.Conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()
	if err = database.Migrate(db); err != nil {
		logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}

	// set up session store
	ctx := context.Background()
	redisClient, err := sessions.NewClient(ctx, core.Conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up redis: %v", err), err)
	}
	defer redisClient.Close()
	sessionStore := sessions.NewRedisStore(redisClient, core.Conf.Server.SessionTTL())

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	usrRepo := sqlxrepos.NewUserRepository(db)
	taskRepo := sqlxrepos.NewTaskRepository(db)
	noteRepo := sqlxrepos.NewNoteRepository(db)
	reqRepo := sqlxrepos.NewAdminRequestRepository(db)

	usrSvc := user.NewService(usrRepo, mailSvc)
	taskSvc := task.NewService(taskRepo)
	noteSvc := note.NewService(noteRepo)
	reqSvc := adminreq.NewService(reqRepo, usrSvc, mailSvc)
	dashSvc := dashboard.NewService(usrRepo, taskRepo, noteRepo, reqRepo)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(
		&echoapi.Options{
			Address:     core.Conf.Server.Address(),
			UserSvc:     usrSvc,
			TaskSvc:     taskSvc,
			NoteSvc:     noteSvc,
			AdminReqSvc: reqSvc,
			DashSvc:     dashSvc,
			Sessions:    sessionStore,
			Logger:      logger,
			Validate:    validate,
			Translator:  translator,
		},
		shutdown,
	)

	go server.Start()

	// =========================================================================
	// Shutdown

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err = server.Stop(stopCtx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
