package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/desiigner101/stunotes/core/task"
	"github.com/desiigner101/stunotes/core/user"
)

type taskApi struct {
	svc      task.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerTaskAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := taskApi{
		svc:      opts.TaskSvc,
		usrSvc:   opts.UserSvc,
		validate: opts.Validate,
	}

	tg := g.Group("/tasks", jwt, userFeaturesMiddleware(api.usrSvc))
	tg.GET("", api.query)
	tg.POST("", api.create)
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update)
	tg.DELETE("/:id", api.destroy)
	tg.PATCH("/:id/toggle", api.toggle)

	tg.GET("/:id/reminders", api.queryReminders)
	tg.POST("/:id/reminders", api.addReminder)
	tg.DELETE("/:id/reminders/:rid", api.destroyReminder)
}

func (api *taskApi) ctxUser(ctx echo.Context) (user.User, error) {
	return getContextUser(ctx, api.usrSvc)
}

func (api *taskApi) query(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := new(task.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []task.Task{})
	}
	filter.UserID = ctxUsr.ID

	tasks, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *taskApi) create(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data task.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.svc.Create(ctx.Request().Context(), ctxUsr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating task")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *taskApi) retrieve(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	t, err := api.svc.Get(ctx.Request().Context(), ctxUsr.ID, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) update(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	orig, err := api.svc.Get(ctx.Request().Context(), ctxUsr.ID, ctx.Param("id"))
	if err != nil {
		return err
	}

	var data task.UpdateTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if err := data.Validate(api.validate, orig); err != nil {
		return err
	}

	t, err := api.svc.Update(ctx.Request().Context(), ctxUsr.ID, orig.ID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) toggle(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	t, err := api.svc.ToggleStatus(ctx.Request().Context(), ctxUsr.ID, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *taskApi) destroy(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.Delete(ctx.Request().Context(), ctxUsr.ID, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *taskApi) queryReminders(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reminders, err := api.svc.QueryReminders(ctx.Request().Context(), ctxUsr.ID, ctx.Param("id"))
	if err != nil {
		return err
	}
	if reminders == nil {
		reminders = []task.Reminder{}
	}
	return ctx.JSON(http.StatusOK, reminders)
}

func (api *taskApi) addReminder(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data task.NewReminder
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReminder")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.AddReminder(ctx.Request().Context(), ctxUsr.ID, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *taskApi) destroyReminder(ctx echo.Context) error {
	ctxUsr, err := api.ctxUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.DeleteReminder(ctx.Request().Context(), ctxUsr.ID, ctx.Param("id"), ctx.Param("rid")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
