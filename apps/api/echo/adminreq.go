package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/desiigner101/stunotes/core/adminreq"
	"github.com/desiigner101/stunotes/core/user"
)

type adminReqApi struct {
	svc      adminreq.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerAdminRequestAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := adminReqApi{
		svc:      opts.AdminReqSvc,
		usrSvc:   opts.UserSvc,
		validate: opts.Validate,
	}

	rg := g.Group("/admin-requests", jwt)
	rg.POST("", api.submit)
	rg.GET("", api.listPending, adminMiddleware())
	rg.POST("/:id/approve", api.approve, adminMiddleware())
	rg.POST("/:id/reject", api.reject, adminMiddleware())
}

func (api *adminReqApi) submit(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data adminreq.NewAdminRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAdminRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	req, err := api.svc.Submit(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, req)
}

func (api *adminReqApi) listPending(ctx echo.Context) error {
	reqs, err := api.svc.ListPending(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing pending requests")
	}
	if reqs == nil {
		reqs = []adminreq.AdminRequest{}
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *adminReqApi) approve(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	req, err := api.svc.Approve(ctx.Request().Context(), ctx.Param("id"), ctxUsr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *adminReqApi) reject(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	req, err := api.svc.Reject(ctx.Request().Context(), ctx.Param("id"), ctxUsr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, req)
}
