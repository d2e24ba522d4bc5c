package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/desiigner101/stunotes/core"
	"github.com/desiigner101/stunotes/core/dashboard"
	"github.com/desiigner101/stunotes/core/user"
)

type dashboardApi struct {
	svc      dashboard.Service
	usrSvc   user.Service
	sessions core.SessionStore
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := dashboardApi{
		svc:      opts.DashSvc,
		usrSvc:   opts.UserSvc,
		sessions: opts.Sessions,
	}

	dg := g.Group("/dashboard", jwt)
	dg.GET("", api.retrieve)
	dg.GET("/admin", api.retrieveAdmin, adminMiddleware())
	dg.POST("/switch-to-user", api.switchToUser)
	dg.POST("/switch-to-admin", api.switchToAdmin)
	dg.GET("/calendar", api.calendar)
}

// location parses the optional `tz` query param; day bucketing follows the
// viewer's local calendar.
func location(ctx echo.Context) *time.Location {
	if tz := ctx.QueryParam("tz"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	return time.UTC
}

// retrieve serves whichever dashboard the principal's role and session
// view-state resolve to.
func (api *dashboardApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	usr, err := getContextUser(ctx, api.usrSvc, claims)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	state, err := api.sessions.Get(ctx.Request().Context(), claims.SessionID(), user.ViewStateKey)
	if err != nil {
		return errors.Wrap(err, "getting session view-state")
	}

	loc := location(ctx)
	now := time.Now().UTC()
	switch user.ResolveDashboard(usr, user.ViewState(state)) {
	case user.AdminDashboard:
		data, err := api.svc.ForAdmin(ctx.Request().Context(), now, loc)
		if err != nil {
			return errors.Wrap(err, "building admin dashboard")
		}
		return ctx.JSON(http.StatusOK, data)
	default:
		data, err := api.svc.ForUser(ctx.Request().Context(), usr, now, loc)
		if err != nil {
			return errors.Wrap(err, "building user dashboard")
		}
		return ctx.JSON(http.StatusOK, data)
	}
}

// retrieveAdmin serves the admin dashboard directly; entering it clears any
// lingering user-view toggle.
func (api *dashboardApi) retrieveAdmin(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err = api.sessions.Delete(ctx.Request().Context(), claims.SessionID(), user.ViewStateKey); err != nil {
		return errors.Wrap(err, "clearing session view-state")
	}

	data, err := api.svc.ForAdmin(ctx.Request().Context(), time.Now().UTC(), location(ctx))
	if err != nil {
		return errors.Wrap(err, "building admin dashboard")
	}
	return ctx.JSON(http.StatusOK, data)
}

func (api *dashboardApi) switchToUser(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	usr, err := getContextUser(ctx, api.usrSvc, claims)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	state, err := user.SwitchToUser(usr)
	if err != nil {
		return err
	}
	if err = api.sessions.Set(ctx.Request().Context(), claims.SessionID(), user.ViewStateKey, string(state)); err != nil {
		return errors.Wrap(err, "setting session view-state")
	}
	return ctx.JSON(http.StatusOK, SwitchResponse{Mode: user.UserDashboard})
}

func (api *dashboardApi) switchToAdmin(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	usr, err := getContextUser(ctx, api.usrSvc, claims)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if _, err = user.SwitchToAdmin(usr); err != nil {
		return err
	}
	if err = api.sessions.Delete(ctx.Request().Context(), claims.SessionID(), user.ViewStateKey); err != nil {
		return errors.Wrap(err, "clearing session view-state")
	}
	return ctx.JSON(http.StatusOK, SwitchResponse{Mode: user.AdminDashboard})
}

// calendar is a personal feature; admin-only accounts have no calendar.
func (api *dashboardApi) calendar(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !usr.CanUseUserFeatures() {
		return user.ErrPermissionDenied
	}

	loc := location(ctx)
	now := time.Now().UTC()
	local := now.In(loc)

	year := local.Year()
	month := local.Month()
	if y := ctx.QueryParam("year"); y != "" {
		if yr, err := strconv.Atoi(y); err == nil {
			year = yr
		}
	}
	if m := ctx.QueryParam("month"); m != "" {
		if mo, err := strconv.Atoi(m); err == nil && mo >= 1 && mo <= 12 {
			month = time.Month(mo)
		}
	}

	data, err := api.svc.Month(ctx.Request().Context(), usr, year, month, now, loc)
	if err != nil {
		return errors.Wrap(err, "building calendar")
	}
	return ctx.JSON(http.StatusOK, data)
}

type SwitchResponse struct {
	Mode user.DashboardMode `json:"mode"`
}
