package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core/report"
)

type reportApi struct {
	svc *report.Service
}

func registerReportAPI(g *echo.Group, jwt, paid echo.MiddlewareFunc, opts *Options) {
	api := reportApi{svc: opts.ReportSvc}

	rg := g.Group("/reports", jwt, paid)

	rg.GET("/students/:studentID/transcript", api.transcript)
	rg.GET("/students/:studentID/results", api.results)
	rg.GET("/students/:studentID/attendance", api.attendance)
}

func (api *reportApi) transcript(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	tr, err := api.svc.Transcript(ctx.Request().Context(), actor, ctx.Param("studentID"))
	if err != nil {
		return errors.Wrap(err, "building transcript")
	}
	return ctx.JSON(http.StatusOK, tr)
}

func (api *reportApi) results(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.Results(ctx.Request().Context(), actor, ctx.Param("studentID"),
		ctx.QueryParam("semester"), ctx.QueryParam("year"))
	if err != nil {
		return errors.Wrap(err, "building results report")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *reportApi) attendance(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	stats, err := api.svc.Attendance(ctx.Request().Context(), actor, ctx.Param("studentID"),
		ctx.QueryParam("semester"), ctx.QueryParam("year"))
	if err != nil {
		return errors.Wrap(err, "building attendance report")
	}
	return ctx.JSON(http.StatusOK, stats)
}
