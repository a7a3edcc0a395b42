package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core/result"
)

type resultApi struct {
	svc *result.Service
}

func registerResultAPI(g *echo.Group, jwt, paid echo.MiddlewareFunc, opts *Options) {
	api := resultApi{svc: opts.ResultSvc}

	rg := g.Group("/results", jwt)

	rg.POST("", api.submit)
	rg.GET("", api.query)
	rg.POST("/:id/approve", api.approve)
	rg.GET("/students/:studentID", api.studentGrades, paid)
	rg.GET("/students/:studentID/report", api.gradeReport, paid)
}

func (api *resultApi) submit(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data result.NewResult
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResult")
	}

	res, err := api.svc.Submit(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "submitting result")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *resultApi) query(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	filter := new(result.QueryFilter)
	if err = ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []result.Result{})
	}

	results, err := api.svc.Filter(ctx.Request().Context(), actor, *filter)
	if err != nil {
		return errors.Wrap(err, "querying results")
	}
	if results == nil {
		results = []result.Result{}
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *resultApi) approve(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.Approve(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "approving result")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *resultApi) studentGrades(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	filter := new(result.QueryFilter)
	if err = ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []result.Result{})
	}

	grades, err := api.svc.StudentGrades(ctx.Request().Context(), actor, ctx.Param("studentID"), *filter)
	if err != nil {
		return errors.Wrap(err, "listing student grades")
	}
	if grades == nil {
		grades = []result.Result{}
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *resultApi) gradeReport(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	filter := new(result.QueryFilter)
	if err = ctx.Bind(filter); err != nil {
		filter = &result.QueryFilter{}
	}

	report, err := api.svc.Report(ctx.Request().Context(), actor, ctx.Param("studentID"), *filter)
	if err != nil {
		return errors.Wrap(err, "building grade report")
	}
	return ctx.JSON(http.StatusOK, report)
}
