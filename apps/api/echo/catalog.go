package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core/catalog"
)

type catalogApi struct {
	svc *catalog.Service
}

func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := catalogApi{svc: opts.CatalogSvc}

	dg := g.Group("/departments", jwt)
	dg.GET("", api.departments)
	dg.POST("", api.createDepartment, adminMiddleware())

	cg := g.Group("/courses", jwt)
	cg.GET("", api.courses)
	cg.POST("", api.createCourse, adminMiddleware())
}

func (api *catalogApi) departments(ctx echo.Context) error {
	depts, err := api.svc.Departments(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing departments")
	}
	if depts == nil {
		depts = []catalog.Department{}
	}
	return ctx.JSON(http.StatusOK, depts)
}

func (api *catalogApi) createDepartment(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data catalog.NewDepartment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDepartment")
	}

	dept, err := api.svc.CreateDepartment(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating department")
	}
	return ctx.JSON(http.StatusCreated, dept)
}

func (api *catalogApi) courses(ctx echo.Context) error {
	filter := new(catalog.CourseFilter)
	if err := ctx.Bind(filter); err != nil {
		filter = &catalog.CourseFilter{}
	}

	courses, err := api.svc.Courses(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	if courses == nil {
		courses = []catalog.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *catalogApi) createCourse(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data catalog.NewCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}

	c, err := api.svc.CreateCourse(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}
