package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core/registration"
	"github.com/dagmawi/collegehub/core/user"
)

type registrationApi struct {
	svc *registration.Service
}

func registerRegistrationAPI(g *echo.Group, jwt, paid echo.MiddlewareFunc, opts *Options) {
	api := registrationApi{svc: opts.RegistrationSvc}

	rg := g.Group("/registrations", jwt)

	rg.POST("", api.create, paid)
	rg.GET("/mine", api.mine, paid)
	rg.GET("/pending/dep-head", api.pendingDepHead, roleMiddleware(user.RoleDepHead, user.RoleDean))
	rg.GET("/pending/dean", api.pendingDean, roleMiddleware(user.RoleDean))
	rg.GET("/:id", api.retrieve)
	rg.POST("/:id/stages/:stage", api.decide)
}

func (api *registrationApi) create(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data registration.NewRegistration
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRegistration")
	}

	reg, err := api.svc.Register(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating registration")
	}
	return ctx.JSON(http.StatusCreated, reg)
}

func (api *registrationApi) mine(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	regs, err := api.svc.MyRegistrations(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "listing registrations")
	}
	if regs == nil {
		regs = []registration.Registration{}
	}
	return ctx.JSON(http.StatusOK, regs)
}

func (api *registrationApi) retrieve(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	reg, err := api.svc.GetByID(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding registration by ID")
	}
	return ctx.JSON(http.StatusOK, reg)
}

func (api *registrationApi) pendingDepHead(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	regs, err := api.svc.PendingDepHead(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "listing pending registrations")
	}
	if regs == nil {
		regs = []registration.Registration{}
	}
	return ctx.JSON(http.StatusOK, regs)
}

func (api *registrationApi) pendingDean(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	regs, err := api.svc.PendingDean(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "listing pending registrations")
	}
	if regs == nil {
		regs = []registration.Registration{}
	}
	return ctx.JSON(http.StatusOK, regs)
}

func (api *registrationApi) decide(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var req registration.StageRequest
	if err = ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to StageRequest")
	}

	reg, err := api.svc.Decide(ctx.Request().Context(), actor, ctx.Param("id"), ctx.Param("stage"), req)
	if err != nil {
		return errors.Wrap(err, "deciding registration stage")
	}
	return ctx.JSON(http.StatusOK, reg)
}
