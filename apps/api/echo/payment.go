package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/payment"
	"github.com/dagmawi/collegehub/core/user"
)

type paymentApi struct {
	svc  *payment.Service
	opts *Options
}

// registerPaymentAPI deliberately skips the paid-student gate: unpaid students
// must reach these endpoints to become paid in the first place.
func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := paymentApi{svc: opts.PaymentSvc, opts: opts}

	pg := g.Group("/payments", jwt)

	pg.POST("", api.submit)
	pg.GET("/mine", api.mine)
	pg.GET("/pending", api.pending, roleMiddleware(user.RoleAdmin, user.RoleRegistrar))
	pg.GET("/:id", api.retrieve)
	pg.POST("/:id/verify", api.verify, roleMiddleware(user.RoleAdmin, user.RoleRegistrar))
}

func (api *paymentApi) submit(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	amount, _ := strconv.ParseFloat(ctx.FormValue("amount"), 64)
	data := payment.NewPayment{
		Semester:  ctx.FormValue("semester"),
		Year:      ctx.FormValue("year"),
		Amount:    amount,
		Method:    ctx.FormValue("method"),
		Reference: ctx.FormValue("reference"),
	}

	receipt, err := saveUpload(ctx, api.opts.Files, core.SurfaceReceipt, "receipt")
	if err != nil {
		return errors.Wrap(err, "storing payment receipt")
	}
	data.ReceiptPath = receipt.Path

	p, err := api.svc.Submit(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "submitting payment")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *paymentApi) mine(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	payments, err := api.svc.MyPayments(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "listing payments")
	}
	if payments == nil {
		payments = []payment.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *paymentApi) pending(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	filter := new(payment.QueryFilter)
	if err = ctx.Bind(filter); err != nil {
		filter = &payment.QueryFilter{}
	}

	payments, err := api.svc.Pending(ctx.Request().Context(), actor, *filter)
	if err != nil {
		return errors.Wrap(err, "listing pending payments")
	}
	if payments == nil {
		payments = []payment.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *paymentApi) retrieve(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	p, err := api.svc.GetByID(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding payment by ID")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *paymentApi) verify(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var req payment.VerifyRequest
	if err = ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to VerifyRequest")
	}

	p, err := api.svc.Verify(ctx.Request().Context(), actor, ctx.Param("id"), req)
	if err != nil {
		return errors.Wrap(err, "verifying payment")
	}
	return ctx.JSON(http.StatusOK, p)
}
