package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/applicant"
	"github.com/dagmawi/collegehub/core/user"
)

type applicantApi struct {
	svc  *applicant.Service
	opts *Options
}

func registerApplicantAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := applicantApi{svc: opts.ApplicantSvc, opts: opts}

	ag := g.Group("/applicants")

	// un-authed endpoint: prospective students apply before having accounts
	ag.POST("", api.apply)

	staff := ag.Group("", jwt, roleMiddleware(user.RoleAdmin, user.RoleRegistrar))
	staff.GET("/pending", api.pending)
	staff.GET("/:id", api.retrieve)
	staff.POST("/:id/approve", api.approve)
	staff.POST("/:id/reject", api.reject)
}

// apply stores the admission documents first, then the applicant record; an
// applicant row never references a blob that was not written.
func (api *applicantApi) apply(ctx echo.Context) error {
	data, err := api.bindForm(ctx)
	if err != nil {
		return err
	}

	photo, err := saveUpload(ctx, api.opts.Files, core.SurfaceReceipt, "photo")
	if err != nil {
		return errors.Wrap(err, "storing applicant photo")
	}
	grade10, err := saveUpload(ctx, api.opts.Files, core.SurfaceReceipt, "grade10_file")
	if err != nil {
		return errors.Wrap(err, "storing grade 10 document")
	}
	grade12, err := saveUpload(ctx, api.opts.Files, core.SurfaceReceipt, "grade12_file")
	if err != nil {
		return errors.Wrap(err, "storing grade 12 document")
	}
	data.PhotoPath = photo.Path
	data.Grade10Path = grade10.Path
	data.Grade12Path = grade12.Path

	app, err := api.svc.Apply(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating applicant")
	}
	return ctx.JSON(http.StatusCreated, app)
}

func (api *applicantApi) bindForm(ctx echo.Context) (applicant.NewApplicant, error) {
	semester, _ := strconv.Atoi(ctx.FormValue("semester"))
	year, _ := strconv.Atoi(ctx.FormValue("year"))
	var birthDate time.Time
	if raw := ctx.FormValue("birth_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return applicant.NewApplicant{}, core.NewValidationError(err,
				core.FieldError{Field: "birth_date", Error: "expected format YYYY-MM-DD"})
		}
		birthDate = parsed
	}

	return applicant.NewApplicant{
		RegID:      ctx.FormValue("reg_id"),
		FirstName:  ctx.FormValue("first_name"),
		MiddleName: ctx.FormValue("middle_name"),
		LastName:   ctx.FormValue("last_name"),
		BirthDate:  birthDate,
		Sex:        ctx.FormValue("sex"),
		Town:       ctx.FormValue("town"),
		Woreda:     ctx.FormValue("woreda"),
		Address:    ctx.FormValue("address"),
		Email:      ctx.FormValue("email"),
		Department: ctx.FormValue("department"),
		Phone:      ctx.FormValue("phone"),
		Semester:   semester,
		Year:       year,
	}, nil
}

func (api *applicantApi) pending(ctx echo.Context) error {
	apps, err := api.svc.Pending(ctx.Request().Context(), ctx.QueryParam("department"))
	if err != nil {
		return errors.Wrap(err, "listing pending applicants")
	}
	if apps == nil {
		apps = []applicant.Applicant{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *applicantApi) retrieve(ctx echo.Context) error {
	app, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding applicant by ID")
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *applicantApi) approve(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	usr, err := api.svc.Approve(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "approving applicant")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *applicantApi) reject(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Reject(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "rejecting applicant")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "applicant rejected"})
}
