package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core"
	"github.com/dagmawi/collegehub/core/material"
)

type materialApi struct {
	svc  *material.Service
	opts *Options
}

func registerMaterialAPI(g *echo.Group, jwt, paid echo.MiddlewareFunc, opts *Options) {
	api := materialApi{svc: opts.MaterialSvc, opts: opts}

	mg := g.Group("/materials", jwt)

	mg.POST("", api.publish)
	mg.GET("", api.query)

	dg := mg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.DELETE("", api.destroy)
	dg.POST("/submissions", api.submitWork, paid)
	dg.GET("/submissions", api.submissions)
	dg.GET("/submissions/mine", api.mySubmission, paid)
	dg.POST("/submissions/:submissionID/grade", api.gradeSubmission)
}

// uploadSurface maps a material type to its upload surface; each surface has
// its own size and content-type gate.
func uploadSurface(materialType string) string {
	switch materialType {
	case material.TypeModule:
		return core.SurfaceModule
	case material.TypeAssignment:
		return core.SurfaceAssignment
	default:
		return core.SurfaceMaterial
	}
}

func (api *materialApi) publish(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	data := material.NewMaterial{
		Title:       ctx.FormValue("title"),
		Description: ctx.FormValue("description"),
		Type:        ctx.FormValue("type"),
		Course:      ctx.FormValue("course"),
		Department:  ctx.FormValue("department"),
		Semester:    ctx.FormValue("semester"),
		Year:        ctx.FormValue("year"),
		VideoURL:    ctx.FormValue("video_url"),
	}
	if raw := ctx.FormValue("due_date"); raw != "" {
		due, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return core.NewValidationError(err,
				core.FieldError{Field: "due_date", Error: "expected RFC3339 timestamp"})
		}
		data.DueDate = due
	}

	// video materials carry a URL, everything else carries a file
	if data.Type != material.TypeVideo {
		if fh, err := ctx.FormFile("file"); err == nil {
			info, err := saveUploadHeader(ctx, api.opts.Files, uploadSurface(data.Type), fh)
			if err != nil {
				return errors.Wrap(err, "storing material file")
			}
			data.FilePath = info.Path
		}
	}

	m, err := api.svc.Publish(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "publishing material")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *materialApi) query(ctx echo.Context) error {
	filter := new(material.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []material.Material{})
	}

	materials, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying materials")
	}
	if materials == nil {
		materials = []material.Material{}
	}
	return ctx.JSON(http.StatusOK, materials)
}

func (api *materialApi) retrieve(ctx echo.Context) error {
	m, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding material by ID")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *materialApi) destroy(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting material")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *materialApi) submitWork(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	info, err := saveUpload(ctx, api.opts.Files, core.SurfaceSubmission, "file")
	if err != nil {
		return errors.Wrap(err, "storing submission file")
	}
	data := material.NewSubmission{
		Comment:  ctx.FormValue("comment"),
		FilePath: info.Path,
	}

	sub, err := api.svc.SubmitWork(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "submitting assignment work")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *materialApi) mySubmission(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	sub, err := api.svc.MySubmission(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *materialApi) submissions(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	subs, err := api.svc.Submissions(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing submissions")
	}
	if subs == nil {
		subs = []material.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *materialApi) gradeSubmission(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var req material.GradeRequest
	if err = ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to GradeRequest")
	}

	sub, err := api.svc.GradeSubmission(ctx.Request().Context(), actor, ctx.Param("id"), ctx.Param("submissionID"), req)
	if err != nil {
		return errors.Wrap(err, "grading submission")
	}
	return ctx.JSON(http.StatusOK, sub)
}
