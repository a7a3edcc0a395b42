package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core/attendance"
)

type attendanceApi struct {
	svc *attendance.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := attendanceApi{svc: opts.AttendanceSvc}

	ag := g.Group("/attendance", jwt)

	ag.POST("/sessions", api.createSession)
	ag.GET("/sessions", api.mySessions)

	sg := ag.Group("/sessions/:id")
	sg.GET("", api.retrieveSession)
	sg.PUT("", api.updateSession)
	sg.DELETE("", api.destroySession)
	sg.POST("/submit", api.submit)
	sg.POST("/approve", api.approve)
	sg.POST("/records", api.upsertRecord)
	sg.POST("/records/bulk", api.bulkUpsertRecords)
	sg.GET("/records", api.records)
	sg.DELETE("/records/:recordID", api.destroyRecord)
}

func (api *attendanceApi) createSession(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data attendance.NewSession
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}

	s, err := api.svc.CreateSession(ctx.Request().Context(), actor, data)
	if err != nil {
		return errors.Wrap(err, "creating attendance session")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *attendanceApi) mySessions(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	filter := new(attendance.SessionFilter)
	if err = ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []attendance.Session{})
	}

	sessions, err := api.svc.MySessions(ctx.Request().Context(), actor, *filter)
	if err != nil {
		return errors.Wrap(err, "listing attendance sessions")
	}
	if sessions == nil {
		sessions = []attendance.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *attendanceApi) retrieveSession(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	s, err := api.svc.GetSession(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding attendance session by ID")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *attendanceApi) updateSession(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data attendance.UpdateSession
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSession")
	}

	s, err := api.svc.UpdateSession(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating attendance session")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *attendanceApi) destroySession(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteSession(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting attendance session")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *attendanceApi) submit(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	s, err := api.svc.Submit(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "submitting attendance session")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *attendanceApi) approve(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	s, err := api.svc.Approve(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "approving attendance session")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *attendanceApi) upsertRecord(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data attendance.RecordRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RecordRequest")
	}

	rec, err := api.svc.UpsertRecord(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "recording attendance")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) bulkUpsertRecords(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data BulkRecordsRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkRecordsRequest")
	}

	results, err := api.svc.BulkUpsertRecords(ctx.Request().Context(), actor, ctx.Param("id"), data.Records)
	if err != nil {
		return errors.Wrap(err, "recording attendance in bulk")
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *attendanceApi) records(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	recs, err := api.svc.Records(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing attendance records")
	}
	if recs == nil {
		recs = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *attendanceApi) destroyRecord(ctx echo.Context) error {
	actor, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteRecord(ctx.Request().Context(), actor, ctx.Param("id"), ctx.Param("recordID")); err != nil {
		return errors.Wrap(err, "deleting attendance record")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type BulkRecordsRequest struct {
	Records []attendance.RecordRequest `json:"records"`
}
