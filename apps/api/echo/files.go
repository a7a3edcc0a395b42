package echoapi

import (
	"fmt"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type fileApi struct {
	opts *Options
}

// registerFileAPI streams stored blobs back to authenticated clients; blob
// paths are opaque (surface/uuid.ext) so ownership checks live on the
// endpoints that hand the paths out.
func registerFileAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := fileApi{opts: opts}
	g.GET("/files/*", api.retrieve, jwt)
}

func (api *fileApi) retrieve(ctx echo.Context) error {
	rc, info, err := api.opts.Files.Open(ctx.Request().Context(), ctx.Param("*"))
	if err != nil {
		return errors.Wrap(err, "opening stored file")
	}
	defer func() { _ = rc.Close() }()
	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", path.Base(info.Path)))
	return ctx.Stream(http.StatusOK, info.ContentType, rc)
}
