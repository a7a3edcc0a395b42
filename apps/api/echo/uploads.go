package echoapi

import (
	"mime/multipart"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core"
)

// saveUpload stores the multipart file under field on the given surface and
// returns the stored blob info. A missing file reports a field error so
// handlers can surface it as a validation failure.
func saveUpload(ctx echo.Context, files core.FileStore, surface, field string) (core.FileInfo, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		return core.FileInfo{}, core.NewValidationError(errors.New("file missing"),
			core.FieldError{Field: field, Error: "a file is required"})
	}
	return saveUploadHeader(ctx, files, surface, fh)
}

func saveUploadHeader(ctx echo.Context, files core.FileStore, surface string, fh *multipart.FileHeader) (core.FileInfo, error) {
	src, err := fh.Open()
	if err != nil {
		return core.FileInfo{}, errors.Wrap(err, "opening upload")
	}
	defer func() { _ = src.Close() }()
	return files.Save(ctx.Request().Context(), surface, fh.Filename, src)
}
