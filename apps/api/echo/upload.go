package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cddtech/lessonhub/core/upload"
)

const uploadContextKey = "upload"

type uploadApi struct {
	svc *upload.Service
}

func registerUploadAPI(g *echo.Group, auth []echo.MiddlewareFunc, svc *upload.Service) {
	api := uploadApi{svc: svc}

	ug := g.Group("/uploads", auth...)
	ug.POST("", api.upload, uploadMiddleware)
}

type UploadResponse struct {
	Success bool `json:"success"`
	upload.Result
}

// uploadMiddleware marks the request so that errors are reported in the upload response shape.
func uploadMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ctx.Set(uploadContextKey, true)
		return next(ctx)
	}
}

func isUploadRequest(ctx echo.Context) bool {
	marked, _ := ctx.Get(uploadContextKey).(bool)
	return marked
}

// formFile opens the multipart `file` of the request. The returned func closes it.
func formFile(ctx echo.Context) (upload.File, func() error, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return upload.File{}, nil, upload.ErrNoFile
		}
		return upload.File{}, nil, errors.Wrap(err, "reading multipart file")
	}
	src, err := fh.Open()
	if err != nil {
		return upload.File{}, nil, errors.Wrap(err, "opening multipart file")
	}
	return upload.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        src,
	}, src.Close, nil
}

func (api *uploadApi) upload(ctx echo.Context) error {
	f, closeFile, err := formFile(ctx)
	if err != nil {
		return err
	}
	defer closeFile() // nolint

	res, err := api.svc.Upload(ctx.Request().Context(), f)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, UploadResponse{Success: true, Result: res})
}
