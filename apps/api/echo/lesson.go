package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cddtech/lessonhub/core/lesson"
)

type lessonApi struct {
	svc *lesson.Service
}

func registerLessonAPI(g *echo.Group, auth []echo.MiddlewareFunc, svc *lesson.Service) {
	api := lessonApi{svc: svc}

	lg := g.Group("/lessons/:id", auth...)
	lg.GET("", api.retrieve)
	lg.PUT("", api.update)
	lg.DELETE("", api.destroy)
	lg.GET("/render", api.render)

	// block editing
	bg := lg.Group("/blocks")
	bg.GET("", api.queryBlocks)
	bg.POST("", api.appendBlock)
	bg.POST("/upload", api.uploadBlock)
	bg.PUT("/order", api.reorderBlocks)
	bg.PUT("/:blockID", api.updateBlock)
	bg.DELETE("/:blockID", api.removeBlock)
}

func (api *lessonApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	l, err := api.svc.Get(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, l.Detail())
}

func (api *lessonApi) update(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data lesson.NewLesson
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}

	l, err := api.svc.Update(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, l.Detail())
}

func (api *lessonApi) destroy(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err = api.svc.Delete(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *lessonApi) render(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	html, err := api.svc.Render(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.HTML(http.StatusOK, html)
}

func (api *lessonApi) queryBlocks(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	blocks, err := api.svc.Blocks(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, blocks)
}

func (api *lessonApi) appendBlock(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data lesson.NewBlock
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBlock")
	}

	l, err := api.svc.AppendBlock(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, l.Detail())
}

func (api *lessonApi) uploadBlock(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	f, closeFile, err := formFile(ctx)
	if err != nil {
		return err
	}
	defer closeFile() // nolint

	l, err := api.svc.UploadBlock(ctx.Request().Context(), usr, ctx.Param("id"), f)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, l.Detail())
}

func (api *lessonApi) reorderBlocks(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data lesson.ReorderBlocks
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReorderBlocks")
	}

	l, err := api.svc.ReorderBlocks(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, l.Detail())
}

func (api *lessonApi) updateBlock(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data lesson.UpdateBlock
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateBlock")
	}

	l, err := api.svc.UpdateBlock(ctx.Request().Context(), usr, ctx.Param("id"), ctx.Param("blockID"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, l.Detail())
}

func (api *lessonApi) removeBlock(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	l, err := api.svc.RemoveBlock(ctx.Request().Context(), usr, ctx.Param("id"), ctx.Param("blockID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, l.Detail())
}
