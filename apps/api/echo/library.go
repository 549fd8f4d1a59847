package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cddtech/lessonhub/core/library"
	"github.com/cddtech/lessonhub/core/notification"
)

type libraryApi struct {
	svc *library.Service
}

func registerLibraryAPI(g *echo.Group, auth []echo.MiddlewareFunc, svc *library.Service) {
	api := libraryApi{svc: svc}

	lg := g.Group("/library", auth...)
	lg.GET("", api.query)
	lg.POST("/:courseID", api.toggle)
}

type ToggleResponse struct {
	Saved bool `json:"saved"`
}

func (api *libraryApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	saved, err := api.svc.List(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "listing library")
	}
	return ctx.JSON(http.StatusOK, saved)
}

func (api *libraryApi) toggle(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	saved, err := api.svc.Toggle(ctx.Request().Context(), usr, ctx.Param("courseID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ToggleResponse{Saved: saved})
}

type notificationApi struct {
	svc *notification.Service
}

func registerNotificationAPI(g *echo.Group, auth []echo.MiddlewareFunc, svc *notification.Service) {
	api := notificationApi{svc: svc}

	ng := g.Group("/notifications", auth...)
	ng.GET("", api.query)
	ng.PUT("/:id/read", api.markRead)
}

func (api *notificationApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	notifs, err := api.svc.List(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "listing notifications")
	}
	if notifs == nil {
		notifs = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	n, err := api.svc.MarkRead(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, n)
}
