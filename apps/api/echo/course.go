package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cddtech/lessonhub/apps/shared"
	"github.com/cddtech/lessonhub/core/course"
	"github.com/cddtech/lessonhub/core/lesson"
)

type courseApi struct {
	svc     *course.Service
	lessons *lesson.Service
}

func registerCourseAPI(g *echo.Group, auth []echo.MiddlewareFunc, svcs shared.Services) {
	api := courseApi{svc: svcs.Course, lessons: svcs.Lesson}

	cg := g.Group("/courses", auth...)
	cg.GET("", api.dashboard)
	cg.POST("", api.create, teacherMiddleware)
	cg.GET("/community", api.community)

	// detail endpoints
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
	cg.PUT("/:id/visibility", api.setVisibility)
	cg.GET("/:id/lessons", api.queryLessons)
	cg.POST("/:id/lessons", api.createLesson)
}

type VisibilityRequest struct {
	IsPublic bool `json:"is_public"`
}

func (api *courseApi) dashboard(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	listings, err := api.svc.Dashboard(ctx.Request().Context(), usr, ctx.QueryParam("q"))
	if err != nil {
		return errors.Wrap(err, "listing dashboard courses")
	}
	return ctx.JSON(http.StatusOK, listings)
}

func (api *courseApi) community(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := course.QueryFilter{
		Search:   ctx.QueryParam("q"),
		Subject:  ctx.QueryParam("subject"),
		Grade:    ctx.QueryParam("grade"),
		Ordering: bindOrdering(ctx, course.OrderingFields...),
	}

	listings, err := api.svc.Community(ctx.Request().Context(), usr, filter)
	if err != nil {
		return errors.Wrap(err, "listing community courses")
	}
	return ctx.JSON(http.StatusOK, listings)
}

func (api *courseApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data course.NewCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}

	c, err := api.svc.Create(ctx.Request().Context(), usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	c, err := api.svc.Get(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) update(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}

	c, err := api.svc.Update(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) setVisibility(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data VisibilityRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VisibilityRequest")
	}

	c, err := api.svc.SetVisibility(ctx.Request().Context(), usr, ctx.Param("id"), data.IsPublic)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err = api.svc.Delete(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) queryLessons(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	lessons, err := api.lessons.List(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return err
	}
	details := make([]lesson.Detail, 0, len(lessons))
	for _, l := range lessons {
		details = append(details, l.Detail())
	}
	return ctx.JSON(http.StatusOK, details)
}

func (api *courseApi) createLesson(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data lesson.NewLesson
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}

	l, err := api.lessons.Create(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, l.Detail())
}
