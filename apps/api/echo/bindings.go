package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/cddtech/lessonhub/core"
)

const orderingParam = "ordering"

// bindOrdering reads `?ordering=title,-updated_at`, dropping fields not in `allowed`.
func bindOrdering(ctx echo.Context, allowed ...string) []core.DBOrdering {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return nil
	}
	return core.ParseOrdering(val, allowed...)
}
