package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
)

// writeErr renders err as {code,message} with the status spec.md §7 maps
// each Kind to.
func writeErr(c echo.Context, err error) error {
	body := amonerr.ToBody(err)
	return c.JSON(amonerr.HTTPStatus(body.Code), body)
}
