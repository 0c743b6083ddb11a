package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxClaims extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call: a non-empty occupant
// id proves the middleware ran and identifies the subject of every core
// operation.
func ctxClaims(c echo.Context) (occupantID, role string, err error) {
	occupantID, _ = c.Get("occupant_id").(string)
	if occupantID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	role, _ = c.Get("role").(string)
	return occupantID, role, nil
}
