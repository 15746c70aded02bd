// Package handler wires Echo routes for the Master API (spec.md §4.D,
// §6) onto internal/service.ObjectService and the event dispatch engine.
package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
)

// sessionAccount resolves the authenticated caller's account UUID. Per
// spec.md §1, operator bootstrap/authentication is an external
// collaborator; this core trusts an upstream auth gateway to inject
// identity headers (X-Internal-User-Id, X-Tenant-Id style), the same
// way it trusts X-Amon-Session-Account here.
func sessionAccount(c echo.Context) string {
	return c.Request().Header.Get("X-Amon-Session-Account")
}

// requireSessionMatch enforces spec.md §4.C's rule that Contact/Monitor
// PUTs require a valid session for the :login route's resolved account:
// the owning account must equal the session account. A missing header
// fails closed rather than matching an empty account.
func requireSessionMatch(c echo.Context, account string) error {
	if s := sessionAccount(c); s == "" || s != account {
		return amonerr.New(amonerr.InvalidArgument, "session account does not match :login account")
	}
	return nil
}
