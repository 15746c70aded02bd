package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arc-self/amon/apps/master/internal/service"
)

// AccountHandler serves GET /ping and GET /pub/:login (account summary).
type AccountHandler struct {
	svc *service.ObjectService
}

func NewAccountHandler(svc *service.ObjectService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

func (h *AccountHandler) Register(e *echo.Echo, g *echo.Group) {
	e.GET("/ping", h.Ping)
	g.GET("", h.Summary)
}

func (h *AccountHandler) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"ping": "pong"})
}

func (h *AccountHandler) Summary(c echo.Context) error {
	ctx := c.Request().Context()
	login := c.Param("login")
	user, err := h.svc.AccountUUID(ctx, login)
	if err != nil {
		return writeErr(c, err)
	}

	monitors, err := h.svc.ListMonitors(ctx, user)
	if err != nil {
		return writeErr(c, err)
	}
	contacts, err := h.svc.ListContacts(ctx, user)
	if err != nil {
		return writeErr(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"login":         login,
		"uuid":          user,
		"monitor_count": len(monitors),
		"contact_count": len(contacts),
	})
}
