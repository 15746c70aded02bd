package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arc-self/amon/packages/amon-core/model"
	"github.com/arc-self/amon/apps/master/internal/authz"
	"github.com/arc-self/amon/apps/master/internal/service"
)

// ProbesHandler serves /pub/:login/monitors/:monitor/probes[/:probe].
type ProbesHandler struct {
	svc   *service.ObjectService
	authz *authz.Authorizer
}

func NewProbesHandler(svc *service.ObjectService, az *authz.Authorizer) *ProbesHandler {
	return &ProbesHandler{svc: svc, authz: az}
}

func (h *ProbesHandler) Register(g *echo.Group) {
	g.GET("/monitors/:monitor/probes", h.List)
	g.PUT("/monitors/:monitor/probes/:probe", h.Put)
	g.GET("/monitors/:monitor/probes/:probe", h.Get)
	g.DELETE("/monitors/:monitor/probes/:probe", h.Delete)
}

type probeBody struct {
	Type    string         `json:"type"`
	Machine string         `json:"machine"`
	Server  string         `json:"server"`
	Config  map[string]any `json:"config"`
}

func (h *ProbesHandler) Put(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.svc.AccountUUID(ctx, c.Param("login"))
	if err != nil {
		return writeErr(c, err)
	}

	var body probeBody
	if err := c.Bind(&body); err != nil {
		return writeErr(c, err)
	}

	operator, err := h.authz.IsOperator(ctx, user)
	if err != nil {
		return writeErr(c, err)
	}

	probe, err := h.svc.PutProbe(ctx, model.ProbeInput{
		Name:    c.Param("probe"),
		User:    user,
		Monitor: c.Param("monitor"),
		Type:    body.Type,
		Machine: body.Machine,
		Server:  body.Server,
		Config:  body.Config,
	}, operator)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, probe.Serialize(false))
}

func (h *ProbesHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.svc.AccountUUID(ctx, c.Param("login"))
	if err != nil {
		return writeErr(c, err)
	}
	probe, err := h.svc.GetProbe(ctx, user, c.Param("monitor"), c.Param("probe"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, probe.Serialize(false))
}

func (h *ProbesHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.svc.AccountUUID(ctx, c.Param("login"))
	if err != nil {
		return writeErr(c, err)
	}
	probes, err := h.svc.ListProbes(ctx, user, c.Param("monitor"))
	if err != nil {
		return writeErr(c, err)
	}
	out := make([]map[string]any, 0, len(probes))
	for _, p := range probes {
		out = append(out, p.Serialize(false))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProbesHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.svc.AccountUUID(ctx, c.Param("login"))
	if err != nil {
		return writeErr(c, err)
	}
	operator, err := h.authz.IsOperator(ctx, user)
	if err != nil {
		return writeErr(c, err)
	}
	if err := h.svc.DeleteProbe(ctx, user, c.Param("monitor"), c.Param("probe"), operator); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
