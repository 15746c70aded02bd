package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
	"github.com/arc-self/amon/packages/amon-core/model"
	"github.com/arc-self/amon/apps/master/internal/service"
	"github.com/arc-self/amon/apps/master/internal/service/dispatch"
)

// MonitorsHandler serves /pub/:login/monitors[/:monitor] plus the
// fakefault integration-test action (spec.md §4.D, E2E scenario 6).
type MonitorsHandler struct {
	svc        *service.ObjectService
	dispatcher *dispatch.Dispatcher
}

func NewMonitorsHandler(svc *service.ObjectService, d *dispatch.Dispatcher) *MonitorsHandler {
	return &MonitorsHandler{svc: svc, dispatcher: d}
}

func (h *MonitorsHandler) Register(g *echo.Group) {
	g.GET("/monitors", h.List)
	g.PUT("/monitors/:monitor", h.Put)
	g.GET("/monitors/:monitor", h.Get)
	g.DELETE("/monitors/:monitor", h.Delete)
	g.POST("/monitors/:monitor", h.Post)
}

type monitorBody struct {
	Contacts []string `json:"contacts"`
}

func (h *MonitorsHandler) Put(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.svc.AccountUUID(ctx, c.Param("login"))
	if err != nil {
		return writeErr(c, err)
	}
	if err := requireSessionMatch(c, user); err != nil {
		return writeErr(c, err)
	}

	var body monitorBody
	if err := c.Bind(&body); err != nil {
		return writeErr(c, err)
	}

	monitor, err := h.svc.PutMonitor(ctx, model.MonitorInput{
		Name:     c.Param("monitor"),
		Contacts: body.Contacts,
		User:     user,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, monitor.Serialize(false))
}

func (h *MonitorsHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.svc.AccountUUID(ctx, c.Param("login"))
	if err != nil {
		return writeErr(c, err)
	}
	monitor, err := h.svc.GetMonitor(ctx, user, c.Param("monitor"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, monitor.Serialize(false))
}

func (h *MonitorsHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.svc.AccountUUID(ctx, c.Param("login"))
	if err != nil {
		return writeErr(c, err)
	}
	monitors, err := h.svc.ListMonitors(ctx, user)
	if err != nil {
		return writeErr(c, err)
	}
	out := make([]map[string]any, 0, len(monitors))
	for _, m := range monitors {
		out = append(out, m.Serialize(false))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MonitorsHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.svc.AccountUUID(ctx, c.Param("login"))
	if err != nil {
		return writeErr(c, err)
	}
	if err := h.svc.DeleteMonitor(ctx, user, c.Param("monitor")); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Post handles ?action=fakefault[&clear=true]: dispatches a synthetic
// "fake" event through the same code path a real probe event takes
// (spec.md §8 E2E scenario 6), for integration testing without a running
// agent.
func (h *MonitorsHandler) Post(c echo.Context) error {
	if c.QueryParam("action") != "fakefault" {
		return writeErr(c, amonerr.New(amonerr.InvalidArgument, "unsupported action"))
	}

	ctx := c.Request().Context()
	user, err := h.svc.AccountUUID(ctx, c.Param("login"))
	if err != nil {
		return writeErr(c, err)
	}
	monitorName := c.Param("monitor")
	if _, err := h.svc.GetMonitor(ctx, user, monitorName); err != nil {
		return writeErr(c, err)
	}

	clear := c.QueryParam("clear") == "true"
	ev := dispatch.Event{
		V:       dispatch.SupportedVersion,
		UUID:    uuid.NewString(),
		Type:    "fake",
		User:    user,
		Monitor: monitorName,
		Time:    time.Now().UnixMilli(),
		Clear:   clear,
		Data:    map[string]any{"message": "synthetic fault for monitor " + monitorName},
		Probe:   dispatch.ProbeRef{User: user, Monitor: monitorName, Name: "fakefault", Type: "fake"},
	}

	if err := h.dispatcher.Dispatch(ctx, ev); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
