package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arc-self/amon/apps/relay/internal/forward"
)

// EventsHandler accepts POST /events from local agents and hands the raw
// body to the Forwarder, which relays it to the Master under retry. The
// agent receives a prompt 202 regardless of forwarding outcome — spec.md
// §4.E's best-effort contract starts at this hop, not at the agent.
type EventsHandler struct {
	fwd *forward.Forwarder
}

func NewEventsHandler(fwd *forward.Forwarder) *EventsHandler {
	return &EventsHandler{fwd: fwd}
}

func (h *EventsHandler) Register(e *echo.Echo) {
	e.POST("/events", h.Post)
}

func (h *EventsHandler) Post(c echo.Context) error {
	defer c.Request().Body.Close()
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	// the request context is cancelled once this handler returns, but the
	// retry/backoff loop must outlive the response — forward in the
	// background under its own context.
	go h.fwd.Forward(context.Background(), body)

	return c.NoContent(http.StatusAccepted)
}
