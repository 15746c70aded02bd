package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
	"github.com/arc-self/amon/packages/amon-core/natsclient"
)

// EventsHandler serves POST /events — the relay-to-Master event ingest
// endpoint (spec.md §4.D, §6). It publishes onto the AMON_EVENTS stream
// and returns immediately; the dispatch.Consumer drains the stream
// asynchronously, which is what makes the forwarding hop in spec.md §4.E
// "best-effort" at the HTTP layer while still durable once accepted here.
type EventsHandler struct {
	nc *natsclient.Client
}

// minimal event shape this handler needs to validate and route; full
// decoding happens once in dispatch.Consumer.
type inboundEvent struct {
	V       int    `json:"v"`
	UUID    string `json:"uuid"`
	User    string `json:"user"`
	Monitor string `json:"monitor"`
}

func NewEventsHandler(nc *natsclient.Client) *EventsHandler {
	return &EventsHandler{nc: nc}
}

func (h *EventsHandler) Register(e *echo.Echo) {
	e.POST("/events", h.Post)
}

func (h *EventsHandler) Post(c echo.Context) error {
	defer c.Request().Body.Close()
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return writeErr(c, amonerr.Wrap(amonerr.InvalidArgument, "events: failed to read body", err))
	}

	var ev inboundEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return writeErr(c, amonerr.Wrap(amonerr.InvalidArgument, "events: malformed body", err))
	}
	if ev.V != 1 {
		return c.JSON(http.StatusBadRequest, amonerr.ToBody(amonerr.New(amonerr.InvalidArgument, "events: unsupported version")))
	}
	if ev.UUID == "" || ev.User == "" || ev.Monitor == "" {
		return writeErr(c, amonerr.New(amonerr.MissingParameter, "events: uuid, user, and monitor are required"))
	}

	subject := natsclient.EventSubject(ev.User, ev.Monitor)
	if _, err := h.nc.PublishEvent(subject, ev.UUID, raw); err != nil {
		return writeErr(c, amonerr.Wrap(amonerr.Unavailable, "events: publish failed", err))
	}

	return c.NoContent(http.StatusAccepted)
}
