package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
	"github.com/arc-self/amon/apps/master/internal/service"
)

// AgentProbesHandler serves GET /agentprobes?(machine=|server=) — the
// manifest a relay polls per target (spec.md §4.E/§6). The Master itself
// answers with the raw internal-serialized probe array; the relay is
// responsible for hashing and caching it on disk for its own HEAD/GET
// endpoints towards agents.
type AgentProbesHandler struct {
	svc *service.ObjectService
}

func NewAgentProbesHandler(svc *service.ObjectService) *AgentProbesHandler {
	return &AgentProbesHandler{svc: svc}
}

func (h *AgentProbesHandler) Register(e *echo.Echo) {
	e.GET("/agentprobes", h.Get)
	e.HEAD("/agentprobes", h.Get)
}

func (h *AgentProbesHandler) Get(c echo.Context) error {
	machine := c.QueryParam("machine")
	server := c.QueryParam("server")

	var targetType, uuid string
	switch {
	case machine != "" && server == "":
		targetType, uuid = "machine", machine
	case server != "" && machine == "":
		targetType, uuid = "server", server
	default:
		return writeErr(c, amonerr.New(amonerr.MissingParameter, "agentprobes requires exactly one of machine or server"))
	}

	probes, err := h.svc.ProbesForTarget(c.Request().Context(), targetType, uuid)
	if err != nil {
		return writeErr(c, err)
	}

	out := make([]map[string]any, 0, len(probes))
	for _, p := range probes {
		out = append(out, p.Serialize(true))
	}
	return c.JSON(http.StatusOK, out)
}
