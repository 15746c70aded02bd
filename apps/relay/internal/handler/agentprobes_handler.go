// Package handler serves the relay's agent-facing HTTP API (spec.md §4.E).
//
// Production Amon resolves target identity from the transport — each
// tenant sandbox reaches its relay over a dedicated local socket, so the
// connection's origin identifies the target without the agent naming it.
// This implementation exposes that same two-endpoint contract over plain
// HTTP with the target named in the path instead of inferred from a Unix
// socket path, since per-zone socket provisioning is host/OS plumbing
// spec.md places out of scope ("operator bootstrap scripts ... out of
// scope"). The manifest/hash semantics served are identical either way.
package handler

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/arc-self/amon/apps/relay/internal/sync"
)

// AgentProbesHandler serves HEAD|GET /agentprobes/:targetType/:targetUuid
// from the relay's on-disk manifest cache populated by sync.Poller.
type AgentProbesHandler struct {
	dataDir string
}

func NewAgentProbesHandler(dataDir string) *AgentProbesHandler {
	return &AgentProbesHandler{dataDir: dataDir}
}

func (h *AgentProbesHandler) Register(e *echo.Echo) {
	e.HEAD("/agentprobes/:targetType/:targetUuid", h.Head)
	e.GET("/agentprobes/:targetType/:targetUuid", h.Get)
}

// Head returns Content-MD5 from the cached .content-md5 file, or the hash
// of an empty array when no manifest has been written yet.
func (h *AgentProbesHandler) Head(c echo.Context) error {
	hash := h.readHash(c.Param("targetType"), c.Param("targetUuid"))
	c.Response().Header().Set("Content-MD5", hash)
	return c.NoContent(http.StatusOK)
}

// Get returns the cached JSON manifest body, or "[]" when absent.
func (h *AgentProbesHandler) Get(c echo.Context) error {
	body := h.readBody(c.Param("targetType"), c.Param("targetUuid"))
	c.Response().Header().Set("Content-MD5", sync.ContentMD5(body))
	return c.Blob(http.StatusOK, "application/json", body)
}

func (h *AgentProbesHandler) readBody(targetType, uuid string) []byte {
	b, err := os.ReadFile(sync.ManifestPath(h.dataDir, targetType, uuid))
	if err != nil {
		return []byte("[]")
	}
	return b
}

func (h *AgentProbesHandler) readHash(targetType, uuid string) string {
	b, err := os.ReadFile(sync.HashPath(h.dataDir, targetType, uuid))
	if err != nil {
		return sync.ContentMD5([]byte("[]"))
	}
	return string(b)
}
