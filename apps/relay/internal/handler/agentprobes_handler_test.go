package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/arc-self/amon/apps/relay/internal/sync"
)

func TestGetReturnsEmptyArrayWhenManifestAbsent(t *testing.T) {
	dir := t.TempDir()
	e := echo.New()
	NewAgentProbesHandler(dir).Register(e)

	req := httptest.NewRequest(http.MethodGet, "/agentprobes/machine/nonexistent", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
	assert.Equal(t, sync.ContentMD5([]byte("[]")), rec.Header().Get("Content-MD5"))
}

func TestHeadReturnsContentMD5OfCachedManifest(t *testing.T) {
	dir := t.TempDir()
	e := echo.New()
	NewAgentProbesHandler(dir).Register(e)

	body := []byte(`[{"name":"p1"}]`)
	writeManifestForTest(t, dir, "machine", "m-1", body)

	req := httptest.NewRequest(http.MethodHead, "/agentprobes/machine/m-1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sync.ContentMD5(body), rec.Header().Get("Content-MD5"))
}

func writeManifestForTest(t *testing.T, dir, targetType, uuid string, body []byte) {
	t.Helper()
	if err := os.WriteFile(sync.ManifestPath(dir, targetType, uuid), body, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(sync.HashPath(dir, targetType, uuid), []byte(sync.ContentMD5(body)), 0o644); err != nil {
		t.Fatal(err)
	}
}
