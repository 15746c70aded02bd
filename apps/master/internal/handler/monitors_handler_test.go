package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorPutRejectsSessionLoginMismatch(t *testing.T) {
	h := newTestHarness(t, nil, nil)
	mh := NewMonitorsHandler(h.svc, h.d)

	c, rec := h.newEchoCtx(http.MethodPut, "/monitors/system", `{"contacts":[]}`)
	c.Request().Header.Set("X-Amon-Session-Account", "not-"+testAccount)
	setParams(c, []string{"login", "monitor"}, []string{testLogin, "system"})

	require.NoError(t, mh.Put(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMonitorPutSucceedsForMatchingSession(t *testing.T) {
	h := newTestHarness(t, nil, nil)
	mh := NewMonitorsHandler(h.svc, h.d)

	c, rec := h.newEchoCtx(http.MethodPut, "/monitors/system", `{"contacts":[]}`)
	setParams(c, []string{"login", "monitor"}, []string{testLogin, "system"})

	require.NoError(t, mh.Put(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMonitorFakefaultDispatchesSyntheticEvent(t *testing.T) {
	h := newTestHarness(t, nil, nil)
	mh := NewMonitorsHandler(h.svc, h.d)

	putCtx, putRec := h.newEchoCtx(http.MethodPut, "/monitors/system", `{"contacts":[]}`)
	setParams(putCtx, []string{"login", "monitor"}, []string{testLogin, "system"})
	require.NoError(t, mh.Put(putCtx))
	require.Equal(t, http.StatusOK, putRec.Code)

	c, rec := h.newEchoCtx(http.MethodPost, "/monitors/system?action=fakefault", "")
	setParams(c, []string{"login", "monitor"}, []string{testLogin, "system"})

	require.NoError(t, mh.Post(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := bodyJSON(t, rec)
	assert.Equal(t, true, body["success"])
}

func TestMonitorPostRejectsUnsupportedAction(t *testing.T) {
	h := newTestHarness(t, nil, nil)
	mh := NewMonitorsHandler(h.svc, h.d)

	c, rec := h.newEchoCtx(http.MethodPost, "/monitors/system?action=bogus", "")
	setParams(c, []string{"login", "monitor"}, []string{testLogin, "system"})

	require.NoError(t, mh.Post(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
