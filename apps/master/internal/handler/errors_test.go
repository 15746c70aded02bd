package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/amon/packages/amon-core/amonerr"
)

func TestWriteErrMapsKindToHTTPStatus(t *testing.T) {
	cases := []struct {
		kind   amonerr.Kind
		status int
	}{
		{amonerr.MissingParameter, http.StatusConflict},
		{amonerr.InvalidArgument, http.StatusConflict},
		{amonerr.ResourceNotFound, http.StatusNotFound},
		{amonerr.Unavailable, http.StatusServiceUnavailable},
		{amonerr.InternalError, http.StatusInternalServerError},
	}

	e := echo.New()
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, writeErr(c, amonerr.New(tc.kind, "boom")))
		assert.Equal(t, tc.status, rec.Code, "kind %s", tc.kind)

		body := bodyJSON(t, rec)
		assert.Equal(t, string(tc.kind), body["code"])
		assert.Equal(t, "boom", body["message"])
	}
}

func TestWriteErrDefaultsUnrecognizedErrorToInternalError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, writeErr(c, assertionError{}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	body := bodyJSON(t, rec)
	assert.Equal(t, string(amonerr.InternalError), body["code"])
}

type assertionError struct{}

func (assertionError) Error() string { return "not an amonerr.Error" }
