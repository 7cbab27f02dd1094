package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Symbol string `param:"symbol" validate:"required,max=4"`
	Period string `query:"period" default:"1y" validate:"oneof=1y 2y"`
}

func newContext(target string, names, values []string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

func TestReadAndValidateRequestDefaults(t *testing.T) {
	c, _ := newContext("/x", []string{"symbol"}, []string{"AAPL"})
	var req sampleRequest
	require.Nil(t, ReadAndValidateRequest(c, &req))
	assert.Equal(t, "AAPL", req.Symbol)
	assert.Equal(t, "1y", req.Period)
}

func TestReadAndValidateRequestErrors(t *testing.T) {
	c, _ := newContext("/x?period=3d", []string{"symbol"}, []string{"TOOLONG"})
	var req sampleRequest
	errs := ReadAndValidateRequest(c, &req)
	require.Len(t, errs, 2)
	assert.Equal(t, "symbol", errs[0].Field)
	assert.Equal(t, "ERR_MAX", errs[0].Code)
	assert.Equal(t, "period", errs[1].Field)
	assert.Equal(t, "ERR_ONEOF", errs[1].Code)
}

func TestAppErrorResponseHidesCause(t *testing.T) {
	c, rec := newContext("/x", nil, nil)
	appErr := UnprocessableError("ERR_INSUFFICIENT_HISTORY", "not enough history").
		WithError(errors.New("provider said: secret detail"))
	require.NoError(t, AppErrorResponse(c, appErr))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")

	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusUnprocessableEntity, body.Status)
}

func TestAppErrorResponseUnknownError(t *testing.T) {
	c, rec := newContext("/x", nil, nil)
	require.NoError(t, AppErrorResponse(c, errors.New("db password wrong")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}
