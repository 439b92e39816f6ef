package http_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	perr "paygate/internal/platform/errors"
	lumnet "paygate/internal/platform/net"
	phttp "paygate/internal/platform/net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, fn func(*http.Request) phttp.Response) (*httptest.ResponseRecorder, phttp.Envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(lumnet.WithRequest(req.Context(), "rid-1", ""))
	rec := httptest.NewRecorder()
	phttp.Handle(fn)(rec, req)

	var env phttp.Envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHandle_OK(t *testing.T) {
	rec, env := serve(t, func(*http.Request) phttp.Response {
		return phttp.OK(map[string]string{"mint": "So11111111111111111111111111111111111111112"})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "rid-1", env.RequestID)
	assert.Equal(t, "OK", env.Status)
	assert.Empty(t, env.Code)
}

func TestHandle_PaymentRequiredCarriesReasonAndDetails(t *testing.T) {
	err := perr.WithDetail(
		perr.Kind(perr.ErrorCodePaymentRequired, "InsufficientTransfer", "transfer below price"),
		"required", 1000,
	)
	rec, env := serve(t, func(*http.Request) phttp.Response { return phttp.Error(err) })

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "InsufficientTransfer", env.Reason)
	assert.Equal(t, int64(1000), env.Details["required"])
	assert.Equal(t, "rid-1", env.RequestID)
}

func TestHandle_PlainErrorDoesNotLeak(t *testing.T) {
	rec, env := serve(t, func(*http.Request) phttp.Response {
		return phttp.Error(errors.New("dial tcp 10.0.0.7:8899: connection refused"))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, env.Error, "10.0.0.7")
}

func TestHandle_HeadersAndNoContent(t *testing.T) {
	rec, _ := serve(t, func(*http.Request) phttp.Response {
		return phttp.Response{Status: http.StatusNoContent, Header: http.Header{"Retry-After": {"5"}}}
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))
	assert.Zero(t, rec.Body.Len())
}

func TestList_WrapsItemsAndPage(t *testing.T) {
	rec, env := serve(t, func(*http.Request) phttp.Response {
		return phttp.List([]int{1, 2}, 7, 2, 2, "")
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Len(t, data["items"], 2)
	page := data["page"].(map[string]any)
	assert.EqualValues(t, 7, page["total"])
	assert.EqualValues(t, 2, page["page_size"])
}

func TestErrorEnvelope_Status(t *testing.T) {
	status, env := phttp.ErrorEnvelope(perr.Newf(perr.ErrorCodeUnavailable, "ledger down"), "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, status, env.StatusCode)
	assert.Equal(t, perr.ErrorCodeUnavailable, env.Code)
}
