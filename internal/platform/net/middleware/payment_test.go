package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pnet "paygate/internal/platform/net"
	"paygate/internal/platform/net/middleware"

	"github.com/stretchr/testify/assert"
)

type fakePaymentPort struct {
	payer string
	err   error
	seen  error
}

func (f *fakePaymentPort) Authorize(*http.Request) (string, error) { return f.payer, f.err }

func (f *fakePaymentPort) Challenge(_ *http.Request, err error) (int, any) {
	f.seen = err
	return http.StatusPaymentRequired, map[string]string{"memo": "m"}
}

func writeStatus(w http.ResponseWriter, status int, _ any) { w.WriteHeader(status) }

func TestRequirePayment_NilPortPassesThrough(t *testing.T) {
	called := false
	h := middleware.RequirePayment(nil, writeStatus)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestRequirePayment_RejectWritesChallenge(t *testing.T) {
	boom := errors.New("no proof")
	port := &fakePaymentPort{err: boom}
	called := false
	h := middleware.RequirePayment(port, writeStatus)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.ErrorIs(t, port.seen, boom)
}

func TestRequirePayment_GrantAnnotatesPayer(t *testing.T) {
	port := &fakePaymentPort{payer: "payer-1"}
	var got string
	h := middleware.RequirePayment(port, writeStatus)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = pnet.Payer(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "payer-1", got)
}
