package net_test

import (
	"errors"
	"net/http"
	"testing"

	perr "paygate/internal/platform/errors"
	pnet "paygate/internal/platform/net"

	"github.com/stretchr/testify/assert"
)

func TestError_Nil(t *testing.T) {
	status, w := pnet.Error(nil, "req-4")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "req-4", w.RequestID)
	assert.Zero(t, w.Code)
	assert.Empty(t, w.Error)
}

func TestError_PaymentKindCarriesReasonAndDetails(t *testing.T) {
	err := perr.Kind(perr.ErrorCodePaymentRequired, "InsufficientTransfer", "transfer below price")
	err = perr.WithDetail(perr.WithDetail(err, "observed", 900), "required", 1000)

	status, w := pnet.Error(err, "req-5")
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.Equal(t, status, w.StatusCode)
	assert.Equal(t, perr.ErrorCodePaymentRequired, w.Code)
	assert.Equal(t, "InsufficientTransfer", w.Reason)
	assert.Equal(t, map[string]int64{"observed": 900, "required": 1000}, w.Details)
}

func TestError_TooManyRequests(t *testing.T) {
	status, w := pnet.Error(perr.Newf(perr.ErrorCodeTooManyRequests, "slow down"), "")
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "slow down", w.Error)
}

func TestError_ForeignErrorDoesNotLeak(t *testing.T) {
	status, w := pnet.Error(errors.New("dial tcp 10.1.2.3:8899: connection refused"), "req-6")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, w.Error, "10.1.2.3")
}
