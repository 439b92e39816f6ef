package net

import (
	"net/http"

	perr "paygate/internal/platform/errors"
)

// Wire is the error body middlewares write when they reject a request before any handler runs
type Wire struct {
	StatusCode int              `json:"status_code"`
	Status     string           `json:"status"`
	Code       perr.ErrorCode   `json:"code,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	Error      string           `json:"error,omitempty"`
	Details    map[string]int64 `json:"details,omitempty"`
	RequestID  string           `json:"request_id,omitempty"`
}

// Error maps err to a status and a body that only carries client safe fields
// a nil err yields a bare 200
func Error(err error, reqID string) (int, Wire) {
	status := http.StatusOK
	var w perr.Wire
	if err != nil {
		status = perr.HTTPStatus(err)
		w = perr.WireFrom(err)
	}
	return status, Wire{
		StatusCode: status,
		Status:     http.StatusText(status),
		Code:       w.Code,
		Reason:     w.Reason,
		Error:      w.Message,
		Details:    w.Details,
		RequestID:  reqID,
	}
}
