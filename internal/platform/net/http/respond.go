// Package http holds the chi backed server, the router seam and the JSON envelope every endpoint answers with
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "paygate/internal/platform/errors"
	lumnet "paygate/internal/platform/net"
)

// Envelope is the body of every JSON answer, success or failure
type Envelope struct {
	StatusCode int              `json:"status_code"`
	Status     string           `json:"status"`
	Code       perr.ErrorCode   `json:"code,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	Error      string           `json:"error,omitempty"`
	Details    map[string]int64 `json:"details,omitempty"`
	RequestID  string           `json:"request_id,omitempty"`
	Data       any              `json:"data,omitempty"`
	Page       *Page            `json:"page,omitempty"`
}

// Page carries paging metadata next to list items
type Page struct {
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Cursor   string `json:"cursor,omitempty"`
}

// ErrorEnvelope derives the status from err and fills only client safe fields
func ErrorEnvelope(err error, reqID string) (int, Envelope) {
	status := perr.HTTPStatus(err)
	wr := perr.WireFrom(err)
	return status, Envelope{
		StatusCode: status,
		Status:     stdhttp.StatusText(status),
		Code:       wr.Code,
		Reason:     wr.Reason,
		Error:      wr.Message,
		Details:    wr.Details,
		RequestID:  reqID,
	}
}

// JSON encodes v with status, it is also the writer the middlewares reject with
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is what return style handlers hand back; an error Body becomes an error envelope
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

// OK answers 200 with data
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Error answers with the status mapped from err
func Error(err error) Response { return Response{Body: err} }

// List answers 200 with items plus a page block
func List(items any, total, page, size int, cursor string) Response {
	return OK(struct {
		Items any  `json:"items"`
		Page  Page `json:"page"`
	}{Items: items, Page: Page{Total: total, Page: page, PageSize: size, Cursor: cursor}})
}

// Handle turns a Response returning func into a net/http handler
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).writeTo(w, r)
	}
}

func (resp Response) writeTo(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	reqID := lumnet.RequestID(r.Context())
	if err, ok := resp.Body.(error); ok && err != nil {
		status, env := ErrorEnvelope(err, reqID)
		JSON(w, status, env)
		return
	}
	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}
	if status == stdhttp.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	JSON(w, status, Envelope{
		StatusCode: status,
		Status:     stdhttp.StatusText(status),
		RequestID:  reqID,
		Data:       resp.Body,
	})
}
